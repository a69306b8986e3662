package core

// Mark byte values. A cell's mark byte is non-zero once its object has
// been proven reachable in the current cycle.
const (
	White byte = 0x00
	Black byte = 0x01
)

// Stat byte flags. NPtr and Sep occupy independent bits of the same byte,
// so both may be set on an object's head cell.
const (
	// NPtr marks a cell holding a non-pointer value: the marker never
	// traces it and the forwarder never rewrites it.
	NPtr byte = 0x01
	// Sep marks the first cell of an allocated object.
	Sep byte = 0x02
)
