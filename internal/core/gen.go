package core

import (
	"fmt"
	"unsafe"
)

// Gen is a fixed-capacity arena of cells, parallel to two byte arrays
// (mark and stat). It bump-allocates from the high end toward the low
// end and supports reachability bookkeeping and bulk reset.
//
// A Gen owns one anonymous memory mapping per array so that cell
// addresses are real, stable pointers: PtrIndex (the membership test the
// marker and forwarder run on every traced pointer) is then a bounds
// check and a subtraction, not a lookup into Go's own moving heap.
type Gen struct {
	size int // capacity in cells, immutable after creation
	left int // index of the lowest allocated cell

	mark  []byte    // one byte per cell, plus one sentinel past the end
	stat  []byte    // one byte per cell, plus one sentinel past the end
	cells []uintptr // backing words, plus one sentinel past the end

	nReachable int // cells, across all surviving objects, reachable this cycle
}

// NewGen reserves a generation of the given capacity in cells.
func NewGen(size int) (*Gen, error) {
	if size <= 0 {
		return nil, fmt.Errorf("core: generation size must be positive, got %d", size)
	}
	n := size + 1 // sentinel cell past the live range

	mark, err := mmapBytes(n)
	if err != nil {
		return nil, fmt.Errorf("core: reserving mark bytes: %w", err)
	}
	stat, err := mmapBytes(n)
	if err != nil {
		munmapBytes(mark)
		return nil, fmt.Errorf("core: reserving stat bytes: %w", err)
	}
	cellMem, err := mmapBytes(n * WordSize)
	if err != nil {
		munmapBytes(mark)
		munmapBytes(stat)
		return nil, fmt.Errorf("core: reserving cell words: %w", err)
	}

	g := &Gen{
		size:  size,
		left:  size,
		mark:  mark,
		stat:  stat,
		cells: unsafe.Slice((*uintptr)(unsafe.Pointer(&cellMem[0])), n),
	}
	// The sentinel cell always reads as a black, separator-marked object
	// head, so a propagation scan that walks forward looking for the next
	// Sep terminates at end-of-heap instead of running off the array.
	g.mark[size] = Black
	g.stat[size] = Sep
	return g, nil
}

// Free releases the generation's backing memory. The generation must not
// be used afterward.
func (g *Gen) Free() error {
	if err := munmapBytes(g.mark); err != nil {
		return err
	}
	if err := munmapBytes(g.stat); err != nil {
		return err
	}
	n := len(g.cells) * WordSize
	return munmapBytes(unsafe.Slice((*byte)(unsafe.Pointer(&g.cells[0])), n))
}

// Size returns the generation's capacity in cells.
func (g *Gen) Size() int { return g.size }

// Left returns the index of the lowest allocated cell; cells below it are
// free.
func (g *Gen) Left() int { return g.left }

// Allocated returns the number of cells currently in use.
func (g *Gen) Allocated() int { return g.size - g.left }

// NReachable returns the number of cells, across all surviving objects,
// proven reachable in the current cycle.
func (g *Gen) NReachable() int { return g.nReachable }

// AddReachable increments the reachable-cell count by n.
func (g *Gen) AddReachable(n int) { g.nReachable += n }

// CellAddr returns the address of the cell at idx.
func (g *Gen) CellAddr(idx int) Address {
	return Address(uintptr(unsafe.Pointer(&g.cells[idx])))
}

// Cell reads the value stored at cell idx.
func (g *Gen) Cell(idx int) Value { return Value(g.cells[idx]) }

// SetCell writes v to cell idx.
func (g *Gen) SetCell(idx int, v Value) { g.cells[idx] = uintptr(v) }

// Mark reads the mark byte of cell idx.
func (g *Gen) Mark(idx int) byte { return g.mark[idx] }

// SetMark writes the mark byte of cell idx.
func (g *Gen) SetMark(idx int, b byte) { g.mark[idx] = b }

// Stat reads the stat byte of cell idx.
func (g *Gen) Stat(idx int) byte { return g.stat[idx] }

// PayloadBytes returns a byte-level view over the cells from idx to the
// end of the generation, for byte-string payloads.
func (g *Gen) PayloadBytes(idx int) []byte {
	n := (g.size - idx) * WordSize
	return unsafe.Slice((*byte)(unsafe.Pointer(&g.cells[idx])), n)
}

// Allocate reserves np+p contiguous cells: np non-pointer cells followed
// by p pointer cells. It returns the address of the new object's first
// cell, or ok=false if there is not enough free space — the generation is
// left unmodified in that case. The cell bytes are not zeroed; the caller
// must initialize every pointer cell before the next allocation or
// collection.
func (g *Gen) Allocate(np, p int) (addr Address, ok bool) {
	n := np + p
	if g.left < n {
		return 0, false
	}
	g.left -= n
	for i := g.left; i < g.left+np; i++ {
		g.stat[i] = NPtr
	}
	for i := g.left + np; i < g.left+n; i++ {
		g.stat[i] = 0
	}
	g.stat[g.left] |= Sep
	return g.CellAddr(g.left), true
}

// CopyIn bump-allocates n cells and copies src's stat and cell bytes for
// [start, start+n) into them verbatim. Mark bytes are not copied:
// survivors start the next cycle white, to be re-proven reachable then.
// It returns false if there is no room.
func (g *Gen) CopyIn(src *Gen, start, n int) bool {
	if g.left < n {
		return false
	}
	g.left -= n
	copy(g.stat[g.left:g.left+n], src.stat[start:start+n])
	copy(g.cells[g.left:g.left+n], src.cells[start:start+n])
	return true
}

// CleanMarks zeroes the mark byte of every live cell and resets the
// reachable-cell count. Used after a collection on generations whose
// contents were not moved.
func (g *Gen) CleanMarks() {
	for i := g.left; i < g.size; i++ {
		g.mark[i] = White
	}
	g.nReachable = 0
}

// CleanAll resets the generation to empty. Used on a generation whose
// contents were copied out. Cell bytes are left untouched: left is
// restored to size and Allocate overwrites stat per cell on its own, so
// stale cell contents are harmless.
func (g *Gen) CleanAll() {
	for i := g.left; i < g.size; i++ {
		g.mark[i] = White
		g.stat[i] = 0
	}
	g.left = g.size
	g.nReachable = 0
}

// PtrIndex reports the cell index of addr within this generation's live
// range [left, size), and whether addr falls in that range at all. This
// is the exact-membership test the marker and forwarder run on every
// traced pointer; it must stay O(1).
func (g *Gen) PtrIndex(addr Address) (idx int, ok bool) {
	base := g.CellAddr(0)
	if addr < base {
		return 0, false
	}
	i := addr.Sub(base)
	if i < g.left || i >= g.size {
		return 0, false
	}
	return i, true
}
