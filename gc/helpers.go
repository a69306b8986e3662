package gc

import (
	"errors"

	"github.com/lumiknit/zgc/internal/core"
)

// ErrForeignAddress is returned when an address handed to Cell, SetCell,
// or StringBytes does not belong to any generation this collector owns.
var ErrForeignAddress = errors.New("gc: address does not belong to this collector")

// genAndIndex locates the generation and cell index that addr — an
// object's head cell — falls in among every current generation.
func (c *Collector) genAndIndex(addr core.Address) (*core.Gen, int, bool) {
	for _, g := range c.gens {
		if idx, ok := g.PtrIndex(addr); ok {
			return g, idx, true
		}
	}
	return nil, 0, false
}

// Cell reads the cell at offset off from addr's object head.
func (c *Collector) Cell(addr core.Address, off int) (core.Value, error) {
	g, idx, ok := c.genAndIndex(addr)
	if !ok {
		return 0, ErrForeignAddress
	}
	return g.Cell(idx + off), nil
}

// SetCell writes v to the cell at offset off from addr's object head.
func (c *Collector) SetCell(addr core.Address, off int, v core.Value) error {
	g, idx, ok := c.genAndIndex(addr)
	if !ok {
		return ErrForeignAddress
	}
	g.SetCell(idx+off, v)
	return nil
}

// AllocTuple reserves one non-pointer tag cell followed by dim pointer
// slots, and writes tag into the tag cell.
func (c *Collector) AllocTuple(tag core.Value, dim int) (core.Address, error) {
	addr, err := c.Alloc(1, dim)
	if err != nil {
		return 0, err
	}
	if err := c.SetCell(addr, 0, tag); err != nil {
		return 0, err
	}
	return addr, nil
}

// AllocString reserves a length cell followed by 1+ceil(length/WordSize)
// non-pointer payload cells and NUL-terminates the payload at byte 0 and
// byte length, so it is implicitly a valid C-style string regardless of
// length (resolved from original_source/zzcore.c's zAllocStr).
func (c *Collector) AllocString(length int) (core.Address, error) {
	cells := 2 + (length+core.WordSize-1)/core.WordSize
	addr, err := c.Alloc(cells, 0)
	if err != nil {
		return 0, err
	}
	if err := c.SetCell(addr, 0, core.Value(length)); err != nil {
		return 0, err
	}
	payload, err := c.StringBytes(addr)
	if err != nil {
		return 0, err
	}
	payload[0] = 0
	payload[length] = 0
	return addr, nil
}

// StringBytes returns a byte slice that starts at the payload of a string
// allocated with AllocString, just past its length cell. The slice runs to
// the end of the string's generation, so it extends past the string's own
// cells.
func (c *Collector) StringBytes(addr core.Address) ([]byte, error) {
	g, idx, ok := c.genAndIndex(addr)
	if !ok {
		return nil, ErrForeignAddress
	}
	return g.PayloadBytes(idx + 1), nil
}

// StringLen reads back the length cell written by AllocString.
func (c *Collector) StringLen(addr core.Address) (int, error) {
	v, err := c.Cell(addr, 0)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
