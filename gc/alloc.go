package gc

import (
	"fmt"

	"github.com/lumiknit/zgc/internal/core"
)

// Alloc reserves np+p contiguous cells — np non-pointer cells followed by
// p pointer cells — and returns the address of the first cell. The
// caller must finish initializing every pointer cell before the next
// Alloc call, since that call may trigger a collection that walks them.
func (c *Collector) Alloc(np, p int) (core.Address, error) {
	n := np + p
	minor := c.gens[0]
	if n >= minor.Size() {
		return c.allocLarge(np, p)
	}
	if addr, ok := minor.Allocate(np, p); ok {
		return addr, nil
	}
	if _, err := c.RunGC(); err != nil {
		return 0, err
	}
	if addr, ok := minor.Allocate(np, p); ok {
		return addr, nil
	}
	return 0, fmt.Errorf("%w: allocating %d cells in minor heap", ErrOutOfMemory, n)
}

// allocLarge handles objects that do not fit the minor heap.
func (c *Collector) allocLarge(np, p int) (core.Address, error) {
	n := np + p
	if c.cyclic != CyclicEnable && p > 0 {
		// A pointer-bearing object that will live in a major generation
		// must not end up pointing into not-yet-moved minor survivors;
		// collecting first keeps the no-cycles invariant (elders never
		// reference youngers) intact once it is installed.
		if _, err := c.RunGC(); err != nil {
			return 0, err
		}
	} else {
		for k := 1; k < len(c.gens); k++ {
			if addr, ok := c.gens[k].Allocate(np, p); ok {
				return addr, nil
			}
		}
	}
	g, err := core.NewGen(n * growthFactor)
	if err != nil {
		return 0, fmt.Errorf("%w: creating generation for large object: %v", ErrOutOfMemory, err)
	}
	c.insertGenAt(1, g)
	addr, ok := g.Allocate(np, p)
	if !ok {
		return 0, fmt.Errorf("%w: large object does not fit its own generation", ErrOutOfMemory)
	}
	return addr, nil
}

// insertGenAt inserts g at index i, shifting later generations up by one.
// append already grows the underlying array as needed, so there is no
// separate capacity-doubling step the way a fixed-size C array needs.
func (c *Collector) insertGenAt(i int, g *core.Gen) {
	c.gens = append(c.gens, nil)
	copy(c.gens[i+1:], c.gens[i:])
	c.gens[i] = g
}
