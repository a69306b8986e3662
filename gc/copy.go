package gc

import (
	"fmt"

	"github.com/lumiknit/zgc/internal/core"
)

// RunGC runs an incremental collection cycle targeting the minor
// generation. It returns NoWork without doing anything if the minor heap
// is empty (nothing has been allocated in it since the last collection).
func (c *Collector) RunGC() (Result, error) {
	if c.gens[0].Left() >= c.gens[0].Size() {
		return NoWork, nil
	}
	c.gcTarget = 0
	if c.cyclic == CyclicEnable {
		c.markTop = len(c.gens)
	} else {
		c.markTop = c.findMarkTopByAllocated()
	}
	if err := c.runCycle(false); err != nil {
		return Collected, err
	}
	return Collected, nil
}

// FullGC collects every generation, copying all reachable memory into a
// single destination at or beyond the oldest existing generation.
func (c *Collector) FullGC() (Result, error) {
	c.gcTarget = 0
	c.markTop = len(c.gens)
	c.moveTop = len(c.gens)
	if err := c.runCycle(true); err != nil {
		return Collected, err
	}
	return Collected, nil
}

// runCycle performs the four phases of a cycle once gcTarget and markTop
// are set. moveTopIsSet is true only for FullGC, which pins moveTop to
// the whole heap instead of letting it be computed from reachability.
func (c *Collector) runCycle(moveTopIsSet bool) error {
	c.mark()
	if !moveTopIsSet {
		c.moveTop = c.findMoveTopByReachable()
	}
	if err := c.planAndMove(); err != nil {
		return err
	}
	if err := c.shrink(); err != nil {
		return err
	}
	c.nCollections++
	return nil
}

// planAndMove implements spec §4.5.2-4.5.5: pick (or create) the
// destination generation, copy survivors into it with forwarding,
// rewrite every surviving pointer, and reset the generations involved.
func (c *Collector) planAndMove() error {
	bot, top := c.gcTarget, c.moveTop
	var dst *core.Gen
	if top >= len(c.gens) {
		sum := 0
		for k := bot; k < top; k++ {
			sum += c.gens[k].NReachable()
		}
		size := sum * growthFactor
		if size < c.minMajorSize {
			size = c.minMajorSize
		}
		g, err := core.NewGen(size)
		if err != nil {
			return fmt.Errorf("%w: creating destination generation: %v", ErrOutOfMemory, err)
		}
		c.gens = append(c.gens, g)
		dst = g
	} else {
		dst = c.gens[top]
	}

	for j := top - 1; j >= bot; j-- {
		if err := c.reallocGen(dst, c.gens[j]); err != nil {
			return err
		}
	}

	jt := top + 1
	if c.cyclic == CyclicEnable {
		jt = len(c.gens)
	}
	for j := 0; j < bot; j++ {
		c.updateGenPointers(c.gens[j])
	}
	for j := top; j < jt; j++ {
		c.updateGenPointers(c.gens[j])
	}
	c.updateRootPointers()

	for k := 0; k < bot; k++ {
		c.gens[k].CleanMarks()
	}
	for k := bot; k < top; k++ {
		c.gens[k].CleanAll()
	}
	for k := top; k < len(c.gens); k++ {
		c.gens[k].CleanMarks()
	}
	return nil
}

// reallocGen copies every maximal run of marked cells from src into dst,
// then overwrites each copied object's head cell in src with the address
// of its copy — the broken-heart trick, readable by updateGenPointers and
// updateRootPointers until src is reset.
func (c *Collector) reallocGen(dst, src *core.Gen) error {
	off := src.Left()
	lim := src.Size()
	for off < lim {
		if src.Mark(off) == core.White {
			off++
			continue
		}
		start := off
		for off < lim && (src.Stat(off)&core.Sep == 0 || src.Mark(off) != core.White) {
			off++
		}
		n := off - start
		if !dst.CopyIn(src, start, n) {
			return fmt.Errorf("%w: destination generation has no room for survivors", ErrOutOfMemory)
		}
		for i := start; i < off; i++ {
			if src.Stat(i)&core.Sep != 0 {
				newAddr := dst.CellAddr(dst.Left() + (i - start))
				src.SetCell(i, core.AddrValue(newAddr))
			}
		}
	}
	return nil
}

// updateGenPointers rewrites every pointer cell of g that refers into
// [gcTarget, moveTop) to the forwarding address left there by
// reallocGen.
func (c *Collector) updateGenPointers(g *core.Gen) {
	for off := g.Left(); off < g.Size(); off++ {
		if g.Stat(off)&core.NPtr != 0 {
			continue
		}
		ptr := g.Cell(off).Addr()
		if k, idx, ok := c.findCell(c.gcTarget, c.moveTop, ptr); ok {
			g.SetCell(off, c.gens[k].Cell(idx))
		}
	}
}

// updateRootPointers is updateGenPointers for every pointer slot of every
// root frame.
func (c *Collector) updateRootPointers() {
	for f := c.frames.Top(); f != nil; f = f.Prev() {
		for i := 0; i < f.Size(); i++ {
			slot := f.Get(i)
			if slot.NPtr {
				continue
			}
			ptr := slot.Value.Addr()
			if k, idx, ok := c.findCell(c.gcTarget, c.moveTop, ptr); ok {
				f.Set(i, c.gens[k].Cell(idx), false)
			}
		}
	}
}

// shrink frees empty majors from the top down while total major capacity
// exceeds emptyRatio times allocated volume.
func (c *Collector) shrink() error {
	total, allocated := 0, 0
	for k := 1; k < len(c.gens); k++ {
		total += c.gens[k].Size()
		allocated += c.gens[k].Allocated()
	}
	for k := len(c.gens) - 1; k >= 1 && total > allocated*emptyRatio; k-- {
		g := c.gens[k]
		if g.Left() != g.Size() {
			continue
		}
		total -= g.Size()
		if err := g.Free(); err != nil {
			return err
		}
		c.gens[k] = nil
	}
	out := c.gens[:0]
	for _, g := range c.gens {
		if g != nil {
			out = append(out, g)
		}
	}
	c.gens = out
	return nil
}
