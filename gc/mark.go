package gc

import "github.com/lumiknit/zgc/internal/core"

// mark walks every root frame from top to bottom, marking and
// propagating from each reachable pointer it finds among generations
// [0, markTop). Reachability bookkeeping (n_reachables) is updated as a
// side effect of propagate.
func (c *Collector) mark() {
	for f := c.frames.Top(); f != nil; f = f.Prev() {
		for i := 0; i < f.Size(); i++ {
			slot := f.Get(i)
			if slot.NPtr {
				continue
			}
			addr := slot.Value.Addr()
			if addr.IsNil() {
				continue
			}
			j, idy, ok := c.findCell(0, c.markTop, addr)
			if !ok {
				continue
			}
			g := c.gens[j]
			if g.Stat(idy)&core.Sep != 0 && g.Mark(idy) == core.White {
				g.SetMark(idy, core.Black)
				c.propagate(j, idy)
				for {
					gen, idx, ok := c.marks.Pop()
					if !ok {
						break
					}
					c.propagate(gen, idx)
				}
			}
		}
	}
	c.marks.Clean()
}

// findCell locates the (generation, cell index) of addr among
// generations [from, to), or reports not found.
func (c *Collector) findCell(from, to int, addr core.Address) (gen, idx int, ok bool) {
	for k := from; k < to; k++ {
		if i, found := c.gens[k].PtrIndex(addr); found {
			return k, i, true
		}
	}
	return 0, 0, false
}

// propagate walks the cells of the object at (gen, idx), starting at its
// Sep-marked head and continuing until the next Sep, pushing any
// still-white pointees it discovers onto the mark stack.
//
// In the no-cycles regime the search for a pointee's generation starts at
// the object's own generation, since an elder can never reference a
// younger one; with cyclic references enabled it must start at 0.
func (c *Collector) propagate(gen, idx int) {
	g := c.gens[gen]
	kf := gen
	if c.cyclic == CyclicEnable {
		kf = 0
	}
	off := idx
	for {
		if g.Stat(off)&core.NPtr == 0 {
			if ptr := g.Cell(off).Addr(); !ptr.IsNil() {
				if k, idy, ok := c.findCell(kf, c.markTop, ptr); ok {
					kg := c.gens[k]
					if kg.Stat(idy)&core.Sep != 0 && kg.Mark(idy) == core.White {
						kg.SetMark(idy, core.Black)
						c.marks.Push(k, idy)
					}
				}
			}
		}
		off++
		if g.Stat(off)&core.Sep != 0 {
			break
		}
	}
	g.AddReachable(off - idx)
}

// findMarkTopByAllocated resolves the "no cycles" marking bound: the
// shortest prefix [gcTarget, k) whose accumulated allocated volume (the
// proxy for survivor volume before marking has actually run) fits the
// free space of generation k.
func (c *Collector) findMarkTopByAllocated() int {
	k := c.gcTarget
	acc := c.gens[k].Allocated()
	k++
	for k < len(c.gens) && acc > c.gens[k].Left() {
		acc += c.gens[k].Allocated()
		k++
	}
	return k
}

// findMoveTopByReachable resolves the destination bound after marking,
// using the same shortest-prefix scan as findMarkTopByAllocated but over
// the now-known n_reachables rather than the allocated-volume proxy.
func (c *Collector) findMoveTopByReachable() int {
	k := c.gcTarget
	acc := c.gens[k].NReachable()
	k++
	for k < len(c.gens) && acc > c.gens[k].Left() {
		acc += c.gens[k].NReachable()
		k++
	}
	return k
}
