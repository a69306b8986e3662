package gc

import "github.com/lumiknit/zgc/internal/core"

// GenStats reports size/left/allocated for one generation.
type GenStats struct {
	Index     int
	Reserved  int
	Left      int
	Allocated int
}

// CollectorStats is a snapshot of a collector's generations and
// collection count. It never triggers a collection and replaces the
// reference implementation's printf-based zPrintGCStatus with a plain
// data accessor; formatting it is left to callers such as cmd/zgcdemo.
type CollectorStats struct {
	Generations []GenStats
	Collections int
}

// Stats returns a snapshot of the collector's current generation sizes.
func (c *Collector) Stats() CollectorStats {
	gens := make([]GenStats, len(c.gens))
	for i, g := range c.gens {
		gens[i] = GenStats{Index: i, Reserved: g.Size(), Left: g.Left(), Allocated: g.Allocated()}
	}
	return CollectorStats{Generations: gens, Collections: c.nCollections}
}

// Reserved returns the capacity in cells of generation idx, or of the
// whole heap if idx is -1. An out-of-range idx returns 0.
func (c *Collector) Reserved(idx int) int { return c.aggregate(idx, (*core.Gen).Size) }

// Left returns the free cells of generation idx, or of the whole heap if
// idx is -1. An out-of-range idx returns 0.
func (c *Collector) Left(idx int) int { return c.aggregate(idx, (*core.Gen).Left) }

// Allocated returns the used cells of generation idx, or of the whole
// heap if idx is -1. An out-of-range idx returns 0.
func (c *Collector) Allocated(idx int) int { return c.Reserved(idx) - c.Left(idx) }

func (c *Collector) aggregate(idx int, f func(*core.Gen) int) int {
	if idx < -1 || idx >= len(c.gens) {
		return 0
	}
	if idx >= 0 {
		return f(c.gens[idx])
	}
	sum := 0
	for _, g := range c.gens {
		sum += f(g)
	}
	return sum
}

// NGen returns the current number of generations.
func (c *Collector) NGen() int { return len(c.gens) }
