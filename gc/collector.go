package gc

import (
	"fmt"

	"github.com/lumiknit/zgc/internal/core"
	"github.com/lumiknit/zgc/internal/frame"
	"github.com/lumiknit/zgc/internal/markstack"
)

// Collector owns an ordered array of generations (index 0 is the minor;
// 1..n-1 are majors in non-decreasing age, oldest last), the root-frame
// stack, collection options, and statistics. It implements allocation,
// marking, copying, pointer forwarding, and post-collection shrinkage.
type Collector struct {
	gens []*core.Gen

	frames *frame.Stack
	marks  *markstack.Stack

	cyclic       CyclicMode
	minMajorSize int
	nCollections int

	// gcTarget, markTop, and moveTop are transient: valid only for the
	// duration of a single cycle.
	gcTarget int
	markTop  int
	moveTop  int
}

// New creates a collector with the given options. Minor-heap sizes below
// the minimum heap size are replaced with the default minor-heap size.
func New(opts Options) (*Collector, error) {
	rootSize := opts.RootFrameSize
	if rootSize <= 0 {
		rootSize = 1
	}
	minorSize := opts.MinorHeapSize
	if minorSize < heapMinSize {
		minorSize = defaultMinorHeapSize
	}
	minor, err := core.NewGen(minorSize)
	if err != nil {
		return nil, fmt.Errorf("%w: creating minor generation: %v", ErrOutOfMemory, err)
	}
	gens := make([]*core.Gen, 1, initGensCap)
	gens[0] = minor
	return &Collector{
		gens:         gens,
		frames:       frame.NewStack(rootSize),
		marks:        markstack.New(),
		cyclic:       opts.Cyclic,
		minMajorSize: defaultMajorHeapSize,
	}, nil
}

// Close releases every generation's backing memory. The collector must
// not be used afterward.
func (c *Collector) Close() error {
	for _, g := range c.gens {
		if err := g.Free(); err != nil {
			return err
		}
	}
	return nil
}

// SetMinMajorSize floors the capacity of newly created destination
// generations. Values below the minimum heap size are silently clamped
// (left unchanged).
func (c *Collector) SetMinMajorSize(size int) {
	if size >= heapMinSize {
		c.minMajorSize = size
	}
}

// SetCyclicMode switches the cyclic-reference option and returns the
// previous mode. Disabling with CyclicDisable first runs a full
// collection to settle any inter-generational cycle that may already
// exist; its failure is propagated and the mode is left unchanged.
func (c *Collector) SetCyclicMode(mode CyclicMode) (CyclicMode, error) {
	prev := c.cyclic
	switch {
	case mode > 0:
		c.cyclic = CyclicEnable
	case mode == 0:
		if _, err := c.FullGC(); err != nil {
			return prev, err
		}
		c.cyclic = CyclicDisable
	default:
		c.cyclic = CyclicDisableUnsafe
	}
	return prev, nil
}

// PushFrame pushes a new root frame of the given size.
func (c *Collector) PushFrame(size int) { c.frames.Push(size) }

// PopFrame pops the top root frame; popping the bottom frame is a no-op.
func (c *Collector) PopFrame() { c.frames.Pop() }

// TopSize returns the slot count of the current top frame.
func (c *Collector) TopSize() int { return c.frames.Top().Size() }

// BotSize returns the slot count of the permanent bottom frame.
func (c *Collector) BotSize() int { return c.frames.Bot().Size() }

// TopSlot reads slot idx of the top frame.
func (c *Collector) TopSlot(idx int) core.Value { return c.frames.Top().Get(idx).Value }

// BotSlot reads slot idx of the bottom frame.
func (c *Collector) BotSlot(idx int) core.Value { return c.frames.Bot().Get(idx).Value }

// SetTopSlot overwrites slot idx of the top frame. isNPtr marks it as a
// non-pointer value the collector must never trace. An out-of-range idx
// is the caller's responsibility.
func (c *Collector) SetTopSlot(idx int, v core.Value, isNPtr bool) {
	c.frames.Top().Set(idx, v, isNPtr)
}

// SetBotSlot overwrites slot idx of the bottom frame.
func (c *Collector) SetBotSlot(idx int, v core.Value, isNPtr bool) {
	c.frames.Bot().Set(idx, v, isNPtr)
}
