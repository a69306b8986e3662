package gc

// CyclicMode controls whether the collector assumes older generations
// may hold pointers into younger ones. It is the knob that distinguishes
// classical generational GC (elders never reference youngers) from the
// more general case where mutable elder objects can be rewritten to
// point at anything.
type CyclicMode int

const (
	// CyclicDisableUnsafe disables the cyclic-reference assumption
	// without running a full collection first. The caller asserts that
	// no inter-generational cycle currently exists.
	CyclicDisableUnsafe CyclicMode = -1
	// CyclicDisable disables the cyclic-reference assumption, running a
	// full collection first to settle any cycle that may already span
	// generations. This is the zero value, and the safe default.
	CyclicDisable CyclicMode = 0
	// CyclicEnable enables the cyclic-reference assumption: every cycle
	// walks the whole heap and forwards pointers in every generation.
	CyclicEnable CyclicMode = 1
)

const (
	// heapMinSize is the absolute floor for heap sizes: a smaller minor
	// heap size is replaced with the default, and SetMinMajorSize ignores
	// a smaller argument.
	heapMinSize = 16

	defaultMinorHeapSize = 1 << 18
	defaultMajorHeapSize = 1 << 18

	initGensCap = 8

	// growthFactor sizes a newly created generation relative to the
	// object (large-object path) or survivor volume (destination
	// generation) that required it.
	growthFactor = 3

	// emptyRatio bounds total major capacity to at most this multiple of
	// allocated volume after a cycle; excess empty majors are freed.
	emptyRatio = 5
)

// Options configures a Collector at creation time.
type Options struct {
	// RootFrameSize is the size, in slots, of the permanent bottom root
	// frame.
	RootFrameSize int
	// MinorHeapSize is the capacity, in cells, of generation 0. Values
	// below the minimum heap size are replaced with a default.
	MinorHeapSize int
	// Cyclic is the initial cyclic-reference mode.
	Cyclic CyclicMode
}
