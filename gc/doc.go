// Package gc implements an embeddable, precise, generational
// mark-and-copy heap for a host-language runtime.
//
// A Collector owns an ordered array of generations — generation 0 is the
// minor, bump-allocated by the mutator; generations 1..n-1 are majors,
// populated only by evacuation, oldest last — plus a stack of root
// frames through which the mutator exposes every live reference. A
// collection runs when the host calls RunGC or FullGC, when SetCyclicMode
// is given CyclicDisable, or inside Alloc when the minor heap is full or a
// large pointer-bearing object needs one: a full or incremental cycle marks
// reachable objects, copies survivors into an older generation, forwards
// every surviving pointer (including the broken-heart addresses written
// over moved objects' old cells), and shrinks the generation array back
// down when too much of it sits empty.
//
// A Collector is not safe for concurrent use. Exactly one mutator
// goroutine may call into it, and any Alloc call may synchronously run a
// collection that reads and writes every root and cell in scope for that
// cycle.
package gc
