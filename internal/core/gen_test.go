package core

import "testing"

func TestNewGen(t *testing.T) {
	g, err := NewGen(64)
	if err != nil {
		t.Fatalf("NewGen: %v", err)
	}
	defer g.Free()
	if g.Size() != 64 || g.Left() != 64 {
		t.Fatalf("got size=%d left=%d, want 64/64", g.Size(), g.Left())
	}
}

func TestGenAllocate(t *testing.T) {
	g, err := NewGen(64)
	if err != nil {
		t.Fatalf("NewGen: %v", err)
	}
	defer g.Free()

	addr, ok := g.Allocate(1, 3)
	if !ok {
		t.Fatalf("Allocate(1, 3) failed on a fresh 64-cell generation")
	}
	if g.Left() != 60 {
		t.Fatalf("Left() = %d, want 60", g.Left())
	}
	idx, ok := g.PtrIndex(addr)
	if !ok || idx != 60 {
		t.Fatalf("PtrIndex(addr) = (%d, %v), want (60, true)", idx, ok)
	}
	if g.Stat(60)&Sep == 0 {
		t.Fatalf("head cell missing Sep")
	}
	if g.Stat(60)&NPtr == 0 {
		t.Fatalf("head cell (non-pointer prefix) missing NPtr")
	}
	if g.Stat(63)&NPtr != 0 {
		t.Fatalf("pointer-suffix cell has NPtr set")
	}
}

func TestGenAllocateNoSpace(t *testing.T) {
	g, err := NewGen(4)
	if err != nil {
		t.Fatalf("NewGen: %v", err)
	}
	defer g.Free()

	if _, ok := g.Allocate(2, 3); ok {
		t.Fatalf("Allocate(2, 3) should fail on a 4-cell generation")
	}
	if g.Left() != 4 {
		t.Fatalf("a failed Allocate must not modify left, got %d", g.Left())
	}
}

func TestGenPtrIndexOutOfRange(t *testing.T) {
	g, err := NewGen(8)
	if err != nil {
		t.Fatalf("NewGen: %v", err)
	}
	defer g.Free()

	if _, ok := g.PtrIndex(0); ok {
		t.Fatalf("PtrIndex(nil) should never match")
	}
	addr, _ := g.Allocate(1, 0)
	// One cell before the object: free space, must not be "in" the generation.
	before := addr.Add(-1)
	if _, ok := g.PtrIndex(before); ok {
		t.Fatalf("PtrIndex matched a free cell before left")
	}
}

func TestGenCleanMarksAndCleanAll(t *testing.T) {
	g, err := NewGen(16)
	if err != nil {
		t.Fatalf("NewGen: %v", err)
	}
	defer g.Free()

	addr, _ := g.Allocate(1, 1)
	idx, _ := g.PtrIndex(addr)
	g.SetMark(idx, Black)
	g.AddReachable(2)

	g.CleanMarks()
	if g.Mark(idx) != White {
		t.Fatalf("CleanMarks left a mark set")
	}
	if g.NReachable() != 0 {
		t.Fatalf("CleanMarks left NReachable = %d, want 0", g.NReachable())
	}
	if g.Left() != 14 {
		t.Fatalf("CleanMarks must not free cells, got left=%d", g.Left())
	}

	g.CleanAll()
	if g.Left() != g.Size() {
		t.Fatalf("CleanAll left=%d, want size=%d", g.Left(), g.Size())
	}
}

func TestGenCopyIn(t *testing.T) {
	src, err := NewGen(16)
	if err != nil {
		t.Fatalf("NewGen: %v", err)
	}
	defer src.Free()
	dst, err := NewGen(16)
	if err != nil {
		t.Fatalf("NewGen: %v", err)
	}
	defer dst.Free()

	addr, _ := src.Allocate(1, 1)
	srcIdx, _ := src.PtrIndex(addr)
	src.SetCell(srcIdx, 0xABCD)
	src.SetCell(srcIdx+1, 0)

	if !dst.CopyIn(src, srcIdx, 2) {
		t.Fatalf("CopyIn failed on an empty destination")
	}
	if dst.Left() != 14 {
		t.Fatalf("dst.Left() = %d, want 14", dst.Left())
	}
	if dst.Cell(14) != 0xABCD {
		t.Fatalf("copied cell = %#x, want 0xABCD", dst.Cell(14))
	}
	if dst.Stat(14)&Sep == 0 {
		t.Fatalf("CopyIn lost the Sep stat bit")
	}
}
