// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package core owns the raw, unsafe half of the heap: generation arenas
// and the Address/Value types a mutator uses to name cells within them.
package core

import "unsafe"

// WordSize is the size in bytes of one cell: a machine-pointer-sized
// word.
const WordSize = int(unsafe.Sizeof(uintptr(0)))

// Address is the machine word a mutator holds for a live reference: the
// byte address of a cell. Every reference names the first cell of an
// allocated object — there are no interior pointers.
type Address uintptr

// Add returns the address n cells away from a.
func (a Address) Add(cells int) Address {
	return a + Address(cells*WordSize)
}

// Sub returns the number of cells between a and b (a - b, in cells).
func (a Address) Sub(b Address) int {
	return int(a-b) / WordSize
}

// IsNil reports whether a is the null address.
func (a Address) IsNil() bool {
	return a == 0
}

// Value is the opaque, pointer-sized tagged word a mutator stores in a
// cell or a root-frame slot. Its bit pattern means whatever the host
// language says it means, except when the cell's NPTR flag is clear — in
// that case it is an Address.
type Value uintptr

// Addr interprets v as an Address.
func (v Value) Addr() Address {
	return Address(v)
}

// AddrValue packs an Address into a Value, for writing into a pointer
// cell or slot.
func AddrValue(a Address) Value {
	return Value(a)
}
