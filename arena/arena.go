// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arena provides a stack-discipline scratch allocator for the
// sparse solvers. Temporary index and value arrays are acquired as views
// into a preallocated block and released in reverse order of acquisition:
//
//	mark := a.Mark()
//	defer a.Release(mark)
//	ind := a.Ints(n)
//	buf := a.Floats(n)
//
// The deferred Release restores the stack on every exit path, including
// error returns. An Arena is not safe for concurrent use; callers hold
// exclusive access for the duration of each solver call.
package arena

// Mark records a stack position for release-to-mark.
type Mark struct {
	iTop, fTop int
}

// Arena is a fixed-capacity scratch stack of ints and float64s.
// Views returned by Ints and Floats remain valid until the enclosing
// mark is released, and must not be retained afterwards.
type Arena struct {
	ints   []int
	floats []float64
	iTop   int
	fTop   int
}

// New creates an arena with capacity for nInt scratch ints and
// nFloat scratch float64s.
func New(nInt, nFloat int) *Arena {
	return &Arena{
		ints:   make([]int, nInt),
		floats: make([]float64, nFloat),
	}
}

// Mark returns the current stack position.
func (a *Arena) Mark() Mark {
	return Mark{a.iTop, a.fTop}
}

// Release restores the stack to a previously obtained mark,
// freeing every view acquired after it.
func (a *Arena) Release(m Mark) {
	if m.iTop > a.iTop || m.fTop > a.fTop {
		panic("bound check error")
	}
	a.iTop, a.fTop = m.iTop, m.fTop
}

// Ints acquires a view of n scratch ints.
// Panics if the arena was sized too small by the caller.
func (a *Arena) Ints(n int) []int {
	if n < 0 || a.iTop+n > len(a.ints) {
		panic("bound check error")
	}
	v := a.ints[a.iTop : a.iTop+n : a.iTop+n]
	a.iTop += n
	return v
}

// Floats acquires a view of n scratch float64s.
// Panics if the arena was sized too small by the caller.
func (a *Arena) Floats(n int) []float64 {
	if n < 0 || a.fTop+n > len(a.floats) {
		panic("bound check error")
	}
	v := a.floats[a.fTop : a.fTop+n : a.fTop+n]
	a.fTop += n
	return v
}
