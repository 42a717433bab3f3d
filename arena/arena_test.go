// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arena

import (
	"errors"
	"testing"
)

func TestMarkRelease(t *testing.T) {
	a := New(8, 8)

	m := a.Mark()
	i1 := a.Ints(4)
	f1 := a.Floats(4)
	if len(i1) != 4 || len(f1) != 4 {
		t.Fatal("wrong view length")
	}

	m2 := a.Mark()
	i2 := a.Ints(4)
	i2[0] = 7
	a.Release(m2)

	// the region freed by Release is reused by the next acquisition
	i3 := a.Ints(4)
	if i3[0] != 7 {
		t.Fatal("release did not restore the stack position")
	}

	a.Release(m)
	if got := a.Mark(); got != m {
		t.Fatalf("mark not restored: got %+v want %+v", got, m)
	}
}

func TestOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on overflow")
		}
	}()
	a := New(2, 2)
	a.Ints(3)
}

func TestReleaseOnErrorPath(t *testing.T) {
	a := New(4, 4)

	errBoom := errors.New("boom")
	f := func() error {
		defer a.Release(a.Mark())
		_ = a.Ints(4)
		_ = a.Floats(4)
		return errBoom
	}
	if err := f(); !errors.Is(err, errBoom) {
		t.Fatal("unexpected error")
	}

	// the full capacity must be available again
	if got := a.Ints(4); len(got) != 4 {
		t.Fatal("scratch not released on error exit")
	}
}

func TestStaleReleasePanics(t *testing.T) {
	a := New(4, 4)
	_ = a.Ints(2)
	m := a.Mark()
	a.Release(Mark{})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on releasing a newer mark after rewind")
		}
	}()
	a.Release(m)
}
