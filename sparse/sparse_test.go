// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"math"
	"testing"
)

func TestDot(t *testing.T) {
	vec := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	vals := []float64{2, -1, 0.5, 3, 1}
	ind := []int{0, 2, 3, 5, 7}

	want := 2*1 - 1*3 + 0.5*4 + 3*6 + 1*8
	if got := Dot(vals, vec, 5, ind); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Dot = %g, want %g", got, want)
	}
	if got := Dot(vals, vec, 0, ind); got != 0 {
		t.Fatalf("empty Dot = %g, want 0", got)
	}
}

func TestCombineIdenticalPattern(t *testing.T) {
	dst := []float64{1, 2, 3, 0, 0}
	src := []float64{10, 20, 30}
	dstInd := []int{0, 2, 5, 0, 0}
	srcInd := []int{0, 2, 5}
	buf := make([]float64, 8)
	bufInd := make([]int, 8)

	nnz := Combine(dst, src, 8, 2, 0.5, 3, 3, dstInd, srcInd, buf, bufInd)
	if nnz != 3 {
		t.Fatalf("nnz = %d, want 3", nnz)
	}
	want := []float64{2*1 + 0.5*10, 2*2 + 0.5*20, 2*3 + 0.5*30}
	for k := range want {
		if math.Abs(dst[k]-want[k]) > 1e-12 {
			t.Fatalf("dst[%d] = %g, want %g", k, dst[k], want[k])
		}
	}
}

func TestCombineMerge(t *testing.T) {
	// dst has columns {1,4}, src has {0,4,6}: merged {0,1,4,6}
	dst := []float64{2, 3, 0, 0, 0, 0}
	src := []float64{5, 7, 9}
	dstInd := []int{1, 4, 0, 0, 0, 0}
	srcInd := []int{0, 4, 6}
	buf := make([]float64, 8)
	bufInd := make([]int, 8)

	nnz := Combine(dst, src, 8, 1, -1, 2, 3, dstInd, srcInd, buf, bufInd)
	if nnz != 4 {
		t.Fatalf("nnz = %d, want 4", nnz)
	}
	wantInd := []int{0, 1, 4, 6}
	wantVal := []float64{-5, 2, 3 - 7, -9}
	for k := 0; k < nnz; k++ {
		if dstInd[k] != wantInd[k] {
			t.Fatalf("ind[%d] = %d, want %d", k, dstInd[k], wantInd[k])
		}
		if math.Abs(dst[k]-wantVal[k]) > 1e-12 {
			t.Fatalf("val[%d] = %g, want %g", k, dst[k], wantVal[k])
		}
	}
}

func TestCombineEmpty(t *testing.T) {
	buf := make([]float64, 4)
	bufInd := make([]int, 4)
	if nnz := Combine(nil, nil, 4, 1, 1, 0, 0, nil, nil, buf, bufInd); nnz != 0 {
		t.Fatalf("nnz = %d, want 0", nnz)
	}

	// src into empty dst
	dst := make([]float64, 4)
	dstInd := make([]int, 4)
	src := []float64{1, 2}
	srcInd := []int{1, 3}
	nnz := Combine(dst, src, 4, 1, 3, 0, 2, dstInd, srcInd, buf, bufInd)
	if nnz != 2 || dstInd[0] != 1 || dstInd[1] != 3 || dst[0] != 3 || dst[1] != 6 {
		t.Fatalf("unexpected merge result: nnz=%d dst=%v ind=%v", nnz, dst[:2], dstInd[:2])
	}
}
