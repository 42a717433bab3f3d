// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eig3

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// reconstruct computes V·diag(w)·Vᵀ for a row-major V with eigenvectors
// in its columns.
func reconstruct(w, v []float64) [9]float64 {
	var m [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				m[3*i+j] += v[3*i+k] * w[k] * v[3*j+k]
			}
		}
	}
	return m
}

func checkDecomposition(t *testing.T, m []float64) {
	t.Helper()
	var eigval [3]float64
	var eigvec [9]float64
	var quat [4]float64

	iters := Decompose(eigval[:], eigvec[:], quat[:], m)
	require.Less(t, iters, 500, "iteration cap hit")

	// the iteration may terminate on the cosine cutoff with residual
	// off-diagonal mass proportional to the matrix scale, so value
	// comparisons are relative to the largest entry
	scale := 1.0
	for _, v := range m {
		if math.Abs(v) > scale {
			scale = math.Abs(v)
		}
	}

	// eigenvalues in non-increasing order
	require.GreaterOrEqual(t, eigval[0], eigval[1])
	require.GreaterOrEqual(t, eigval[1], eigval[2])

	// unit quaternion
	qn := quat[0]*quat[0] + quat[1]*quat[1] + quat[2]*quat[2] + quat[3]*quat[3]
	require.InDelta(t, 1.0, qn, 1e-10)

	// orthonormal eigenvectors
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			dot := 0.0
			for k := 0; k < 3; k++ {
				dot += eigvec[3*k+a] * eigvec[3*k+b]
			}
			want := 0.0
			if a == b {
				want = 1.0
			}
			require.InDelta(t, want, dot, 1e-9, "columns %d,%d", a, b)
		}
	}

	// V·diag(λ)·Vᵀ reproduces the input
	rec := reconstruct(eigval[:], eigvec[:])
	for k := 0; k < 9; k++ {
		require.InDelta(t, m[k], rec[k], 1e-5*scale, "entry %d", k)
	}

	// cross-check eigenvalues against the reference eigensolver
	var es mat.EigenSym
	require.True(t, es.Factorize(mat.NewSymDense(3, m), false))
	ref := es.Values(nil) // ascending
	for i := 0; i < 3; i++ {
		require.InDelta(t, ref[2-i], eigval[i], 1e-5*scale)
	}
}

func TestDiagonal(t *testing.T) {
	m := []float64{3, 0, 0, 0, 1, 0, 0, 0, 2}
	var eigval [3]float64
	var eigvec [9]float64
	var quat [4]float64

	iters := Decompose(eigval[:], eigvec[:], quat[:], m)
	require.Equal(t, 0, iters, "diagonal input needs no rotations")
	require.InDeltaSlice(t, []float64{3, 2, 1}, eigval[:], 1e-12)

	rec := reconstruct(eigval[:], eigvec[:])
	for k := 0; k < 9; k++ {
		require.InDelta(t, m[k], rec[k], 1e-10)
	}
}

func TestKnownMatrix(t *testing.T) {
	// eigenvalues of [[2,1,0],[1,2,1],[0,1,2]] are 2±√2 and 2
	m := []float64{2, 1, 0, 1, 2, 1, 0, 1, 2}
	var eigval [3]float64
	var eigvec [9]float64
	var quat [4]float64
	Decompose(eigval[:], eigvec[:], quat[:], m)

	s := math.Sqrt2
	require.InDelta(t, 2+s, eigval[0], 1e-9)
	require.InDelta(t, 2, eigval[1], 1e-9)
	require.InDelta(t, 2-s, eigval[2], 1e-9)
}

func TestRandomSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for trial := 0; trial < 50; trial++ {
		var m [9]float64
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				v := rng.NormFloat64() * 10
				m[3*i+j] = v
				m[3*j+i] = v
			}
		}
		checkDecomposition(t, m[:])
	}
}

func TestRepeatedEigenvalues(t *testing.T) {
	// λ = 3 (double) and 0
	m := []float64{2, 1, -1, 1, 2, 1, -1, 1, 2}
	checkDecomposition(t, m)
}
