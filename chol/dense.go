// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chol provides in-place Cholesky factorization, triangular
// solve and rank-one update for symmetric positive (semi-)definite
// matrices, in dense row-major and sparse row-compressed form.
//
// Near-singular pivots are never an error: diagonals falling below the
// caller's floor are clamped and the returned rank is decremented, so a
// usable (possibly regularized) factor is always produced. Only
// structural violations of the sparse layout are reported as errors.
package chol

import "math"

// minVal is the numerical floor applied to diagonal terms during
// rank-one downdates.
const minVal = 1e-15

// Factor computes the in-place lower Cholesky factorization mat = L·Lᵀ
// of a symmetric n×n row-major matrix, reading and writing only the
// lower triangle. Any pivot below minDiag is clamped to minDiag and the
// returned rank is decremented. rank == n means full numerical rank.
func Factor(mat []float64, n int, minDiag float64) (rank int) {
	if uint(n*n) > uint(len(mat)) {
		panic("bound check error")
	}
	rank = n
	for j := 0; j < n; j++ {
		tmp := mat[j*(n+1)]
		if j > 0 {
			tmp -= ddot(j, mat[j*n:], mat[j*n:])
		}
		if tmp < minDiag {
			tmp = minDiag
			rank--
		}
		mat[j*(n+1)] = math.Sqrt(tmp)

		tmp = 1 / mat[j*(n+1)]
		for i := j + 1; i < n; i++ {
			mat[i*n+j] = (mat[i*n+j] - ddot(j, mat[i*n:], mat[j*n:])) * tmp
		}
	}
	return rank
}

// Solve solves mat·x = vec given the factor L produced by Factor,
// by forward then backward substitution. res may alias vec.
func Solve(res, mat, vec []float64, n int) {
	if n <= 0 {
		return
	}
	if uint(n*n) > uint(len(mat)) || uint(n) > uint(len(res)) || uint(n) > uint(len(vec)) {
		panic("bound check error")
	}
	if &res[0] != &vec[0] {
		copy(res[:n], vec[:n])
	}

	// L·y = vec
	for i := 0; i < n; i++ {
		if i > 0 {
			res[i] -= ddot(i, mat[i*n:], res)
		}
		res[i] /= mat[i*(n+1)]
	}

	// Lᵀ·res = y
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j < n; j++ {
			res[i] -= mat[j*n+i] * res[j]
		}
		res[i] /= mat[i*(n+1)]
	}
}

// Update applies the rank-one update L·Lᵀ + x·xᵀ (plus true) or
// downdate L·Lᵀ − x·xᵀ (plus false) to a factor in place, column by
// column with Givens-like rotations. Columns with x[k] == 0 are
// skipped. A downdated diagonal term falling below the numerical floor
// is clamped and the returned rank is decremented. x is consumed.
func Update(mat, x []float64, n int, plus bool) (rank int) {
	if uint(n*n) > uint(len(mat)) || uint(n) > uint(len(x)) {
		panic("bound check error")
	}
	rank = n
	for k := 0; k < n; k++ {
		if x[k] == 0 {
			continue
		}
		lkk := mat[k*(n+1)]
		tmp := lkk * lkk
		if plus {
			tmp += x[k] * x[k]
		} else {
			tmp -= x[k] * x[k]
		}
		if tmp < minVal {
			tmp = minVal
			rank--
		}
		r := math.Sqrt(tmp)
		c := r / lkk
		cinv := 1 / c
		s := x[k] / lkk

		mat[k*(n+1)] = r

		if plus {
			for i := k + 1; i < n; i++ {
				mat[i*n+k] = (mat[i*n+k] + s*x[i]) * cinv
			}
		} else {
			for i := k + 1; i < n; i++ {
				mat[i*n+k] = (mat[i*n+k] - s*x[i]) * cinv
			}
		}
		for i := k + 1; i < n; i++ {
			x[i] = c*x[i] - s*mat[i*n+k]
		}
	}
	return rank
}

// ddot computes the dot product of the first n entries of two
// contiguous vectors.
func ddot(n int, dx, dy []float64) (dot float64) {
	if n <= 0 {
		return 0
	}
	m := uint(n % 5)
	if m > uint(len(dx)) || m > uint(len(dy)) {
		panic("bound check error")
	}
	for i := uint(0); i < m; i++ {
		dot += dx[i] * dy[i]
	}
	if n < 5 {
		return dot
	}
	for i := m; i < uint(n); i += 5 {
		x := dx[i : i+5 : i+5]
		y := dy[i : i+5 : i+5]
		dot += x[0]*y[0] + x[1]*y[1] + x[2]*y[2] + x[3]*y[3] + x[4]*y[4]
	}
	return dot
}
