// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qcqp solves the ellipsoid-constrained quadratic program
//
//	minimize ½ 𝐱ᵀ𝐀𝐱 + 𝐱ᵀ𝐛  subject to  ∑ (𝐱ᵢ/𝐝ᵢ)² ≤ r²
//
// at dimensions 2 and 3 with inlined closed-form inverses, and up to
// dimension 5 through the dense Cholesky package.
//
// All variants share one algorithm: rescale coordinates by 𝐝 so the
// constraint becomes a unit ball of radius r, then run a 1-D Newton
// iteration on the multiplier λ ≥ 0 with f(λ) = ‖v(λ)‖² − r² where
// v(λ) = −(𝐀+λ𝐈)⁻¹𝐛. If the unconstrained minimizer already satisfies
// the bound, λ stays at zero and the returned flag is false; otherwise
// the result lies on the ellipsoid boundary and the flag is true. Loss
// of positive-definiteness along the way is a numerical condition, not
// an error: the result is zeroed and reported unconstrained.
package qcqp

import (
	"errors"
	"fmt"

	"github.com/curioloop/linsolve/chol"
)

// MaxDim is the largest dimension SolveN accepts.
const MaxDim = 5

const (
	// maxNewton caps the Newton iteration on λ.
	maxNewton = 20
	// tol is the convergence threshold on |f(λ)| and on the Newton step.
	tol = 1e-10
	// detTol is the positive-definiteness threshold on det(A+λI), and
	// the pivot floor handed to the Cholesky factorization in SolveN.
	detTol = 1e-10
)

// ErrDimension indicates a dimension beyond MaxDim, which is a caller
// contract violation rather than a numerical condition.
var ErrDimension = errors.New("qcqp: dimension exceeds maximum")

// Solve2 solves the 2-dimensional problem. A is 2×2 row-major (upper
// triangle read), b and d have length 2. res receives the minimizer in
// the original coordinates; the return is true iff the constraint is
// active.
func Solve2(res, A, b, d []float64, r float64) bool {
	if len(res) < 2 || len(A) < 4 || len(b) < 2 || len(d) < 2 {
		panic("bound check error")
	}

	// scale so the constraint becomes x'*x <= r*r
	b1 := b[0] * d[0]
	b2 := b[1] * d[1]
	a11 := A[0] * d[0] * d[0]
	a22 := A[3] * d[1] * d[1]
	a12 := A[1] * d[0] * d[1]

	var v1, v2 float64
	la := 0.0
	for iter := 0; iter < maxNewton; iter++ {
		det := (a11+la)*(a22+la) - a12*a12
		if det < detTol {
			res[0], res[1] = 0, 0
			return false
		}

		// P = inv(A+la)
		detinv := 1 / det
		p11 := (a22 + la) * detinv
		p22 := (a11 + la) * detinv
		p12 := -a12 * detinv

		// v = -P*b
		v1 = -p11*b1 - p12*b2
		v2 = -p12*b1 - p22*b2

		// converged, or initial point already inside the constraint set
		val := v1*v1 + v2*v2 - r*r
		if val < tol {
			break
		}

		deriv := -2.0 * (p11*v1*v1 + 2.0*p12*v1*v2 + p22*v2*v2)
		delta := -val / deriv
		if delta < tol {
			break
		}
		la += delta
	}

	res[0] = v1 * d[0]
	res[1] = v2 * d[1]
	return la != 0
}

// Solve3 solves the 3-dimensional problem; see Solve2. A is 3×3
// row-major with its upper triangle read.
func Solve3(res, A, b, d []float64, r float64) bool {
	if len(res) < 3 || len(A) < 9 || len(b) < 3 || len(d) < 3 {
		panic("bound check error")
	}

	b1 := b[0] * d[0]
	b2 := b[1] * d[1]
	b3 := b[2] * d[2]
	a11 := A[0] * d[0] * d[0]
	a22 := A[4] * d[1] * d[1]
	a33 := A[8] * d[2] * d[2]
	a12 := A[1] * d[0] * d[1]
	a13 := A[2] * d[0] * d[2]
	a23 := A[5] * d[1] * d[2]

	var v1, v2, v3 float64
	la := 0.0
	for iter := 0; iter < maxNewton; iter++ {
		// cofactors of A+la
		p11 := (a22+la)*(a33+la) - a23*a23
		p22 := (a11+la)*(a33+la) - a13*a13
		p33 := (a11+la)*(a22+la) - a12*a12
		p12 := a13*a23 - a12*(a33+la)
		p13 := a12*a23 - a13*(a22+la)
		p23 := a12*a13 - a23*(a11+la)

		det := (a11+la)*p11 + a12*p12 + a13*p13
		if det < detTol {
			res[0], res[1], res[2] = 0, 0, 0
			return false
		}

		detinv := 1 / det
		p11 *= detinv
		p22 *= detinv
		p33 *= detinv
		p12 *= detinv
		p13 *= detinv
		p23 *= detinv

		v1 = -p11*b1 - p12*b2 - p13*b3
		v2 = -p12*b1 - p22*b2 - p23*b3
		v3 = -p13*b1 - p23*b2 - p33*b3

		val := v1*v1 + v2*v2 + v3*v3 - r*r
		if val < tol {
			break
		}

		deriv := -2.0*(p11*v1*v1+p22*v2*v2+p33*v3*v3) -
			4.0*(p12*v1*v2+p13*v1*v3+p23*v2*v3)
		delta := -val / deriv
		if delta < tol {
			break
		}
		la += delta
	}

	res[0] = v1 * d[0]
	res[1] = v2 * d[1]
	res[2] = v3 * d[2]
	return la != 0
}

// SolveN solves the n-dimensional problem for n ≤ MaxDim; see Solve2.
// Instead of a closed-form inverse, each Newton step refactorizes
// A+λI with chol.Factor and solves with chol.Solve; a rank-deficient
// factorization reports the unconstrained case with a zero result.
// All intermediates live in fixed stack arrays. lg may be nil.
func SolveN(res, A, b, d []float64, r float64, n int, lg *Logger) (constrained bool, err error) {
	if n > MaxDim {
		return false, fmt.Errorf("n = %d: %w", n, ErrDimension)
	}
	if len(res) < n || len(A) < n*n || len(b) < n || len(d) < n {
		panic("bound check error")
	}

	var a, ala [MaxDim * MaxDim]float64
	var bs, tmp [MaxDim]float64

	for i := 0; i < n; i++ {
		bs[i] = b[i] * d[i]
		for j := 0; j < n; j++ {
			a[j+i*n] = A[j+i*n] * d[i] * d[j]
		}
	}

	la := 0.0
	for iter := 0; iter < maxNewton; iter++ {
		copy(ala[:n*n], a[:n*n])
		for i := 0; i < n; i++ {
			ala[i*(n+1)] += la
		}

		if chol.Factor(ala[:n*n], n, detTol) < n {
			for i := 0; i < n; i++ {
				res[i] = 0
			}
			lg.log(LogIter, "qcqp: iter %d: A+λI lost positive-definiteness, unconstrained\n", iter)
			return false, nil
		}

		// v = -(A+la)^-1 b
		chol.Solve(res, ala[:n*n], bs[:n], n)
		for i := 0; i < n; i++ {
			res[i] = -res[i]
		}

		val := dot(res, res, n) - r*r
		lg.log(LogIter, "qcqp: iter %d: λ=%g f=%g\n", iter, la, val)
		if val < tol {
			break
		}

		chol.Solve(tmp[:n], ala[:n*n], res, n)
		deriv := -2.0 * dot(res, tmp[:n], n)
		delta := -val / deriv
		if delta < tol {
			break
		}
		la += delta
	}

	for i := 0; i < n; i++ {
		res[i] *= d[i]
	}
	return la != 0, nil
}

func dot(x, y []float64, n int) (s float64) {
	for i := 0; i < n; i++ {
		s += x[i] * y[i]
	}
	return s
}
