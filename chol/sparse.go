// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chol

import (
	"errors"
	"fmt"
	"math"

	"github.com/curioloop/linsolve/arena"
	"github.com/curioloop/linsolve/sparse"
)

var (
	// ErrNoDiagonal indicates a sparse row without an in-range diagonal entry.
	ErrNoDiagonal = errors.New("chol: matrix must have non-zero diagonal")
	// ErrPatternChanged indicates a rank-one update that would alter the
	// sparsity pattern of the factor.
	ErrPatternChanged = errors.New("chol: varying sparsity pattern in sparse update")
)

// FactorSparse computes the reverse-order sparse Cholesky factorization
// mat = Lᵀ·L in place, processing rows from n−1 down to 0. The pattern
// must be in uncompressed layout; each row is first shrunk so its last
// stored entry is the diagonal, and RowNNZ may grow afterwards where
// elimination fills a row in. Pivots below minDiag are clamped with rank
// bookkeeping as in Factor. Scratch: n ints and n float64s from a,
// released before return on every path.
//
// A row lacking a diagonal entry is a structural defect of the input and
// returns ErrNoDiagonal.
func FactorSparse(mat []float64, n int, minDiag float64, p *sparse.Pattern, a *arena.Arena) (rank int, err error) {
	defer a.Release(a.Mark())
	bufInd := a.Ints(n)
	buf := a.Floats(n)

	// shrink rows so that RowNNZ ends at the diagonal
	for r := 0; r < n; r++ {
		for p.RowNNZ[r] > 0 && p.ColInd[p.RowAdr[r]+p.RowNNZ[r]-1] > r {
			p.RowNNZ[r]--
		}
		if p.RowNNZ[r] == 0 || p.ColInd[p.RowAdr[r]+p.RowNNZ[r]-1] != r {
			return 0, fmt.Errorf("row %d: %w", r, ErrNoDiagonal)
		}
	}

	rank = n
	for r := n - 1; r >= 0; r-- {
		nnz, adr := p.RowNNZ[r], p.RowAdr[r]

		tmp := mat[adr+nnz-1]
		if tmp < minDiag {
			tmp = minDiag
			rank--
		}
		mat[adr+nnz-1] = math.Sqrt(tmp)
		tmp = 1 / mat[adr+nnz-1]

		for i := 0; i < nnz-1; i++ {
			mat[adr+i] *= tmp
		}

		// mat(c,0:c) -= mat(r,c) * mat(r,0:c) for each c < r with mat(r,c) != 0
		for i := 0; i < nnz-1; i++ {
			c := p.ColInd[adr+i]
			p.RowNNZ[c] = sparse.Combine(mat[p.RowAdr[c]:], mat[adr:], c+1,
				1, -mat[adr+i],
				p.RowNNZ[c], i+1, p.ColInd[p.RowAdr[c]:], p.ColInd[adr:],
				buf, bufInd)
		}
	}
	return rank, nil
}

// SolveSparse solves mat·x = vec given the sparse factor produced by
// FactorSparse. The transpose pass skips rows whose residual is exactly
// zero; the forward pass uses a sparse dot product. res may alias vec.
func SolveSparse(res, mat, vec []float64, n int, p *sparse.Pattern) {
	if uint(n) > uint(len(res)) || uint(n) > uint(len(vec)) {
		panic("bound check error")
	}
	copy(res[:n], vec[:n])

	// res <- L⁻ᵀ res
	for i := n - 1; i >= 0; i-- {
		if res[i] != 0 {
			adr, nnz := p.RowAdr[i], p.RowNNZ[i]
			res[i] /= mat[adr+nnz-1]
			tmp := res[i]
			for j := 0; j < nnz-1; j++ {
				res[p.ColInd[adr+j]] -= mat[adr+j] * tmp
			}
		}
	}

	// res <- L⁻¹ res
	for i := 0; i < n; i++ {
		adr, nnz := p.RowAdr[i], p.RowNNZ[i]
		if nnz > 1 {
			res[i] -= sparse.Dot(mat[adr:], res, nnz-1, p.ColInd[adr:])
		}
		res[i] /= mat[adr+nnz-1]
	}
}

// UpdateSparse applies the rank-one update Lᵀ·L ± x·xᵀ to a sparse
// factor, visiting only the rows named by x's nonzero pattern (xInd,
// ascending, xNNZ entries). Unlike FactorSparse the pattern of mat must
// not change: a row combine producing a different nonzero count returns
// ErrPatternChanged. x and xInd are consumed. Scratch as in FactorSparse.
func UpdateSparse(mat, x []float64, n int, plus bool, p *sparse.Pattern,
	xNNZ int, xInd []int, a *arena.Arena) (rank int, err error) {

	defer a.Release(a.Mark())
	bufInd := a.Ints(n)
	buf := a.Floats(n)

	rank = n
	for i := xNNZ - 1; i >= 0; {
		nnz, adr := p.RowNNZ[xInd[i]], p.RowAdr[xInd[i]]

		tmp := mat[adr+nnz-1] * mat[adr+nnz-1]
		if plus {
			tmp += x[i] * x[i]
		} else {
			tmp -= x[i] * x[i]
		}
		if tmp < minVal {
			tmp = minVal
			rank--
		}
		r := math.Sqrt(tmp)
		c := r / mat[adr+nnz-1]
		s := x[i] / mat[adr+nnz-1]

		mat[adr+nnz-1] = r

		// mat(r,1:r-1) = (mat(r,1:r-1) ± s*x(1:r-1)) / c
		sc := s / c
		if !plus {
			sc = -sc
		}
		newNNZ := sparse.Combine(mat[adr:], x, n, 1/c, sc,
			nnz-1, i, p.ColInd[adr:], xInd, buf, bufInd)
		if newNNZ != nnz-1 {
			return 0, fmt.Errorf("row %d: %w", xInd[i], ErrPatternChanged)
		}

		// x(1:r-1) = c*x(1:r-1) - s*mat(r,1:r-1)
		newXNNZ := sparse.Combine(x, mat[adr:], n, c, -s,
			i, nnz-1, xInd, p.ColInd[adr:], buf, bufInd)

		// step down, correcting for fill-in of x
		i = i - 1 + (newXNNZ - i)
	}
	return rank, nil
}
