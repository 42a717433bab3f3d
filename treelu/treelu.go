// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package treelu implements sparse LU factorization and solve for
// matrices whose sparsity pattern forms an elimination tree, so that no
// fill-in occurs during factorization.
//
// The factor is stored in the input buffer as LU = L + U, with the
// original matrix equal to (U+I)·L. Unlike the Cholesky packages, a
// too-small pivot is fatal here: there is no symmetric clamping story
// for an unsymmetric factorization, and a vanishing pivot on a tree
// pattern means the input itself is singular. All errors in this
// package indicate structural or contract violations; after an error
// the contents of the LU buffer are unspecified.
package treelu

import (
	"errors"
	"fmt"
	"math"

	"github.com/curioloop/linsolve/arena"
	"github.com/curioloop/linsolve/sparse"
)

// minPivot is the smallest admissible pivot magnitude.
const minPivot = 1e-15

var (
	// ErrNoDiagonal indicates a row whose stored entries do not contain
	// the diagonal at the expected position.
	ErrNoDiagonal = errors.New("treelu: missing diagonal element")
	// ErrSmallPivot indicates a diagonal element below the minimum magnitude.
	ErrSmallPivot = errors.New("treelu: diagonal element too small")
	// ErrFillIn indicates a pattern that would require fill-in to factorize.
	ErrFillIn = errors.New("treelu: factorization requires fill-in")
	// ErrStructure indicates an inconsistency detected while walking the
	// pattern (row processing incomplete, or counters not at the diagonal).
	ErrStructure = errors.New("treelu: unexpected sparse matrix structure")
)

// Factor computes the fill-in-free LU factorization of lu in place,
// processing rows from n−1 down to 0. The pattern is read-only; a
// scratch array of n ints is taken from a and released on every path.
//
// At each elimination step the remaining nonzero column sets of the two
// rows must align exactly: a column present in the pivot row but absent
// from the target row would require fill-in and returns ErrFillIn.
func Factor(lu []float64, n int, p *sparse.Pattern, a *arena.Arena) error {
	defer a.Release(a.Mark())
	remaining := a.Ints(n)
	copy(remaining, p.RowNNZ[:n])

	for i := n - 1; i >= 0; i-- {
		// a row exhausted before its own elimination step has lost its
		// diagonal to an earlier elimination
		if remaining[i] <= 0 {
			return fmt.Errorf("row %d exhausted: %w", i, ErrStructure)
		}

		// address of the diagonal (i,i): last remaining element of row i
		ii := p.RowAdr[i] + remaining[i] - 1
		remaining[i]--

		if p.ColInd[ii] != i {
			return fmt.Errorf("row %d: %w", i, ErrNoDiagonal)
		}
		if math.Abs(lu[ii]) < minPivot {
			return fmt.Errorf("row %d: %w", i, ErrSmallPivot)
		}

		// eliminate column i from every row j above with (j,i) nonzero
		for j := i - 1; j >= 0; j-- {
			if remaining[j] <= 0 {
				return fmt.Errorf("row %d exhausted: %w", j, ErrStructure)
			}
			ji := p.RowAdr[j] + remaining[j] - 1
			if p.ColInd[ji] != i {
				continue
			}
			remaining[j]--

			lu[ji] /= lu[ii]
			luJI := lu[ji]

			// (j,k) -= (i,k) * (j,i) for k < i; the remaining column
			// sets must merge without creating new entries
			icnt, jcnt := p.RowAdr[i], p.RowAdr[j]
			for jcnt < p.RowAdr[j]+remaining[j] {
				switch {
				case p.ColInd[icnt] == p.ColInd[jcnt]:
					lu[jcnt] -= lu[icnt] * luJI
					icnt++
					jcnt++
				case p.ColInd[icnt] > p.ColInd[jcnt]:
					jcnt++
				default:
					return fmt.Errorf("rows %d,%d column %d: %w", i, j, p.ColInd[icnt], ErrFillIn)
				}
			}
			if icnt != p.RowAdr[i]+remaining[i] || jcnt != p.RowAdr[j]+remaining[j] {
				return fmt.Errorf("rows %d,%d: row processing incomplete: %w", i, j, ErrStructure)
			}
		}
	}

	// every remaining counter must now sit on its diagonal
	for i := 0; i < n; i++ {
		if remaining[i] < 0 || p.ColInd[p.RowAdr[i]+remaining[i]] != i {
			return fmt.Errorf("row %d: %w", i, ErrStructure)
		}
	}
	return nil
}

// Solve solves mat·x = vec given the factorization produced by Factor:
// first (U+I)·y = vec by descending row order, then L·x = y ascending,
// each pass walking only the stored nonzeros of a row. A walk that does
// not land on the diagonal indicates a corrupted pattern and returns
// ErrNoDiagonal. res must not alias vec.
func Solve(res, lu, vec []float64, n int, p *sparse.Pattern) error {
	if uint(n) > uint(len(res)) || uint(n) > uint(len(vec)) {
		panic("bound check error")
	}

	// (U+I)·res = vec, diagonal of U+I is 1
	for i := n - 1; i >= 0; i-- {
		res[i] = vec[i]
		j := p.RowNNZ[i] - 1
		for j >= 0 && p.ColInd[p.RowAdr[i]+j] > i {
			res[i] -= res[p.ColInd[p.RowAdr[i]+j]] * lu[p.RowAdr[i]+j]
			j--
		}
		if j < 0 || p.ColInd[p.RowAdr[i]+j] != i {
			return fmt.Errorf("diagonal of U not reached at row %d: %w", i, ErrNoDiagonal)
		}
	}

	// L·res = res
	for i := 0; i < n; i++ {
		j := 0
		for j < p.RowNNZ[i] && p.ColInd[p.RowAdr[i]+j] < i {
			res[i] -= res[p.ColInd[p.RowAdr[i]+j]] * lu[p.RowAdr[i]+j]
			j++
		}
		if j >= p.RowNNZ[i] || p.ColInd[p.RowAdr[i]+j] != i {
			return fmt.Errorf("diagonal of L not reached at row %d: %w", i, ErrNoDiagonal)
		}
		res[i] /= lu[p.RowAdr[i]+j]
	}
	return nil
}
