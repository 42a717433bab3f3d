// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse defines the row-compressed matrix layout shared by the
// sparse factorization packages, and the row merge/dot kernels they are
// built on.
//
// A matrix is stored as three parallel arrays plus a value buffer:
//
//   - RowNNZ[i]: number of stored entries in row i
//   - RowAdr[i]: offset of row i into the value/index buffers
//   - ColInd[k]: column of stored entry k, ascending within each row
//
// The layout is uncompressed: the storage region of a row may have slack
// past its nonzero count, so a row can shrink (or, where the caller
// permits fill-in, grow) in place without relocating other rows.
package sparse

// Pattern is the sparsity structure of a row-compressed matrix.
// The value buffer is carried separately so that several matrices
// (e.g. a matrix and its factor) can share one pattern.
type Pattern struct {
	RowNNZ []int
	RowAdr []int
	ColInd []int
}

// Dot computes the dot product of a sparse row with a dense vector:
// Σ vals[k]*vec[ind[k]] for k < nnz.
func Dot(vals, vec []float64, nnz int, ind []int) (dot float64) {
	if nnz <= 0 {
		return 0
	}
	if nnz > len(vals) || nnz > len(ind) {
		panic("bound check error")
	}
	m := nnz % 4
	for k := 0; k < m; k++ {
		dot += vals[k] * vec[ind[k]]
	}
	for k := m; k < nnz; k += 4 {
		v := vals[k : k+4 : k+4]
		i := ind[k : k+4 : k+4]
		dot += v[0]*vec[i[0]] + v[1]*vec[i[1]] + v[2]*vec[i[2]] + v[3]*vec[i[3]]
	}
	return dot
}

// Combine merges two sparse rows in place: dst = a*dst + b*src.
//
// Both index sets must be ascending; the merged result is ascending and
// deduplicated, and may contain more entries than dst held on entry
// (fill-in). The caller decides whether a changed count is acceptable.
// n bounds the column indices (used as a merge sentinel). buf and bufInd
// are scratch of at least dstNNZ entries; dst and dstInd must have
// capacity for the merged result. Returns the merged nonzero count.
func Combine(dst, src []float64, n int, a, b float64,
	dstNNZ, srcNNZ int, dstInd, srcInd []int,
	buf []float64, bufInd []int) int {

	// identical pattern: combine values directly, no merge needed
	if dstNNZ == srcNNZ {
		if dstNNZ == 0 {
			return 0
		}
		same := true
		for k := 0; k < dstNNZ; k++ {
			if dstInd[k] != srcInd[k] {
				same = false
				break
			}
		}
		if same {
			for k := 0; k < dstNNZ; k++ {
				dst[k] = a*dst[k] + b*src[k]
			}
			return dstNNZ
		}
	}

	// stash dst, then merge buf and src back into dst
	copy(buf[:dstNNZ], dst[:dstNNZ])
	copy(bufInd[:dstNNZ], dstInd[:dstNNZ])

	bi, si, nnz := 0, 0, 0
	bufCol, srcCol := n+1, n+1
	if dstNNZ > 0 {
		bufCol = bufInd[0]
	}
	if srcNNZ > 0 {
		srcCol = srcInd[0]
	}

	for bi < dstNNZ || si < srcNNZ {
		switch {
		case bufCol == srcCol:
			dst[nnz] = a*buf[bi] + b*src[si]
			dstInd[nnz] = bufCol
			nnz++
			bi++
			si++
			bufCol, srcCol = n+1, n+1
			if bi < dstNNZ {
				bufCol = bufInd[bi]
			}
			if si < srcNNZ {
				srcCol = srcInd[si]
			}
		case bufCol < srcCol:
			dst[nnz] = a * buf[bi]
			dstInd[nnz] = bufCol
			nnz++
			bi++
			bufCol = n + 1
			if bi < dstNNZ {
				bufCol = bufInd[bi]
			}
		default:
			dst[nnz] = b * src[si]
			dstInd[nnz] = srcCol
			nnz++
			si++
			srcCol = n + 1
			if si < srcNNZ {
				srcCol = srcInd[si]
			}
		}
	}
	return nnz
}
