// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eig3 computes the eigendecomposition of a symmetric 3×3
// matrix by cyclic Jacobi iteration.
//
// The accumulated rotation is carried as a unit quaternion rather than
// a 3×3 matrix, so the eigenvector basis stays orthonormal without
// re-orthogonalization: each sweep composes one incremental rotation
// into the running quaternion and renormalizes four numbers.
package eig3

import "math"

const (
	// eps bounds both the largest admissible off-diagonal element at
	// convergence and the distance of the rotation cosine from 1 below
	// which no further progress is possible.
	eps     = 1e-12
	maxIter = 500
)

// Decompose computes eigenvalues and eigenvectors of the symmetric 3×3
// row-major matrix mat. All nine entries are read; the caller must
// supply a symmetric matrix. On return
// eigval (length 3) holds the eigenvalues in decreasing order, eigvec
// (length 9, row-major) holds orthonormal eigenvectors in its columns
// matching eigval, and quat (length 4, w-first) holds the unit
// quaternion of the accumulated rotation, with eigvec = R(quat).
// Returns the number of Jacobi iterations used.
func Decompose(eigval, eigvec, quat, mat []float64) int {
	if len(eigval) < 3 || len(eigvec) < 9 || len(quat) < 4 || len(mat) < 9 {
		panic("bound check error")
	}

	var d, tmp [9]float64
	var dq, nq [4]float64

	quat[0] = 1
	quat[1], quat[2], quat[3] = 0, 0, 0

	iter := 0
	for ; iter < maxIter; iter++ {
		// D = R(quat)ᵀ · mat · R(quat)
		quatToMat(eigvec, quat)
		mulMatTMat3(&tmp, eigvec, mat)
		mulMatMat3(&d, tmp[:], eigvec)

		eigval[0] = d[0]
		eigval[1] = d[4]
		eigval[2] = d[8]

		// largest off-diagonal element of (0,1), (0,2), (1,2)
		var rk, ck, rotk int
		if math.Abs(d[1]) > math.Abs(d[2]) && math.Abs(d[1]) > math.Abs(d[5]) {
			rk, ck, rotk = 0, 1, 2
		} else if math.Abs(d[2]) > math.Abs(d[5]) {
			rk, ck, rotk = 0, 2, 1
		} else {
			rk, ck, rotk = 1, 2, 0
		}
		if math.Abs(d[3*rk+ck]) < eps {
			break
		}

		// 2×2 symmetric Schur decomposition in the (rk,ck) plane
		tau := (d[4*ck] - d[4*rk]) / (2 * d[3*rk+ck])
		var t float64
		if tau >= 0 {
			t = 1.0 / (tau + math.Sqrt(1+tau*tau))
		} else {
			t = -1.0 / (-tau + math.Sqrt(1+tau*tau))
		}
		c := 1.0 / math.Sqrt(1+t*t)
		if c > 1.0-eps {
			break
		}

		// incremental rotation about the axis orthogonal to the plane
		dq[1], dq[2], dq[3] = 0, 0, 0
		if tau >= 0 {
			dq[rotk+1] = -math.Sqrt(0.5 - 0.5*c)
		} else {
			dq[rotk+1] = math.Sqrt(0.5 - 0.5*c)
		}
		if rotk == 1 {
			dq[rotk+1] = -dq[rotk+1]
		}
		dq[0] = math.Sqrt(1.0 - dq[rotk+1]*dq[rotk+1])
		normalize4(dq[:])

		mulQuat(&nq, quat, dq[:])
		copy(quat[:4], nq[:])
		normalize4(quat)
	}

	// sort eigenvalues in decreasing order (bubble passes 0, 1, 0),
	// realizing each swap as a 90° rotation about the third axis
	for j := 0; j < 3; j++ {
		j1 := j % 2
		if eigval[j1] < eigval[j1+1] {
			eigval[j1], eigval[j1+1] = eigval[j1+1], eigval[j1]

			dq[0] = 0.707106781186548 // cos(π/4) = sin(π/4)
			dq[1], dq[2], dq[3] = 0, 0, 0
			dq[(j1+2)%3+1] = dq[0]
			mulQuat(&nq, quat, dq[:])
			copy(quat[:4], nq[:])
			normalize4(quat)
		}
	}

	quatToMat(eigvec, quat)
	return iter
}

// quatToMat writes the rotation matrix of a unit quaternion, row-major.
func quatToMat(res []float64, q []float64) {
	w, x, y, z := q[0], q[1], q[2], q[3]
	res[0] = w*w + x*x - y*y - z*z
	res[1] = 2 * (x*y - w*z)
	res[2] = 2 * (x*z + w*y)
	res[3] = 2 * (x*y + w*z)
	res[4] = w*w - x*x + y*y - z*z
	res[5] = 2 * (y*z - w*x)
	res[6] = 2 * (x*z - w*y)
	res[7] = 2 * (y*z + w*x)
	res[8] = w*w - x*x - y*y + z*z
}

// mulQuat computes the Hamilton product res = a·b.
func mulQuat(res *[4]float64, a, b []float64) {
	res[0] = a[0]*b[0] - a[1]*b[1] - a[2]*b[2] - a[3]*b[3]
	res[1] = a[0]*b[1] + a[1]*b[0] + a[2]*b[3] - a[3]*b[2]
	res[2] = a[0]*b[2] - a[1]*b[3] + a[2]*b[0] + a[3]*b[1]
	res[3] = a[0]*b[3] + a[1]*b[2] - a[2]*b[1] + a[3]*b[0]
}

// normalize4 rescales q to unit norm, resetting to identity if the
// norm has collapsed numerically.
func normalize4(q []float64) {
	norm := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if norm < 1e-15 {
		q[0] = 1
		q[1], q[2], q[3] = 0, 0, 0
		return
	}
	inv := 1 / norm
	q[0] *= inv
	q[1] *= inv
	q[2] *= inv
	q[3] *= inv
}

// mulMatTMat3 computes res = aᵀ·b for 3×3 row-major matrices.
func mulMatTMat3(res *[9]float64, a, b []float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			res[3*i+j] = a[i]*b[j] + a[3+i]*b[3+j] + a[6+i]*b[6+j]
		}
	}
}

// mulMatMat3 computes res = a·b for 3×3 row-major matrices.
func mulMatMat3(res *[9]float64, a, b []float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			res[3*i+j] = a[3*i]*b[j] + a[3*i+1]*b[3+j] + a[3*i+2]*b[6+j]
		}
	}
}
