package gonumExtensions

import (
	"gonum.org/v1/gonum/mat"
)

// Rank returns the number of singular values above rcond times the largest
// one. The values must be sorted in descending order, as returned by mat.SVD.
func Rank(values []float64, rcond float64) int {
	if len(values) == 0 || values[0] <= 0 {
		return 0
	}
	tol := rcond * values[0]
	rank := 0
	for _, v := range values {
		if v <= tol {
			break
		}
		rank++
	}
	return rank
}

// Pinv returns the Moore-Penrose pseudo-inverse of a computed from a thin
// singular value decomposition. Singular values at or below rcond times the
// largest one are treated as zero, so rank deficient matrices give the minimum
// norm solution instead of blowing up.
//
//	a^+ = V_r S_r^-1 U_r^T
//
// The returned rank is the number of singular values kept. ok is false when
// the decomposition does not converge.
func Pinv(a mat.Matrix, rcond float64) (pinv *mat.Dense, rank int, ok bool) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, 0, false
	}
	values := svd.Values(nil)
	rank = Rank(values, rcond)

	m, n := a.Dims()
	pinv = mat.NewDense(n, m, nil)
	if rank == 0 {
		return pinv, 0, true
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// V_r S_r^-1
	vs := Columns(&v, 0, rank)
	for col := 0; col < rank; col++ {
		for row := 0; row < n; row++ {
			vs.Set(row, col, vs.At(row, col)/values[col])
		}
	}
	pinv.Mul(vs, Columns(&u, 0, rank).T())
	return pinv, rank, true
}

// LeastSquares returns the minimum norm solution x of a x = b using Pinv.
func LeastSquares(a, b mat.Matrix, rcond float64) (x *mat.Dense, rank int, ok bool) {
	pinv, rank, ok := Pinv(a, rcond)
	if !ok {
		return nil, 0, false
	}
	_, n := b.Dims()
	r, _ := pinv.Dims()
	x = mat.NewDense(r, n, nil)
	x.Mul(pinv, b)
	return x, rank, true
}
