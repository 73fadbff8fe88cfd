package gonumExtensions

import (
	"gonum.org/v1/gonum/mat"
)

// MulVecComplex returns the product of the real matrix a with the complex
// vector v.
func MulVecComplex(a mat.Matrix, v []complex128) []complex128 {
	m, n := a.Dims()
	if n != len(v) {
		panic(mat.ErrShape)
	}
	res := make([]complex128, m)
	for row := 0; row < m; row++ {
		var sum complex128
		for col := 0; col < n; col++ {
			sum += complex(a.At(row, col), 0) * v[col]
		}
		res[row] = sum
	}
	return res
}

// Column returns column j of a complex matrix as a slice.
func Column(matrix mat.CMatrix, j int) []complex128 {
	m, _ := matrix.Dims()
	res := make([]complex128, m)
	for row := range res {
		res[row] = matrix.At(row, j)
	}
	return res
}
