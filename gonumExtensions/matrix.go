package gonumExtensions

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Eye returns an (n by n) identity matrix.
func Eye(n int) *mat.Dense {
	res := mat.NewDense(n, n, nil)
	for index := 0; index < n; index++ {
		res.Set(index, index, 1)
	}
	return res
}

// NANORINF checks if there are any NAN or INF in matrix
func NANORINF(matrix mat.Matrix) bool {
	m, n := matrix.Dims()
	for row := 0; row < m; row++ {
		for col := 0; col < n; col++ {
			if math.IsNaN(matrix.At(row, col)) || math.IsInf(matrix.At(row, col), 0) {
				return true
			}
		}
	}
	return false
}

// Rows returns a copy of rows [from, to) of matrix.
func Rows(matrix mat.Matrix, from, to int) *mat.Dense {
	_, n := matrix.Dims()
	res := mat.NewDense(to-from, n, nil)
	for row := from; row < to; row++ {
		for col := 0; col < n; col++ {
			res.Set(row-from, col, matrix.At(row, col))
		}
	}
	return res
}

// Columns returns a copy of columns [from, to) of matrix.
func Columns(matrix mat.Matrix, from, to int) *mat.Dense {
	m, _ := matrix.Dims()
	res := mat.NewDense(m, to-from, nil)
	for row := 0; row < m; row++ {
		for col := from; col < to; col++ {
			res.Set(row, col-from, matrix.At(row, col))
		}
	}
	return res
}
