package gonumExtensions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNANORINF(t *testing.T) {
	require.False(t, NANORINF(Eye(3)))
	m := Eye(2)
	m.Set(1, 0, math.NaN())
	require.True(t, NANORINF(m))
	m.Set(1, 0, math.Inf(-1))
	require.True(t, NANORINF(m))
}

func TestRowsColumns(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.True(t, mat.Equal(Rows(m, 1, 3), mat.NewDense(2, 3, []float64{4, 5, 6, 7, 8, 9})))
	require.True(t, mat.Equal(Columns(m, 0, 2), mat.NewDense(3, 2, []float64{1, 2, 4, 5, 7, 8})))
}

func TestRank(t *testing.T) {
	require.Equal(t, 0, Rank(nil, 1e-10))
	require.Equal(t, 0, Rank([]float64{0, 0}, 1e-10))
	require.Equal(t, 2, Rank([]float64{10, 1, 1e-14}, 1e-10))
	require.Equal(t, 3, Rank([]float64{10, 1, 1e-3}, 1e-10))
}

func TestPinvFullRank(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{1, 0, 0, 2, 1, 1})
	pinv, rank, ok := Pinv(a, 1e-12)
	require.True(t, ok)
	require.Equal(t, 2, rank)

	var prod mat.Dense
	prod.Mul(pinv, a)
	require.True(t, mat.EqualApprox(&prod, Eye(2), 1e-12))
}

func TestPinvRankDeficient(t *testing.T) {
	// second column is twice the first
	a := mat.NewDense(3, 2, []float64{1, 2, 2, 4, 3, 6})
	pinv, rank, ok := Pinv(a, 1e-10)
	require.True(t, ok)
	require.Equal(t, 1, rank)
	require.False(t, NANORINF(pinv))

	// a a^+ a = a holds for the pseudo-inverse
	var tmp, back mat.Dense
	tmp.Mul(a, pinv)
	back.Mul(&tmp, a)
	require.True(t, mat.EqualApprox(&back, a, 1e-10))
}

func TestLeastSquares(t *testing.T) {
	a := mat.NewDense(4, 2, []float64{1, 0, 1, 1, 1, 2, 1, 3})
	b := mat.NewDense(4, 1, []float64{1, 3, 5, 7})
	x, rank, ok := LeastSquares(a, b, 1e-12)
	require.True(t, ok)
	require.Equal(t, 2, rank)
	require.InDelta(t, 1, x.At(0, 0), 1e-10)
	require.InDelta(t, 2, x.At(1, 0), 1e-10)
}

func TestMulVecComplex(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	res := MulVecComplex(a, []complex128{1i, 1})
	require.Equal(t, []complex128{2 + 1i, 4 + 3i}, res)

	c := mat.NewCDense(2, 2, []complex128{1, 2i, 3, 4i})
	require.Equal(t, []complex128{2i, 4i}, Column(c, 1))
}
