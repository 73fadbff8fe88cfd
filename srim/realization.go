// Package srim realizes discrete state space models from data. Realize uses the
// System Realization using Information Matrix (SRIM) on input/output records,
// FromMarkov the Eigensystem Realization Algorithm with data correlations on a
// Markov parameter sequence.
//
// Both build an information matrix, factor it with a singular value
// decomposition, truncate it to the requested order and recover A from the
// shift invariance of the extended observability matrix.
package srim

import (
	"fmt"
	"math"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/gonumExtensions"
	"github.com/hammal/ssid/ssm"
	"gonum.org/v1/gonum/mat"
)

// Realization is an identified model together with the singular value
// spectrum it was truncated from.
type Realization struct {
	Model *ssm.StateSpaceModel
	// Full singular value spectrum of the information matrix, descending.
	SingularValues []float64
	// Order asked for.
	RequestedOrder int
	// Order used, clipped to the numerical rank and the shift invariance limit.
	EffectiveOrder int
}

// ConditionNumber returns the ratio of the largest to the smallest kept
// singular value.
func (r Realization) ConditionNumber() float64 {
	if r.EffectiveOrder == 0 || len(r.SingularValues) < r.EffectiveOrder {
		return math.Inf(1)
	}
	return r.SingularValues[0] / r.SingularValues[r.EffectiveOrder-1]
}

// truncate factors the symmetric information matrix and returns its left
// singular vectors, the full spectrum and the order to keep.
func truncate(info *mat.Dense, requested, limit int, rcond float64) (*mat.Dense, []float64, int, error) {
	rows, cols := info.Dims()
	var svd mat.SVD
	if !svd.Factorize(info, mat.SVDThin) {
		return nil, nil, 0, fmt.Errorf("%w: svd of %dx%d information matrix did not converge",
			errs.ErrRealization, rows, cols)
	}
	values := svd.Values(nil)
	rank := gonumExtensions.Rank(values, rcond)
	if rank == 0 {
		return nil, nil, 0, fmt.Errorf("%w: %dx%d information matrix has zero rank",
			errs.ErrRealization, rows, cols)
	}
	order := min(requested, rank, limit)
	if order < 1 {
		return nil, nil, 0, fmt.Errorf("%w: no state can be realized, rank %d, shift limit %d",
			errs.ErrRealization, rank, limit)
	}
	var u mat.Dense
	svd.UTo(&u)
	return &u, values, order, nil
}

// scaleColumns returns a copy of the first len(scale) columns of matrix with
// column j multiplied by scale[j].
func scaleColumns(matrix mat.Matrix, scale []float64) *mat.Dense {
	res := gonumExtensions.Columns(matrix, 0, len(scale))
	rows, _ := res.Dims()
	for col, s := range scale {
		for row := 0; row < rows; row++ {
			res.Set(row, col, res.At(row, col)*s)
		}
	}
	return res
}

func finish(model *ssm.StateSpaceModel, values []float64, requested, order int) (*Realization, error) {
	if !model.Finite() {
		n := model.StateSpaceOrder()
		return nil, fmt.Errorf("%w: order %d realization contains NaN or Inf", errs.ErrRealization, n)
	}
	return &Realization{
		Model:          model,
		SingularValues: values,
		RequestedOrder: requested,
		EffectiveOrder: order,
	}, nil
}
