package srim

import (
	"fmt"
	"math"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/gonumExtensions"
	"github.com/hammal/ssid/hankel"
	"github.com/hammal/ssid/internal/options"
	"github.com/hammal/ssid/ssm"
	"gonum.org/v1/gonum/mat"
)

// FromMarkov realizes a model from the Markov parameters Y(0) = D, Y(1), ...
// of a system sampled every dt seconds.
//
// H0 and H1 are the Markov Hankel matrices starting at Y(1) and Y(2). The
// information matrix H0 H0^T = U S^2 U^T gives
//
//	A = S^(-1/2) U^T H1 V S^(-1/2)
//	B = first m columns of S^(1/2) V^T
//	C = first r rows of U S^(1/2)
//	D = Y(0)
//
// with V = H0^T U S^-1 and U, S truncated to the effective order.
func FromMarkov(markov []*mat.Dense, dt float64, opts ...Option) (*Realization, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if len(markov) < 3 {
		return nil, fmt.Errorf("%w: realization needs at least 3 markov parameters, have %d",
			errs.ErrInsufficientData, len(markov))
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("%w: sample interval must be positive, got %v", errs.ErrInvalidConfiguration, dt)
	}
	rows, cols := cfg.Rows, cfg.Cols
	if rows == 0 {
		rows = (len(markov) - 1) / 2
	}
	if cols == 0 {
		cols = (len(markov) - 1) / 2
	}

	r, m := markov[0].Dims()
	for k, y := range markov {
		if yr, ym := y.Dims(); yr != r || ym != m {
			return nil, fmt.Errorf("%w: markov parameter 0 is %dx%d, parameter %d is %dx%d",
				errs.ErrInvalidConfiguration, r, m, k, yr, ym)
		}
	}
	h0, err := hankel.Markov(markov, rows, cols, 1)
	if err != nil {
		return nil, err
	}
	h1, err := hankel.Markov(markov, rows, cols, 2)
	if err != nil {
		return nil, err
	}

	var info mat.Dense
	info.Mul(h0, h0.T())
	u, values, n, err := truncate(&info, cfg.Order, min(rows*r, cols*m), cfg.RCond)
	if err != nil {
		return nil, err
	}

	half := make([]float64, n)
	invHalf := make([]float64, n)
	invThreeHalves := make([]float64, n)
	for index := range half {
		sigma := math.Sqrt(values[index])
		half[index] = math.Sqrt(sigma)
		invHalf[index] = 1 / half[index]
		invThreeHalves[index] = invHalf[index] / sigma
	}

	// H0^T U = V S
	var vs mat.Dense
	vs.Mul(h0.T(), gonumExtensions.Columns(u, 0, n))

	var left, A mat.Dense
	left.Mul(scaleColumns(u, invHalf).T(), h1)
	A.Mul(&left, scaleColumns(&vs, invThreeHalves))

	// V S^(1/2) = (H0^T U) S^(-1/2)
	controllability := scaleColumns(&vs, invHalf)
	B := mat.DenseCopyOf(gonumExtensions.Rows(controllability, 0, m).T())

	op := scaleColumns(u, half)
	C := gonumExtensions.Rows(op, 0, r)

	D := mat.NewDense(r, m, nil)
	if cfg.Feedthrough {
		D.Copy(markov[0])
	}

	model, err := ssm.NewStateSpaceModel(&A, B, C, D, dt)
	if err != nil {
		return nil, err
	}
	model.Observability = op
	return finish(model, values, cfg.Order, n)
}
