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

// Realize identifies a state space model from outputs (r x N) and inputs
// (m x N) sampled every dt seconds. inputs may be nil for output-only records,
// in which case the model has no B and D.
//
// With Yp and Up the p block row Hankel matrices of the records, the
// information matrix
//
//	Rhh = Ryy - Ryu Ruu^+ Ryu^T
//
// removes the part of the output correlation explained by the inputs. Its
// dominant left singular vectors give the extended observability matrix
// Op = U_n S_n^(1/2), from which C is the first block row and A solves
// Op_top A = Op_bottom. B and D follow from the input correlations through
// the orthogonal complement of U_n, which needs powers of A up to p-2 only, so
// the fit does not degrade with the record length.
func Realize(inputs, outputs *mat.Dense, dt float64, opts ...Option) (*Realization, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if outputs == nil {
		return nil, fmt.Errorf("%w: no output record", errs.ErrInvalidConfiguration)
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("%w: sample interval must be positive, got %v", errs.ErrInvalidConfiguration, dt)
	}
	r, samples := outputs.Dims()
	m := 0
	if inputs != nil {
		var inSamples int
		m, inSamples = inputs.Dims()
		if inSamples != samples {
			return nil, fmt.Errorf("%w: %d input samples but %d output samples",
				errs.ErrInvalidConfiguration, inSamples, samples)
		}
		if gonumExtensions.NANORINF(inputs) {
			return nil, fmt.Errorf("%w: input record contains NaN or Inf", errs.ErrInvalidConfiguration)
		}
	}
	if gonumExtensions.NANORINF(outputs) {
		return nil, fmt.Errorf("%w: output record contains NaN or Inf", errs.ErrInvalidConfiguration)
	}

	p := cfg.Horizon
	yp, err := hankel.Build(outputs, p)
	if err != nil {
		return nil, err
	}
	_, cols := yp.Dims()
	scale := 1 / float64(cols)

	var info, toeplitz mat.Dense
	info.Mul(yp, yp.T())
	info.Scale(scale, &info)
	if m > 0 {
		up, err := hankel.Build(inputs, p)
		if err != nil {
			return nil, err
		}
		var ryu, ruu mat.Dense
		ryu.Mul(yp, up.T())
		ryu.Scale(scale, &ryu)
		ruu.Mul(up, up.T())
		ruu.Scale(scale, &ruu)
		ruuInv, _, ok := gonumExtensions.Pinv(&ruu, cfg.RCond)
		if !ok {
			return nil, fmt.Errorf("%w: svd of %dx%d input correlation did not converge",
				errs.ErrRealization, p*m, p*m)
		}
		// Ryu Ruu^+ = Op Rxu Ruu^+ + Tp
		var explained mat.Dense
		toeplitz.Mul(&ryu, ruuInv)
		explained.Mul(&toeplitz, ryu.T())
		info.Sub(&info, &explained)
	}

	u, values, n, err := truncate(&info, cfg.Order, (p-1)*r, cfg.RCond)
	if err != nil {
		return nil, err
	}
	half := make([]float64, n)
	for index := range half {
		half[index] = math.Sqrt(values[index])
	}
	op := scaleColumns(u, half)

	C := gonumExtensions.Rows(op, 0, r)
	A, _, ok := gonumExtensions.LeastSquares(
		gonumExtensions.Rows(op, 0, (p-1)*r),
		gonumExtensions.Rows(op, r, p*r),
		cfg.RCond,
	)
	if !ok {
		return nil, fmt.Errorf("%w: shift invariance solve on %dx%d observability matrix did not converge",
			errs.ErrRealization, (p-1)*r, n)
	}

	var B, D *mat.Dense
	if m > 0 {
		B, D, err = inputMatrices(A, C, u, &toeplitz, p, cfg)
		if err != nil {
			return nil, err
		}
	}
	model, err := ssm.NewStateSpaceModel(A, B, C, D, dt)
	if err != nil {
		return nil, err
	}
	model.Observability = op
	return finish(model, values, cfg.Order, n)
}

// inputMatrices recovers B and D from the input/output cross correlation.
// With Tp the block lower triangular Toeplitz matrix of the Markov parameters,
// block (i, j) being D for i = j and C A^(i-j-1) B for i > j, the data satisfy
//
//	Ryu Ruu^+ = Op Rxu Ruu^+ + Tp
//
// The columns U_o of u beyond the model order span the orthogonal complement
// of Op, so U_o^T Ryu Ruu^+ = U_o^T Tp. Block column j of that product is
//
//	P_j D + sum_i P_i C A^(i-j-1) B,  i = j+1..p-1
//
// with P_i the i-th block row of U_o^T, which is linear in B and D and is
// solved in the least squares sense.
func inputMatrices(A, C, u, toeplitz *mat.Dense, p int, cfg Config) (B, D *mat.Dense, err error) {
	n, _ := A.Dims()
	r, _ := C.Dims()
	rows, _ := u.Dims()
	_, cols := toeplitz.Dims()
	m := cols / p
	q := rows - n

	complement := gonumExtensions.Columns(u, n, rows)
	var projected mat.Dense
	projected.Mul(complement.T(), toeplitz)

	// observed[k] = C A^k
	observed := make([]*mat.Dense, max(p-1, 1))
	observed[0] = mat.DenseCopyOf(C)
	for k := 1; k < len(observed); k++ {
		next := mat.NewDense(r, n, nil)
		next.Mul(observed[k-1], A)
		observed[k] = next
	}
	block := func(i int) mat.Matrix {
		return complement.Slice(i*r, (i+1)*r, 0, q).T()
	}

	unknowns := n
	if cfg.Feedthrough {
		unknowns += r
	}
	regressor := mat.NewDense(p*q, unknowns, nil)
	target := mat.NewDense(p*q, m, nil)
	for j := 0; j < p; j++ {
		gamma := mat.NewDense(q, n, nil)
		for i := j + 1; i < p; i++ {
			var term mat.Dense
			term.Mul(block(i), observed[i-j-1])
			gamma.Add(gamma, &term)
		}
		regressor.Slice(j*q, (j+1)*q, 0, n).(*mat.Dense).Copy(gamma)
		if cfg.Feedthrough {
			regressor.Slice(j*q, (j+1)*q, n, n+r).(*mat.Dense).Copy(block(j))
		}
		target.Slice(j*q, (j+1)*q, 0, m).(*mat.Dense).Copy(projected.Slice(0, q, j*m, (j+1)*m))
	}

	theta, _, ok := gonumExtensions.LeastSquares(regressor, target, cfg.RCond)
	if !ok {
		return nil, nil, fmt.Errorf("%w: svd of the %dx%d input regression did not converge",
			errs.ErrRealization, p*q, unknowns)
	}
	B = mat.DenseCopyOf(theta.Slice(0, n, 0, m))
	D = mat.NewDense(r, m, nil)
	if cfg.Feedthrough {
		D.Copy(theta.Slice(n, n+r, 0, m))
	}
	return B, D, nil
}
