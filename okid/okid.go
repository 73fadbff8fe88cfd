// Package okid implements Observer/Kalman filter IDentification: the Markov
// parameters (discrete impulse response) of a system are recovered from
// input/output records through an observer-extended ARX regression.
package okid

import (
	"fmt"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/gonumExtensions"
	"github.com/hammal/ssid/hankel"
	"github.com/hammal/ssid/internal/options"
	"gonum.org/v1/gonum/mat"
)

// DefaultRCond is the relative singular value cut-off of the regression solve.
const DefaultRCond = 1e-10

// Config holds the OKID estimation parameters.
type Config struct {
	// Number of Markov parameters Y(0), ..., Y(Count-1) to return; 0 means 2p+1.
	Count int
	// Relative singular value cut-off for the pseudo-inverse.
	RCond float64
	// Smallest acceptable regression rank; 0 means m(p+1).
	MinRank int
}

// Option configures Estimate.
type Option = options.Option[*Config]

// WithCount sets the number of Markov parameters returned.
func WithCount(count int) Option {
	return options.New(func(c *Config) error {
		if count < 1 {
			return fmt.Errorf("%w: markov parameter count must be positive, got %d", errs.ErrInvalidConfiguration, count)
		}
		c.Count = count
		return nil
	})
}

// WithRCond sets the relative singular value cut-off.
func WithRCond(rcond float64) Option {
	return options.New(func(c *Config) error {
		if !(rcond > 0) || rcond >= 1 {
			return fmt.Errorf("%w: rcond must lie in (0, 1), got %v", errs.ErrInvalidConfiguration, rcond)
		}
		c.RCond = rcond
		return nil
	})
}

// WithMinRank sets the smallest regression rank accepted before failing with
// errs.ErrIllConditionedRegression.
func WithMinRank(rank int) Option {
	return options.New(func(c *Config) error {
		if rank < 0 {
			return fmt.Errorf("%w: minimum regression rank must not be negative, got %d", errs.ErrInvalidConfiguration, rank)
		}
		c.MinRank = rank
		return nil
	})
}

// Estimate returns the Markov parameters Y(0) = D, Y(1), ... of the system
// driving outputs (r x N) from inputs (m x N).
//
// Every output sample k >= p is regressed on the present input and the p
// previous input and output samples
//
// y(k) = D u(k) + sum_i [ Yb1(i) u(k-i) + Yb2(i) y(k-i) ],  i = 1..p
//
// and the observer Markov parameters Yb are solved for with a rank aware
// pseudo-inverse. The system Markov parameters then follow from unwinding the
// output feedback order by order
//
// Y(k) = Yb1(k) + sum_i Yb2(i) Y(k-i),  i = 1..min(k, p)
//
// with Yb1(k) = 0 for k > p.
func Estimate(inputs, outputs *mat.Dense, p int, opts ...Option) ([]*mat.Dense, error) {
	cfg := Config{RCond: DefaultRCond}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if inputs == nil || outputs == nil {
		return nil, fmt.Errorf("%w: okid needs both input and output records", errs.ErrInvalidConfiguration)
	}
	if p < 1 {
		return nil, fmt.Errorf("%w: observer order p must be positive, got %d", errs.ErrInvalidConfiguration, p)
	}
	m, samples := inputs.Dims()
	r, outSamples := outputs.Dims()
	if samples != outSamples {
		return nil, fmt.Errorf("%w: %d input samples but %d output samples",
			errs.ErrInvalidConfiguration, samples, outSamples)
	}
	if gonumExtensions.NANORINF(inputs) || gonumExtensions.NANORINF(outputs) {
		return nil, fmt.Errorf("%w: records contain NaN or Inf", errs.ErrInvalidConfiguration)
	}
	if samples <= p {
		return nil, fmt.Errorf("%w: observer order %d needs more than %d samples, have %d",
			errs.ErrInsufficientData, p, p, samples)
	}
	count := cfg.Count
	if count == 0 {
		count = 2*p + 1
	}
	minRank := cfg.MinRank
	if minRank == 0 {
		minRank = m * (p + 1)
	}

	// v(k) = [u(k); y(k)]
	var v mat.Dense
	v.Stack(inputs, outputs)

	// Column j of the regression targets sample k = j + p. Block b of the
	// lagged Hankel holds v(k-p+b), i.e. lag p-b.
	cols := samples - p
	lagged, err := hankel.BuildCols(&v, p, cols)
	if err != nil {
		return nil, err
	}
	var regressor mat.Dense
	regressor.Stack(inputs.Slice(0, m, p, samples), lagged)
	target := outputs.Slice(0, r, p, samples)

	pinv, rank, ok := gonumExtensions.Pinv(&regressor, cfg.RCond)
	if !ok {
		return nil, fmt.Errorf("%w: svd of the %dx%d okid regression did not converge",
			errs.ErrRealization, m+p*(m+r), cols)
	}
	if rank < minRank {
		return nil, fmt.Errorf("%w: regression rank %d below %d (regression is %dx%d)",
			errs.ErrIllConditionedRegression, rank, minRank, m+p*(m+r), cols)
	}

	// observer Markov parameters, r x (m + p(m+r))
	var observer mat.Dense
	observer.Mul(target, pinv)

	blockOf := func(lag int) int {
		return m + (p-lag)*(m+r)
	}
	yb1 := make([]*mat.Dense, p+1)
	yb2 := make([]*mat.Dense, p+1)
	for lag := 1; lag <= p; lag++ {
		col := blockOf(lag)
		yb1[lag] = mat.DenseCopyOf(observer.Slice(0, r, col, col+m))
		yb2[lag] = mat.DenseCopyOf(observer.Slice(0, r, col+m, col+m+r))
	}

	markov := make([]*mat.Dense, count)
	markov[0] = mat.DenseCopyOf(observer.Slice(0, r, 0, m))
	for k := 1; k < count; k++ {
		y := mat.NewDense(r, m, nil)
		if k <= p {
			y.Copy(yb1[k])
		}
		for lag := 1; lag <= k && lag <= p; lag++ {
			var term mat.Dense
			term.Mul(yb2[lag], markov[k-lag])
			y.Add(y, &term)
		}
		markov[k] = y
	}
	return markov, nil
}
