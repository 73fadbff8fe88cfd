package srim

import (
	"fmt"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/internal/options"
)

// Defaults used when no option overrides them.
const (
	DefaultOrder   = 4
	DefaultHorizon = 5
	DefaultRCond   = 1e-10
)

// Config holds the realization parameters.
type Config struct {
	// Requested model order orm.
	Order int
	// Number of block rows p of the data Hankel matrices (Realize only).
	Horizon int
	// Relative singular value cut-off defining the numerical rank.
	RCond float64
	// Estimate D; when false D is forced to zero.
	Feedthrough bool
	// Block rows and columns of the Markov Hankel matrix (FromMarkov only),
	// 0 means (len(markov)-1)/2.
	Rows, Cols int
}

// Option configures Realize and FromMarkov.
type Option = options.Option[*Config]

func defaultConfig() Config {
	return Config{
		Order:       DefaultOrder,
		Horizon:     DefaultHorizon,
		RCond:       DefaultRCond,
		Feedthrough: true,
	}
}

// WithOrder sets the requested model order.
func WithOrder(order int) Option {
	return options.New(func(c *Config) error {
		if order <= 0 {
			return fmt.Errorf("%w: model order must be positive, got %d", errs.ErrInvalidConfiguration, order)
		}
		c.Order = order
		return nil
	})
}

// WithHorizon sets the number of block rows p of the data Hankel matrices.
func WithHorizon(p int) Option {
	return options.New(func(c *Config) error {
		if p < 2 {
			return fmt.Errorf("%w: hankel horizon must be at least 2, got %d", errs.ErrInvalidConfiguration, p)
		}
		c.Horizon = p
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

// WithFeedthrough toggles estimation of D.
func WithFeedthrough(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.Feedthrough = enabled
	})
}

// WithHankelShape sets the block rows and columns of the Markov Hankel matrix.
func WithHankelShape(rows, cols int) Option {
	return options.New(func(c *Config) error {
		if rows < 1 || cols < 1 {
			return fmt.Errorf("%w: hankel shape must be positive, got %dx%d", errs.ErrInvalidConfiguration, rows, cols)
		}
		c.Rows, c.Cols = rows, cols
		return nil
	})
}
