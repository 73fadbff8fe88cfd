package spectral

import (
	"fmt"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/internal/options"
)

// Config holds the spectral estimation parameters.
type Config struct {
	// Number of modes picked from the spectrum.
	Peaks int
	// Moving average window applied to Fourier spectra, in bins.
	Smoothing int
	// Damping ratio of the response spectrum oscillators.
	Damping float64
	// Response spectrum grid: number of points and frequency range in Hz.
	// Zero bounds select two cycles per record and a quarter of the sampling
	// rate.
	Points           int
	MinFreq, MaxFreq float64
}

// Option configures the spectral methods.
type Option = options.Option[*Config]

func defaultConfig() Config {
	return Config{
		Peaks:     1,
		Smoothing: 5,
		Damping:   0.05,
		Points:    200,
	}
}

// WithPeaks sets the number of modes picked from the spectrum.
func WithPeaks(count int) Option {
	return options.New(func(c *Config) error {
		if count < 1 {
			return fmt.Errorf("%w: peak count must be positive, got %d", errs.ErrInvalidConfiguration, count)
		}
		c.Peaks = count
		return nil
	})
}

// WithSmoothing sets the moving average window of Fourier spectra.
func WithSmoothing(bins int) Option {
	return options.New(func(c *Config) error {
		if bins < 1 {
			return fmt.Errorf("%w: smoothing window must be positive, got %d", errs.ErrInvalidConfiguration, bins)
		}
		c.Smoothing = bins
		return nil
	})
}

// WithDamping sets the damping ratio of the response spectrum oscillators.
func WithDamping(zeta float64) Option {
	return options.New(func(c *Config) error {
		if !(zeta > 0) || zeta >= 1 {
			return fmt.Errorf("%w: oscillator damping must lie in (0, 1), got %v", errs.ErrInvalidConfiguration, zeta)
		}
		c.Damping = zeta
		return nil
	})
}

// WithGrid sets the response spectrum frequency grid.
func WithGrid(points int, minFreq, maxFreq float64) Option {
	return options.New(func(c *Config) error {
		if points < 3 || !(minFreq > 0) || !(maxFreq > minFreq) {
			return fmt.Errorf("%w: grid needs at least 3 points and 0 < min < max, got %d, %v, %v",
				errs.ErrInvalidConfiguration, points, minFreq, maxFreq)
		}
		c.Points, c.MinFreq, c.MaxFreq = points, minFreq, maxFreq
		return nil
	})
}
