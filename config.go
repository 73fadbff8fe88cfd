package ssid

import (
	"fmt"
	"os"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/internal/options"
	"github.com/hammal/ssid/signal"
)

// Config holds every identification parameter. It is a plain value: copies
// never share state, so a Config may be reused across runs.
type Config struct {
	// Observer order of OKID and number of block rows of the SRIM Hankel matrices
	P int
	// Requested model order
	Order int
	// Sample interval override in seconds, 0 takes it from the records
	Dt float64
	// Identification algorithm
	Method Method
	// Strong motion windowing
	Window     bool
	Intensity  signal.IntensityMeasure
	LowerBound float64
	UpperBound float64
	// Keep real positive eigenvalues as overdamped modes
	Overdamped bool
	// Estimate the feedthrough matrix D
	Feedthrough bool
	// Relative singular value cut-off
	RCond float64
	// Damping ratio of the response spectrum oscillators
	Damping float64
}

// Option configures NewConfig.
type Option = options.Option[*Config]

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		P:           5,
		Order:       4,
		Method:      MethodSRIM,
		Intensity:   signal.Arias,
		LowerBound:  signal.DefaultLowerBound,
		UpperBound:  signal.DefaultUpperBound,
		Feedthrough: true,
		RCond:       1e-10,
		Damping:     0.05,
	}
}

// NewConfig applies opts to the default configuration and validates the
// result.
func NewConfig(opts ...Option) (Config, error) {
	return build(DefaultConfig(), opts...)
}

// ConfigFromEnv is NewConfig starting from defaults overridden by the SSID_*
// environment variables. Malformed values keep the default.
func ConfigFromEnv(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	cfg.P = getEnvInt("SSID_P", cfg.P)
	cfg.Order = getEnvInt("SSID_ORDER", cfg.Order)
	cfg.Dt = getEnvFloat("SSID_DT", cfg.Dt)
	if method, err := ParseMethod(getEnv("SSID_METHOD", string(cfg.Method))); err == nil {
		cfg.Method = method
	}
	cfg.Window = getEnvBool("SSID_WINDOW", cfg.Window)
	if measure, err := signal.ParseIntensityMeasure(getEnv("SSID_INTENSITY", string(cfg.Intensity))); err == nil {
		cfg.Intensity = measure
	}
	cfg.LowerBound = getEnvFloat("SSID_LB", cfg.LowerBound)
	cfg.UpperBound = getEnvFloat("SSID_UB", cfg.UpperBound)
	cfg.Overdamped = getEnvBool("SSID_OVERDAMPED", cfg.Overdamped)
	cfg.Feedthrough = getEnvBool("SSID_FEEDTHROUGH", cfg.Feedthrough)
	cfg.RCond = getEnvFloat("SSID_RCOND", cfg.RCond)
	cfg.Damping = getEnvFloat("SSID_DAMPING", cfg.Damping)
	return build(cfg, opts...)
}

func build(cfg Config, opts ...Option) (Config, error) {
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}
	if method, err := ParseMethod(string(cfg.Method)); err == nil {
		cfg.Method = method
	}
	if measure, err := signal.ParseIntensityMeasure(string(cfg.Intensity)); err == nil {
		cfg.Intensity = measure
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.P < 2 {
		return fmt.Errorf("%w: p must be at least 2, got %d", errs.ErrInvalidConfiguration, c.P)
	}
	if c.Order < 1 {
		return fmt.Errorf("%w: model order must be positive, got %d", errs.ErrInvalidConfiguration, c.Order)
	}
	if c.Dt < 0 {
		return fmt.Errorf("%w: dt must not be negative, got %v", errs.ErrInvalidConfiguration, c.Dt)
	}
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if _, err := signal.ParseIntensityMeasure(string(c.Intensity)); err != nil {
		return err
	}
	if c.LowerBound < 0 || c.UpperBound >= 1 || c.LowerBound >= c.UpperBound {
		return fmt.Errorf("%w: intensity bounds must satisfy 0 <= lb < ub < 1, got %v, %v",
			errs.ErrInvalidConfiguration, c.LowerBound, c.UpperBound)
	}
	if !(c.RCond > 0) || c.RCond >= 1 {
		return fmt.Errorf("%w: rcond must lie in (0, 1), got %v", errs.ErrInvalidConfiguration, c.RCond)
	}
	if !(c.Damping > 0) || c.Damping >= 1 {
		return fmt.Errorf("%w: oscillator damping must lie in (0, 1), got %v", errs.ErrInvalidConfiguration, c.Damping)
	}
	return nil
}

// WithP sets the observer order / Hankel block rows.
func WithP(p int) Option {
	return options.NoError(func(c *Config) { c.P = p })
}

// WithOrder sets the requested model order.
func WithOrder(order int) Option {
	return options.NoError(func(c *Config) { c.Order = order })
}

// WithDt overrides the sample interval of the records.
func WithDt(dt float64) Option {
	return options.NoError(func(c *Config) { c.Dt = dt })
}

// WithMethod sets the identification algorithm.
func WithMethod(method Method) Option {
	return options.NoError(func(c *Config) { c.Method = method })
}

// WithWindow enables strong motion windowing with the given measure and
// bounds.
func WithWindow(measure signal.IntensityMeasure, lb, ub float64) Option {
	return options.New(func(c *Config) error {
		parsed, err := signal.ParseIntensityMeasure(string(measure))
		if err != nil {
			return err
		}
		c.Window = true
		c.Intensity, c.LowerBound, c.UpperBound = parsed, lb, ub
		return nil
	})
}

// WithWindowing toggles strong motion windowing with the configured measure
// and bounds.
func WithWindowing(enabled bool) Option {
	return options.NoError(func(c *Config) { c.Window = enabled })
}

// WithIntensity sets the intensity measure used for windowing.
func WithIntensity(measure signal.IntensityMeasure) Option {
	return options.NoError(func(c *Config) { c.Intensity = measure })
}

// WithBounds sets the lower and upper cumulative intensity fractions of the
// window.
func WithBounds(lb, ub float64) Option {
	return options.NoError(func(c *Config) { c.LowerBound, c.UpperBound = lb, ub })
}

// WithOverdamped keeps real positive eigenvalues as overdamped modes.
func WithOverdamped(enabled bool) Option {
	return options.NoError(func(c *Config) { c.Overdamped = enabled })
}

// WithFeedthrough toggles estimation of D.
func WithFeedthrough(enabled bool) Option {
	return options.NoError(func(c *Config) { c.Feedthrough = enabled })
}

// WithRCond sets the relative singular value cut-off.
func WithRCond(rcond float64) Option {
	return options.NoError(func(c *Config) { c.RCond = rcond })
}

// WithDamping sets the damping ratio of the response spectrum oscillators.
func WithDamping(zeta float64) Option {
	return options.NoError(func(c *Config) { c.Damping = zeta })
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatVal float64
		if _, err := fmt.Sscanf(value, "%g", &floatVal); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
