package modal

import "github.com/hammal/ssid/internal/options"

// Config holds the decomposition parameters.
type Config struct {
	// Keep real positive eigenvalues as overdamped modes.
	Overdamped bool
}

// Option configures Decompose.
type Option = options.Option[*Config]

// WithOverdamped keeps real positive eigenvalues, which are dropped otherwise.
func WithOverdamped(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.Overdamped = enabled
	})
}
