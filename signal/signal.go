// Package signal holds the sampled time series consumed by the identification
// stages together with the intensity measures used to window strong-motion
// records.
package signal

import (
	"fmt"
	"math/rand"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/gonumExtensions"
	"gonum.org/v1/gonum/mat"
)

// Series is a multi-channel, uniformly sampled record.
//
// Data holds one channel per row and one sample per column. An empty Series
// (nil Data) stands for a missing input block in output-only identification.
type Series struct {
	// Channel matrix (channels x samples)
	Data *mat.Dense
	// Sample interval in seconds
	Dt float64
}

// NewSeries builds a Series from per-channel sample slices.
func NewSeries(channels [][]float64, dt float64) (Series, error) {
	if len(channels) == 0 {
		return Series{Dt: dt}, checkDt(dt)
	}
	n := len(channels[0])
	if n == 0 {
		return Series{}, fmt.Errorf("%w: channel 0 has no samples", errs.ErrInsufficientData)
	}
	data := make([]float64, 0, len(channels)*n)
	for index, channel := range channels {
		if len(channel) != n {
			return Series{}, fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				errs.ErrInvalidConfiguration, index, len(channel), n)
		}
		data = append(data, channel...)
	}
	return FromDense(mat.NewDense(len(channels), n, data), dt)
}

// FromDense wraps an existing channel matrix. The matrix is not copied.
func FromDense(data *mat.Dense, dt float64) (Series, error) {
	if err := checkDt(dt); err != nil {
		return Series{}, err
	}
	if data != nil && gonumExtensions.NANORINF(data) {
		return Series{}, fmt.Errorf("%w: series contains NaN or Inf samples", errs.ErrInvalidConfiguration)
	}
	return Series{Data: data, Dt: dt}, nil
}

func checkDt(dt float64) error {
	if !(dt > 0) {
		return fmt.Errorf("%w: sample interval must be positive, got %v", errs.ErrInvalidConfiguration, dt)
	}
	return nil
}

// Channels returns the number of channels.
func (s Series) Channels() int {
	if s.Data == nil {
		return 0
	}
	m, _ := s.Data.Dims()
	return m
}

// Samples returns the number of samples per channel.
func (s Series) Samples() int {
	if s.Data == nil {
		return 0
	}
	_, n := s.Data.Dims()
	return n
}

// Empty reports whether the series carries no channels.
func (s Series) Empty() bool {
	return s.Channels() == 0
}

// Channel returns a copy of channel i.
func (s Series) Channel(i int) []float64 {
	return mat.Row(nil, i, s.Data)
}

// Time returns the sample times t_k = k dt.
func (s Series) Time() []float64 {
	res := make([]float64, s.Samples())
	for index := range res {
		res[index] = float64(index) * s.Dt
	}
	return res
}

// Duration returns the record length in seconds.
func (s Series) Duration() float64 {
	return float64(s.Samples()) * s.Dt
}

// Truncate returns samples [from, to) of every channel as a new Series.
func (s Series) Truncate(from, to int) (Series, error) {
	if s.Empty() {
		return Series{Dt: s.Dt}, nil
	}
	if from < 0 || to > s.Samples() || to-from < 1 {
		return Series{}, fmt.Errorf("%w: window [%d, %d) outside %d samples",
			errs.ErrInsufficientData, from, to, s.Samples())
	}
	return Series{Data: gonumExtensions.Columns(s.Data, from, to), Dt: s.Dt}, nil
}

// CheckAligned verifies that inputs and outputs share sample count and
// interval. An empty input series is accepted (output-only data).
func CheckAligned(inputs, outputs Series) error {
	if outputs.Empty() {
		return fmt.Errorf("%w: no output channels", errs.ErrInvalidConfiguration)
	}
	if inputs.Empty() {
		return nil
	}
	if inputs.Samples() != outputs.Samples() {
		return fmt.Errorf("%w: %d input samples but %d output samples",
			errs.ErrInvalidConfiguration, inputs.Samples(), outputs.Samples())
	}
	if inputs.Dt != outputs.Dt {
		return fmt.Errorf("%w: input dt %v differs from output dt %v",
			errs.ErrInvalidConfiguration, inputs.Dt, outputs.Dt)
	}
	return nil
}

// WhiteNoise returns a (channels x samples) matrix of unit variance Gaussian
// samples drawn from a generator seeded with seed, so the same seed always
// gives the same excitation.
func WhiteNoise(channels, samples int, seed int64) *mat.Dense {
	rnd := rand.New(rand.NewSource(seed))
	data := make([]float64, channels*samples)
	for index := range data {
		data[index] = rnd.NormFloat64()
	}
	return mat.NewDense(channels, samples, data)
}
