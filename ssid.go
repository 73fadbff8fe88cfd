// Package ssid identifies structural systems from recorded excitation and
// response. Identify runs one of the realization or spectral methods on a pair
// of records and returns the identified modes, together with the state space
// realization or spectrum they were extracted from.
package ssid

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hammal/ssid/errs"
	"github.com/hammal/ssid/modal"
	"github.com/hammal/ssid/okid"
	"github.com/hammal/ssid/signal"
	"github.com/hammal/ssid/spectral"
	"github.com/hammal/ssid/srim"
	"gonum.org/v1/gonum/mat"
)

// Identification is the outcome of one method.
type Identification struct {
	Method Method
	// Realization of the state space methods, nil otherwise.
	Realization *srim.Realization
	// Spectrum of the spectral methods, nil otherwise.
	Spectrum *spectral.Spectrum
	Modes    modal.ModeSet
	// Wall clock time spent identifying.
	Elapsed time.Duration
}

// Kind tells which member of a Result is set.
type Kind int

const (
	// KindSingle results hold one Identification.
	KindSingle Kind = iota
	// KindCollection results hold one Identification per method name.
	KindCollection
)

// Result is either a single identification or a named collection of them.
type Result struct {
	Kind       Kind
	Single     Identification
	Collection map[string]Identification
}

// Identifications returns the identifications of the result keyed by method
// name.
func (r Result) Identifications() map[string]Identification {
	if r.Kind == KindCollection {
		return r.Collection
	}
	return map[string]Identification{string(r.Single.Method): r.Single}
}

// MarshalJSON encodes a single result as its mode set and a collection as an
// object of mode sets keyed by method.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Kind == KindSingle {
		return json.Marshal(r.Single.Modes)
	}
	sets := make(map[string]modal.ModeSet, len(r.Collection))
	for name, identification := range r.Collection {
		sets[name] = identification.Modes
	}
	return json.Marshal(sets)
}

// Window cuts both records to the strong motion part of the first input
// channel, or of the first output channel for output-only records.
func Window(inputs, outputs signal.Series, cfg Config) (signal.Series, signal.Series, error) {
	reference := outputs
	if !inputs.Empty() {
		reference = inputs
	}
	ilb, iub, err := signal.IntensityBounds(reference.Channel(0), cfg.LowerBound, cfg.UpperBound, cfg.Intensity)
	if err != nil {
		return signal.Series{}, signal.Series{}, err
	}
	windowedOutputs, err := outputs.Truncate(ilb, iub)
	if err != nil {
		return signal.Series{}, signal.Series{}, err
	}
	if inputs.Empty() {
		return inputs, windowedOutputs, nil
	}
	windowedInputs, err := inputs.Truncate(ilb, iub)
	if err != nil {
		return signal.Series{}, signal.Series{}, err
	}
	return windowedInputs, windowedOutputs, nil
}

// Identify runs cfg.Method on the records. inputs may be empty for the
// output-only methods srim and four.
func Identify(inputs, outputs signal.Series, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := signal.CheckAligned(inputs, outputs); err != nil {
		return Result{}, err
	}
	if cfg.Window {
		var err error
		inputs, outputs, err = Window(inputs, outputs, cfg)
		if err != nil {
			return Result{}, err
		}
	}
	dt := cfg.Dt
	if dt == 0 {
		dt = outputs.Dt
	}

	if cfg.Method != MethodTest {
		identification, err := identify(cfg.Method, inputs.Data, outputs.Data, dt, cfg)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindSingle, Single: identification}, nil
	}

	collection := make(map[string]Identification)
	for _, method := range []Method{MethodSRIM, MethodOKID} {
		identification, err := identify(method, inputs.Data, outputs.Data, dt, cfg)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", method, err)
		}
		collection[string(method)] = identification
	}
	return Result{Kind: KindCollection, Collection: collection}, nil
}

func identify(method Method, inputs, outputs *mat.Dense, dt float64, cfg Config) (Identification, error) {
	start := time.Now()
	res := Identification{Method: method}
	// one spectral peak per complex pair of states
	peaks := max(1, cfg.Order/2)
	var err error
	switch method {
	case MethodSRIM:
		res.Realization, err = srim.Realize(inputs, outputs, dt,
			srim.WithOrder(cfg.Order),
			srim.WithHorizon(cfg.P),
			srim.WithRCond(cfg.RCond),
			srim.WithFeedthrough(cfg.Feedthrough),
		)
	case MethodOKID:
		if inputs == nil {
			return res, fmt.Errorf("%w: okid needs input records", errs.ErrInvalidConfiguration)
		}
		var markov []*mat.Dense
		markov, err = okid.Estimate(inputs, outputs, cfg.P, okid.WithRCond(cfg.RCond))
		if err != nil {
			return res, err
		}
		res.Realization, err = srim.FromMarkov(markov, dt,
			srim.WithOrder(cfg.Order),
			srim.WithRCond(cfg.RCond),
			srim.WithFeedthrough(cfg.Feedthrough),
		)
	case MethodSpectral:
		res.Spectrum, res.Modes, err = spectral.ResponseSpectrum(inputs, outputs, dt,
			spectral.WithDamping(cfg.Damping),
			spectral.WithPeaks(peaks),
		)
	case MethodFourier:
		res.Spectrum, res.Modes, err = spectral.Fourier(inputs, outputs, dt, spectral.WithPeaks(peaks))
	default:
		err = fmt.Errorf("%w: method %q cannot run on its own", errs.ErrInvalidConfiguration, method)
	}
	if err != nil {
		return res, err
	}

	if res.Realization != nil {
		res.Modes, err = modal.Decompose(res.Realization.Model, modal.WithOverdamped(cfg.Overdamped))
		if err != nil {
			return res, err
		}
	}
	res.Elapsed = time.Since(start)
	return res, nil
}
