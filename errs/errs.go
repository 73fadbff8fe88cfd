// Package errs holds the sentinel errors shared by the identification packages.
//
// Components return these sentinels wrapped with the context needed to diagnose
// the failure (shapes, requested and available orders), e.g.
//
//	fmt.Errorf("%w: need %d samples, have %d", errs.ErrInsufficientData, p+1, n)
//
// Callers match them with errors.Is.
package errs

import "errors"

var (
	// ErrInsufficientData is returned when a time series is too short for the
	// requested window order.
	ErrInsufficientData = errors.New("ssid: insufficient data")

	// ErrIllConditionedRegression is returned when the OKID regression matrix is
	// rank deficient beyond the configured threshold.
	ErrIllConditionedRegression = errors.New("ssid: ill-conditioned regression")

	// ErrRealization is returned when a singular value or eigen decomposition
	// fails, or when a realization contains non-finite values.
	ErrRealization = errors.New("ssid: realization failed")

	// ErrInvalidConfiguration is returned for unknown method names, non-positive
	// orders, mismatched channel counts and similar configuration problems.
	ErrInvalidConfiguration = errors.New("ssid: invalid configuration")

	// ErrUnknownIntensityMeasure is returned for unsupported windowing measures.
	ErrUnknownIntensityMeasure = errors.New("ssid: unknown intensity measure")
)
