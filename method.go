package ssid

import (
	"fmt"
	"strings"

	"github.com/hammal/ssid/errs"
)

// Method selects the identification algorithm.
type Method string

const (
	// MethodSRIM realizes a model from the information matrix of the records.
	MethodSRIM Method = "srim"
	// MethodOKID estimates Markov parameters and realizes them with ERA/DC.
	MethodOKID Method = "okid"
	// MethodSpectral picks modes from the response spectrum ratio.
	MethodSpectral Method = "spec"
	// MethodFourier picks modes from the Fourier transfer amplitude.
	MethodFourier Method = "four"
	// MethodTest runs srim and okid side by side.
	MethodTest Method = "test"
)

// Methods lists every known method.
var Methods = []Method{MethodSRIM, MethodOKID, MethodSpectral, MethodFourier, MethodTest}

// ParseMethod maps a method name to a Method.
func ParseMethod(name string) (Method, error) {
	method := Method(strings.ToLower(name))
	for _, known := range Methods {
		if method == known {
			return method, nil
		}
	}
	return "", fmt.Errorf("%w: unknown method %q", errs.ErrInvalidConfiguration, name)
}

// StateSpace reports whether the method produces a state space realization.
func (m Method) StateSpace() bool {
	return m == MethodSRIM || m == MethodOKID || m == MethodTest
}
