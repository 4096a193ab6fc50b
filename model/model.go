// Package model implements the line-shape basis functions used to build
// spectral models: gaussian, sinc, and sincgauss (a gaussian convolved
// with the instrument's sinc response).
//
// A model parameter vector is laid out as (amplitude, centre, width) per
// line; the continuum constant is handled by the caller.
package model

import (
	"errors"
	"math"
)

// Type selects a line-shape basis function.
type Type int

// Supported line shapes.
const (
	TypeGaussian Type = iota + 1
	TypeSinc
	TypeSincGauss
)

// ErrUnknownModel reports an unrecognized model type name.
var ErrUnknownModel = errors.New("model: unknown model type")

// ParseType converts a model type name into a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "gaussian":
		return TypeGaussian, nil
	case "sinc":
		return TypeSinc, nil
	case "sincgauss":
		return TypeSincGauss, nil
	default:
		return 0, ErrUnknownModel
	}
}

// String returns the canonical name of the model type.
func (t Type) String() string {
	switch t {
	case TypeGaussian:
		return "gaussian"
	case TypeSinc:
		return "sinc"
	case TypeSincGauss:
		return "sincgauss"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a supported model type.
func (t Type) Valid() bool {
	return t == TypeGaussian || t == TypeSinc || t == TypeSincGauss
}

// Evaluate sums the line shapes over axis into dst. params holds
// (amplitude, centre, width) per line; entries beyond 3*lineCount are
// ignored. sincWidth is only used by the sinc-convolved shapes.
// dst must have the same length as axis.
func Evaluate(dst, axis, params []float64, lineCount int, t Type, sincWidth float64) {
	for i := range dst {
		dst[i] = 0
	}

	for line := 0; line < lineCount; line++ {
		amp := params[3*line]
		pos := params[3*line+1]
		sigma := params[3*line+2]

		switch t {
		case TypeGaussian:
			addGaussian(dst, axis, amp, pos, sigma)
		case TypeSinc:
			addSinc(dst, axis, amp, pos, sigma)
		case TypeSincGauss:
			addSincGauss(dst, axis, amp, pos, sigma, sincWidth)
		}
	}
}

func addGaussian(dst, axis []float64, amp, pos, sigma float64) {
	if sigma == 0 {
		return
	}

	inv := 1 / (2 * sigma * sigma)
	for i, x := range axis {
		d := x - pos
		dst[i] += amp * math.Exp(-d*d*inv)
	}
}

func addSinc(dst, axis []float64, amp, pos, sigma float64) {
	if sigma == 0 {
		return
	}

	for i, x := range axis {
		u := (x - pos) / sigma
		dst[i] += amp * sinc(u)
	}
}

func addSincGauss(dst, axis []float64, amp, pos, sigma, sincWidth float64) {
	if sigma == 0 || sincWidth == 0 {
		return
	}

	a := sigma / (math.Sqrt2 * sincWidth)

	norm := math.Erf(a)
	if norm == 0 {
		return
	}

	for i, x := range axis {
		b := (x - pos) / (math.Sqrt2 * sigma)
		dst[i] += amp * erfRealScaled(a, b) / norm
	}
}

// sinc computes the normalized sinc function sin(πu)/(πu).
func sinc(u float64) float64 {
	if u == 0 {
		return 1
	}

	pu := math.Pi * u

	return math.Sin(pu) / pu
}
