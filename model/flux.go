package model

import "math"

// Flux returns the integrated line flux for a fitted amplitude and width.
// The closed forms follow from integrating each shape over the axis;
// sincWidth is only used by the sincgauss shape.
func Flux(t Type, amp, sigma, sincWidth float64) float64 {
	switch t {
	case TypeGaussian:
		return math.Sqrt(2*math.Pi) * amp * sigma
	case TypeSinc:
		return math.Pi * amp * sigma
	case TypeSincGauss:
		if sincWidth == 0 {
			return 0
		}

		a := sigma / (math.Sqrt2 * sincWidth)

		norm := math.Erf(a)
		if norm == 0 {
			return 0
		}

		return math.Sqrt(2*math.Pi) * amp * sigma / norm
	default:
		return 0
	}
}

// FluxErr propagates amplitude and width uncertainties into a flux
// uncertainty using first-order error propagation on the closed forms.
func FluxErr(t Type, amp, sigma, sincWidth, ampErr, sigmaErr float64) float64 {
	if amp == 0 || sigma == 0 {
		return 0
	}

	flux := Flux(t, amp, sigma, sincWidth)

	relA := ampErr / amp
	relS := sigmaErr / sigma

	return math.Abs(flux) * math.Hypot(relA, relS)
}
