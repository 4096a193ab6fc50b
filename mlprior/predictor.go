// Package mlprior defines the machine-learned velocity and broadening
// predictor used to seed the line fit, together with an ONNX-backed
// implementation.
//
// Predictors consume the normalized spectrum resampled onto the network's
// reference wavenumber axis and emit a kinematic estimate. Point
// predictors leave the sigma fields zero; distributional (MDN) predictors
// populate them, allowing the fit to tighten its parameter bounds.
package mlprior

import "errors"

// ErrEmptySpectrum reports a prediction request without input samples.
var ErrEmptySpectrum = errors.New("mlprior: empty input spectrum")

// Estimate is a kinematic prior: velocity and velocity dispersion in
// km/s, each with an optional 1-sigma uncertainty.
type Estimate struct {
	Velocity        float64
	VelocitySigma   float64
	Broadening      float64
	BroadeningSigma float64
}

// Distributional reports whether the estimate carries uncertainties.
func (e Estimate) Distributional() bool {
	return e.VelocitySigma > 0 || e.BroadeningSigma > 0
}

// Predictor maps a normalized, reference-axis spectrum to a kinematic
// estimate.
type Predictor interface {
	Predict(spectrum []float64) (Estimate, error)
}

// Const is a Predictor returning a fixed estimate. It is useful in tests
// and as a stand-in when a spectral region's kinematics are known.
type Const struct {
	Estimate Estimate
}

// Predict returns the fixed estimate.
func (c Const) Predict(spectrum []float64) (Estimate, error) {
	if len(spectrum) == 0 {
		return Estimate{}, ErrEmptySpectrum
	}

	return c.Estimate, nil
}
