package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sitelle-tools/specfit/lines"
	"github.com/sitelle-tools/specfit/spectrum"
)

const (
	// defaultBroadening seeds the width guess when no ML prior is
	// available, in km/s.
	defaultBroadening = 10.0

	// ampSearchHalfWidth is the half-width, in samples, of the window
	// searched for the amplitude guess around the estimated line centre.
	ampSearchHalfWidth = 4

	contSigmaLevel = 2.0
	contClipIters  = 3
)

// estimatePriorML resamples the spectrum onto the reference axis,
// normalizes it, and queries the predictor for a kinematic prior.
func (s *Session) estimatePriorML() error {
	interp := make([]float64, len(s.cfg.ReferenceAxis))
	spectrum.Interpolate(interp, s.cfg.ReferenceAxis, s.axis, s.flux)

	s.interpNorm = make([]float64, len(interp))
	spectrum.Normalize(s.interpNorm, interp)

	est, err := s.cfg.Predictor.Predict(s.interpNorm)
	if err != nil {
		return fmt.Errorf("fit: kinematic prior: %w", err)
	}

	s.velML = est.Velocity
	s.broadML = est.Broadening
	s.velMLSigma = est.VelocitySigma
	s.broadMLSigma = est.BroadeningSigma

	return nil
}

// analyticPrior estimates the line velocity from the global peak of the
// normalized spectrum relative to the rest wavelength, with a fixed
// default broadening.
func (s *Session) analyticPrior(restNM float64) (float64, float64) {
	peak := floats.MaxIdx(s.normalized)
	vel := math.Abs(lines.VelocityFromPosition(restNM, s.axis[peak]))

	return vel, defaultBroadening
}

// lineGuess produces the initial (amplitude, position, width) for one
// line. A distributional ML prior additionally tightens the session's
// position and width bounds to the estimate ± 3 sigma.
func (s *Session) lineGuess(restNM float64) (float64, float64, float64) {
	vel, broad := s.velML, s.broadML
	if s.cfg.Predictor == nil {
		vel, broad = s.analyticPrior(restNM)
	}

	pos := lines.PositionFromVelocity(restNM, vel)
	idx := spectrum.NearestIndex(s.axis, pos)

	lo := idx - ampSearchHalfWidth
	if lo < 0 {
		lo = 0
	}

	hi := idx + ampSearchHalfWidth
	if hi > len(s.normalized)-1 {
		hi = len(s.normalized) - 1
	}

	amp := floats.Max(s.normalized[lo : hi+1])
	sigma := lines.SigmaFromBroadening(pos, broad)

	if s.cfg.MDN && s.cfg.Predictor != nil && (s.velMLSigma > 0 || s.broadMLSigma > 0) {
		s.xMin = lines.PositionFromVelocity(restNM, vel+3*s.velMLSigma)
		s.xMax = lines.PositionFromVelocity(restNM, vel-3*s.velMLSigma)
		s.sigmaMin = lines.SigmaFromBroadening(pos, broad-3*s.broadMLSigma)
		s.sigmaMax = lines.SigmaFromBroadening(pos, broad+3*s.broadMLSigma)
	}

	return amp, pos, sigma
}

// continuumEstimate sigma-clips the restricted spectrum to suppress
// line-dominated samples and returns the minimum of the survivors as the
// continuum floor.
func (s *Session) continuumEstimate(sigmaLevel float64) float64 {
	vals := append([]float64(nil), s.restricted...)

	for iter := 0; iter < contClipIters; iter++ {
		med := median(vals)
		sd := stat.StdDev(vals, nil)

		kept := vals[:0]
		for _, v := range vals {
			if math.Abs(v-med) <= sigmaLevel*sd {
				kept = append(kept, v)
			}
		}

		if len(kept) == 0 {
			break
		}

		vals = kept
	}

	return floats.Min(vals)
}
