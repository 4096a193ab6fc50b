package fit

import (
	"math"

	"github.com/sitelle-tools/specfit/lines"
	"github.com/sitelle-tools/specfit/model"
)

// LineResult holds one fitted line's physical quantities. Velocity and
// broadening are in km/s; amplitude and flux are on the input flux scale.
type LineResult struct {
	Name          string
	Amplitude     float64
	Flux          float64
	FluxErr       float64
	Velocity      float64
	VelocityErr   float64
	Broadening    float64
	BroadeningErr float64
}

// Result is the immutable output of a fit session.
type Result struct {
	// Parameters is the final parameter vector (amplitude, position,
	// width per line, then the continuum constant) with amplitudes and
	// continuum on the input flux scale. Uncertainties are the matching
	// 1-sigma errors (all zero unless uncertainty estimation ran).
	Parameters    []float64
	Uncertainties []float64

	// FitVector is the fitted model evaluated over the full Axis.
	FitVector []float64
	Axis      []float64

	Lines []LineResult

	// Noise is the off-band noise estimate on the normalized scale;
	// Scale is the normalization factor applied to amplitudes.
	Noise float64
	Scale float64

	CorrectionFactor float64
	AxisStep         float64
	SincWidth        float64

	Continuum    float64
	ContinuumErr float64

	ChiSquare        float64
	ReducedChiSquare float64
}

// assemble converts the final parameter vector into the output record.
func (s *Session) assemble() *Result {
	chi2, reduced := s.chiSquare()

	lineResults := make([]LineResult, s.lineCount)

	for i := range lineResults {
		amp := s.sol[3*i]
		pos := s.sol[3*i+1]
		sigma := s.sol[3*i+2]

		ampErr := s.unc[3*i]
		posErr := s.unc[3*i+1]
		sigmaErr := s.unc[3*i+2]

		lineResults[i] = LineResult{
			Name:          s.cfg.Lines[i],
			Amplitude:     amp,
			Flux:          model.Flux(s.cfg.Model, amp, sigma, s.sincWidth),
			FluxErr:       model.FluxErr(s.cfg.Model, amp, sigma, s.sincWidth, ampErr, sigmaErr),
			Velocity:      lines.VelocityFromPosition(s.rest[i], pos),
			VelocityErr:   lines.VelocityErr(s.rest[i], pos, posErr),
			Broadening:    lines.Broadening(pos, sigma, s.corr),
			BroadeningErr: lines.BroadeningErr(pos, sigmaErr, s.corr),
		}
	}

	last := len(s.sol) - 1

	return &Result{
		Parameters:       append([]float64(nil), s.sol...),
		Uncertainties:    append([]float64(nil), s.unc...),
		FitVector:        append([]float64(nil), s.fitVector...),
		Axis:             append([]float64(nil), s.axis...),
		Lines:            lineResults,
		Noise:            s.noise,
		Scale:            s.scale,
		CorrectionFactor: s.corr,
		AxisStep:         s.axisStep,
		SincWidth:        s.sincWidth,
		Continuum:        s.sol[last],
		ContinuumErr:     s.unc[last],
		ChiSquare:        chi2,
		ReducedChiSquare: reduced,
	}
}

// chiSquare compares the fitted model to the observed spectrum over the
// restricted window, normalized by the observed flux. Samples with zero
// or non-finite observed flux are skipped.
func (s *Session) chiSquare() (float64, float64) {
	chi2 := 0.0

	for i := s.lo; i < s.hi; i++ {
		obs := s.flux[i]
		if obs == 0 || math.IsNaN(obs) || math.IsInf(obs, 0) {
			continue
		}

		z := (s.fitVector[i] - obs) / obs
		chi2 += z * z
	}

	nDOF := 3*s.lineCount + 1

	return chi2, chi2 / float64(nDOF-1)
}
