package fit

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/rand"

	"github.com/sitelle-tools/specfit/lines"
	"github.com/sitelle-tools/specfit/model"
	"github.com/sitelle-tools/specfit/spectrum"
)

// Default box bounds on the normalized-flux parameter scale.
const (
	defaultAmpMin   = -0.5
	defaultAmpMax   = 1.1
	defaultPosMin   = 0.0
	defaultPosMax   = 1e6
	defaultSigmaMin = 0.001
	defaultSigmaMax = 300.0
	continuumMin    = 0.0
	continuumMax    = 0.75
)

// defaultNoise replaces a degenerate (zero or negative) off-band noise
// estimate, which would otherwise collapse the likelihood.
const defaultNoise = 1e-2

// bound is a per-parameter box constraint.
type bound struct {
	lower float64
	upper float64
}

// Session owns the private mutable state of a single spectrum's fit.
// It is not safe for concurrent use.
type Session struct {
	cfg       Config
	lineCount int
	rest      []float64 // rest wavelength per requested line, nm

	axis           []float64
	rawFlux        []float64 // as provided
	flux           []float64 // transmission-corrected
	normalized     []float64 // flux / max(flux)
	clean          []float64 // rawFlux / max(rawFlux), used for the noise estimate
	lo, hi         int
	restricted     []float64
	axisRestricted []float64

	scale float64
	noise float64

	corr      float64
	axisStep  float64
	sincWidth float64

	// Kinematic prior state, either analytic or machine-learned.
	velML        float64
	broadML      float64
	velMLSigma   float64
	broadMLSigma float64
	interpNorm   []float64

	// Box bounds; the position/width defaults may be narrowed by a
	// distributional ML prior.
	xMin, xMax         float64
	sigmaMin, sigmaMax float64
	bounds             []bound

	constraints []Constraint

	sol       []float64
	unc       []float64
	fitVector []float64
	scratch   []float64
	clampBuf  []float64

	rng *rand.Rand
}

// NewSession validates the configuration and preprocesses the spectrum.
// All configuration errors surface here, before any numerical work.
func NewSession(cfg Config) (*Session, error) {
	cfg = normalizeConfig(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:       cfg,
		lineCount: len(cfg.Lines),
		xMin:      defaultPosMin,
		xMax:      defaultPosMax,
		sigmaMin:  defaultSigmaMin,
		sigmaMax:  defaultSigmaMax,
	}

	s.rest = make([]float64, s.lineCount)
	for i, name := range cfg.Lines {
		rest, err := lines.RestWavelength(name)
		if err != nil {
			return nil, fmt.Errorf("fit: line %q: %w", name, err)
		}

		s.rest[i] = rest
	}

	s.axis = append([]float64(nil), cfg.Axis...)
	s.rawFlux = append([]float64(nil), cfg.Spectrum...)

	s.flux = make([]float64, len(s.rawFlux))
	if len(cfg.Transmission) > 0 {
		spectrum.ApplyTransmission(s.flux, s.rawFlux, cfg.Transmission)
	} else {
		copy(s.flux, s.rawFlux)
	}

	s.clean = make([]float64, len(s.rawFlux))
	spectrum.Normalize(s.clean, s.rawFlux)

	// The normalization scale of the corrected spectrum is the factor
	// that later maps fitted amplitudes back to flux units.
	s.normalized = make([]float64, len(s.flux))
	s.scale = spectrum.Normalize(s.normalized, s.flux)

	lo, hi, err := spectrum.RestrictWavelength(s.axis, cfg.Filter, cfg.Lines)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	s.lo, s.hi = lo, hi
	s.restricted = s.normalized[lo:hi]
	s.axisRestricted = s.axis[lo:hi]
	s.scratch = make([]float64, hi-lo)

	s.computeGeometry()

	noise, err := spectrum.EstimateNoise(s.clean, s.axis, cfg.Filter, cfg.Lines)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	if noise <= 0 {
		noise = defaultNoise
	}

	s.noise = noise

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	s.rng = rand.New(rand.NewSource(seed))

	return s, nil
}

// Noise returns the off-band noise estimate on the normalized-flux scale.
func (s *Session) Noise() float64 {
	return s.noise
}

// Fit runs the full estimation pipeline and returns the assembled result.
func (s *Session) Fit() (*Result, error) {
	if s.cfg.Predictor != nil {
		if err := s.estimatePriorML(); err != nil {
			return nil, err
		}
	}

	initial := s.buildInitial()
	s.constraints = buildConstraints(s.cfg.Lines, s.cfg.VelocityGroups, s.cfg.SigmaGroups, s.rest, s.cfg.OrderComponents)

	s.sol = s.solve(initial)

	s.unc = make([]float64, len(s.sol))
	if s.cfg.Uncertainties {
		s.estimateUncertainties(s.sol, s.unc)
	}

	s.rescale()
	s.reconstruct()

	if s.cfg.Bayes {
		s.refineBayes()
	}

	return s.assemble(), nil
}

// buildInitial assembles the initial parameter vector and the per-
// parameter box bounds. The continuum estimate is subtracted from each
// line's amplitude guess so the line heights ride on top of it.
func (s *Session) buildInitial() []float64 {
	dim := 3*s.lineCount + 1
	params := make([]float64, dim)
	s.bounds = make([]bound, dim)

	cont := s.continuumEstimate(contSigmaLevel)
	params[dim-1] = cont
	s.bounds[dim-1] = bound{continuumMin, continuumMax}

	for i := 0; i < s.lineCount; i++ {
		amp, pos, sigma := s.lineGuess(s.rest[i])

		params[3*i] = amp - cont
		params[3*i+1] = pos
		params[3*i+2] = sigma

		s.bounds[3*i] = bound{defaultAmpMin, defaultAmpMax}
		s.bounds[3*i+1] = bound{s.xMin, s.xMax}
		s.bounds[3*i+2] = bound{s.sigmaMin, s.sigmaMax}
	}

	return params
}

// rescale converts the amplitude and continuum parameters (and their
// uncertainties) from normalized-flux units back to the input flux scale.
func (s *Session) rescale() {
	for i := 0; i < s.lineCount; i++ {
		s.sol[3*i] *= s.scale
		s.unc[3*i] *= s.scale
	}

	last := len(s.sol) - 1
	s.sol[last] *= s.scale
	s.unc[last] *= s.scale
}

// descale is the inverse of rescale; the sampler works on the
// normalized-flux scale.
func (s *Session) descale() {
	for i := 0; i < s.lineCount; i++ {
		s.sol[3*i] /= s.scale
		s.unc[3*i] /= s.scale
	}

	last := len(s.sol) - 1
	s.sol[last] /= s.scale
	s.unc[last] /= s.scale
}

// reconstruct evaluates the fitted model over the full axis.
func (s *Session) reconstruct() {
	if s.fitVector == nil {
		s.fitVector = make([]float64, len(s.axis))
	}

	model.Evaluate(s.fitVector, s.axis, s.sol, s.lineCount, s.cfg.Model, s.sincWidth)

	cont := s.sol[len(s.sol)-1]
	for i := range s.fitVector {
		s.fitVector[i] += cont
	}
}

// median returns the sample median of xs, averaging the two middle
// elements for even-length input. xs is not modified.
func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return sorted[n/2]
}
