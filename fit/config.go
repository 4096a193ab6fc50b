package fit

import (
	"errors"
	"fmt"

	"github.com/sitelle-tools/specfit/lines"
	"github.com/sitelle-tools/specfit/mlprior"
	"github.com/sitelle-tools/specfit/model"
)

var (
	ErrEmptySpectrum    = errors.New("fit: spectrum and axis must be non-empty")
	ErrLengthMismatch   = errors.New("fit: spectrum and axis lengths differ")
	ErrNoLines          = errors.New("fit: at least one line is required")
	ErrGroupLength      = errors.New("fit: group list length must match the line list length")
	ErrNoReferenceAxis  = errors.New("fit: a reference axis is required when a predictor is set")
	ErrInvalidGeometry  = errors.New("fit: interferometer geometry must have positive mirror travel")
	ErrUnknownModelType = model.ErrUnknownModel
)

// Default interferometer geometry (SN3 header values; theta 0 gives a
// correction factor of 1).
const (
	defaultDeltaX   = 2943.0
	defaultNSteps   = 842
	defaultZPDIndex = 169
)

// Config configures a fit session.
type Config struct {
	// Spectrum is the raw (un-normalized) flux, paired 1:1 with Axis,
	// a strictly increasing wavenumber axis in cm⁻¹.
	Spectrum []float64
	Axis     []float64

	// ReferenceAxis is the wavenumber axis the spectrum is resampled
	// onto before being handed to the ML predictor. Only required when
	// Predictor is set.
	ReferenceAxis []float64

	// Model selects the line shape.
	Model model.Type

	// Lines names the emission lines to fit. A name may repeat for
	// multi-component fitting.
	Lines []string

	// VelocityGroups and SigmaGroups assign a group id per line; lines
	// sharing a velocity (or sigma) group id are constrained to a common
	// fitted velocity (or width). Nil leaves every line independent.
	VelocityGroups []int
	SigmaGroups    []int

	// Filter names the SITELLE filter (SN1, SN2, SN3, or C4 with Halpha).
	Filter string

	// Transmission optionally holds the filter transmission curve
	// sampled on Axis; the spectrum is divided by it where it exceeds 0.5.
	Transmission []float64

	// Predictor optionally supplies the machine-learned kinematic prior.
	Predictor mlprior.Predictor

	// MDN marks the predictor as distributional: its 1-sigma estimates
	// tighten the position and width bounds of the fit.
	MDN bool

	// Bayes enables the MCMC refinement stage.
	Bayes bool

	// Uncertainties enables Hessian-based uncertainty estimation.
	Uncertainties bool

	// OrderComponents enforces a deterministic position ordering between
	// repeated components of the same line.
	OrderComponents bool

	// Interferometer geometry: angle in degrees, mirror step in nm,
	// step count, and zero-path-difference index.
	Theta    float64
	DeltaX   float64
	NSteps   int
	ZPDIndex int

	// Seed fixes the sampler RNG; zero draws a time-based seed.
	Seed uint64
}

// DefaultConfig returns a config with the default SN3 geometry and a
// gaussian line model.
func DefaultConfig() Config {
	return Config{
		Model:    model.TypeGaussian,
		Filter:   "SN3",
		DeltaX:   defaultDeltaX,
		NSteps:   defaultNSteps,
		ZPDIndex: defaultZPDIndex,
	}
}

func normalizeConfig(cfg Config) Config {
	// A ZPD index of zero is a valid geometry, so it defaults only when
	// the whole geometry block is unset.
	if cfg.DeltaX == 0 && cfg.NSteps == 0 && cfg.ZPDIndex == 0 {
		cfg.ZPDIndex = defaultZPDIndex
	}

	if cfg.DeltaX == 0 {
		cfg.DeltaX = defaultDeltaX
	}

	if cfg.NSteps == 0 {
		cfg.NSteps = defaultNSteps
	}

	if cfg.Filter == "" {
		cfg.Filter = "SN3"
	}

	return cfg
}

// validateConfig runs every configuration check before any numerical
// work begins.
func validateConfig(cfg Config) error {
	if len(cfg.Spectrum) == 0 || len(cfg.Axis) == 0 {
		return ErrEmptySpectrum
	}

	if len(cfg.Spectrum) != len(cfg.Axis) {
		return fmt.Errorf("%w: %d flux values, %d axis values", ErrLengthMismatch, len(cfg.Spectrum), len(cfg.Axis))
	}

	if len(cfg.Lines) == 0 {
		return ErrNoLines
	}

	for _, name := range cfg.Lines {
		if !lines.Known(name) {
			return fmt.Errorf("%w: %q (available: %v)", lines.ErrUnknownLine, name, lines.Names())
		}
	}

	if !cfg.Model.Valid() {
		return fmt.Errorf("%w: %v", model.ErrUnknownModel, cfg.Model)
	}

	if cfg.VelocityGroups != nil && len(cfg.VelocityGroups) != len(cfg.Lines) {
		return fmt.Errorf("%w: %d velocity groups for %d lines", ErrGroupLength, len(cfg.VelocityGroups), len(cfg.Lines))
	}

	if cfg.SigmaGroups != nil && len(cfg.SigmaGroups) != len(cfg.Lines) {
		return fmt.Errorf("%w: %d sigma groups for %d lines", ErrGroupLength, len(cfg.SigmaGroups), len(cfg.Lines))
	}

	if cfg.Predictor != nil && len(cfg.ReferenceAxis) == 0 {
		return ErrNoReferenceAxis
	}

	if cfg.DeltaX <= 0 || cfg.NSteps <= cfg.ZPDIndex {
		return ErrInvalidGeometry
	}

	return nil
}
