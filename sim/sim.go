// Package sim generates synthetic SITELLE spectra for testing and
// demonstration: direct evaluation of a line model over an instrument
// axis, and interferogram-based synthesis where the sinc instrument
// profile emerges from the finite mirror travel.
package sim

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sitelle-tools/specfit/lines"
	"github.com/sitelle-tools/specfit/model"
)

var (
	ErrLengthMismatch = errors.New("sim: amplitudes must match the line list length")
	ErrNoLines        = errors.New("sim: at least one line is required")
	ErrBadGeometry    = errors.New("sim: step size and step count must be positive")
)

// Config describes a synthetic multi-line spectrum.
type Config struct {
	Lines      []string
	Amplitudes []float64
	// Velocity and Broadening in km/s, shared by all lines.
	Velocity   float64
	Broadening float64
	Continuum  float64
	Model      model.Type
	SincWidth  float64
	// NoiseSigma adds zero-mean gaussian noise when positive.
	NoiseSigma float64
	Seed       uint64
	// Apodization tapers the interferogram before the transform
	// (interferogram synthesis only).
	Apodization Apodization
}

// Axis builds the wavenumber axis (cm⁻¹) spanned by a folding order for
// the given mirror step size (nm), step count, and interferometric angle
// (degrees).
func Axis(order int, deltaX float64, nSteps int, theta float64) []float64 {
	corr := 1 / math.Abs(math.Cos(theta*math.Pi/180))

	xMin := float64(order) / (2 * deltaX) * corr * 1e7
	xMax := float64(order+1) / (2 * deltaX) * corr * 1e7
	step := (xMax - xMin) / float64(nSteps)

	axis := make([]float64, nSteps)
	for j := range axis {
		axis[j] = xMin + float64(j)*step
	}

	return axis
}

// Spectrum evaluates the configured line model over axis, adds the
// continuum constant, and optionally gaussian noise.
func Spectrum(axis []float64, cfg Config) ([]float64, error) {
	if len(cfg.Lines) == 0 {
		return nil, ErrNoLines
	}

	if len(cfg.Amplitudes) != len(cfg.Lines) {
		return nil, ErrLengthMismatch
	}

	params := make([]float64, 3*len(cfg.Lines))

	for i, name := range cfg.Lines {
		rest, err := lines.RestWavelength(name)
		if err != nil {
			return nil, fmt.Errorf("sim: line %q: %w", name, err)
		}

		pos := lines.PositionFromVelocity(rest, cfg.Velocity)

		params[3*i] = cfg.Amplitudes[i]
		params[3*i+1] = pos
		params[3*i+2] = lines.SigmaFromBroadening(pos, cfg.Broadening)
	}

	flux := make([]float64, len(axis))
	model.Evaluate(flux, axis, params, len(cfg.Lines), cfg.Model, cfg.SincWidth)

	for i := range flux {
		flux[i] += cfg.Continuum
	}

	if cfg.NoiseSigma > 0 {
		noise := distuv.Normal{
			Mu:    0,
			Sigma: cfg.NoiseSigma,
			Src:   rand.NewSource(cfg.Seed),
		}
		for i := range flux {
			flux[i] += noise.Rand()
		}
	}

	return flux, nil
}

// FromInterferogram synthesizes a spectrum by accumulating the cosine
// interferogram of the configured lines over the mirror positions and
// transforming it. Truncation at the maximum path difference produces
// the natural sinc line profile. The mirror step undersamples the
// signal, so the transform bins alias into the band selected by the
// folding order; the returned wavenumber axis unfolds them accordingly.
func FromInterferogram(cfg Config, order int, deltaX float64, nSteps, zpdIndex int, theta float64) ([]float64, []float64, error) {
	if len(cfg.Lines) == 0 {
		return nil, nil, ErrNoLines
	}

	if len(cfg.Amplitudes) != len(cfg.Lines) {
		return nil, nil, ErrLengthMismatch
	}

	if deltaX <= 0 || nSteps <= 0 {
		return nil, nil, ErrBadGeometry
	}

	positions := make([]float64, len(cfg.Lines))

	for i, name := range cfg.Lines {
		rest, err := lines.RestWavelength(name)
		if err != nil {
			return nil, nil, fmt.Errorf("sim: line %q: %w", name, err)
		}

		positions[i] = lines.PositionFromVelocity(rest, cfg.Velocity)
	}

	deltaCm := deltaX * 1e-7 // mirror step in cm

	interferogram := make([]float64, nSteps)

	for j := range interferogram {
		path := float64(j-zpdIndex) * deltaCm

		sample := cfg.Continuum
		for i, pos := range positions {
			sample += cfg.Amplitudes[i] * math.Cos(2*math.Pi*pos*path)
		}

		interferogram[j] = sample
	}

	Apodize(cfg.Apodization, interferogram, zpdIndex)

	size := nextPowerOf2(nSteps)

	in := make([]complex128, size)
	for j, v := range interferogram {
		in[j] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, nil, fmt.Errorf("sim: create FFT plan: %w", err)
	}

	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return nil, nil, fmt.Errorf("sim: forward FFT: %w", err)
	}

	corr := 1 / math.Abs(math.Cos(theta*math.Pi/180))
	binCount := size/2 + 1

	// Nyquist wavenumber of the mirror sampling; band k of the folded
	// spectrum spans [order, order+1] times this.
	nyquist := 1 / (2 * deltaCm)

	axis := make([]float64, binCount)
	re := make([]float64, binCount)
	im := make([]float64, binCount)

	for k := 0; k < binCount; k++ {
		offset := float64(k) / (float64(size) * deltaCm)
		if order%2 == 0 {
			axis[k] = (float64(order)*nyquist + offset) * corr
		} else {
			axis[binCount-1-k] = (float64(order+1)*nyquist - offset) * corr
		}

		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	flux := make([]float64, binCount)
	vecmath.Magnitude(flux, re, im)
	vecmath.ScaleBlockInPlace(flux, 2/float64(nSteps))

	if order%2 != 0 {
		// Odd orders fold in reverse; flip the flux to keep the axis
		// strictly increasing.
		for i, j := 0, binCount-1; i < j; i, j = i+1, j-1 {
			flux[i], flux[j] = flux[j], flux[i]
		}
	}

	return axis, flux, nil
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
