// Package spectrum implements preprocessing of SITELLE spectra ahead of
// line fitting: filter-window restriction, normalization, off-band noise
// estimation, transmission correction, and resampling onto a reference
// wavenumber axis.
package spectrum

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrUnsupportedFilter = errors.New("spectrum: unsupported filter")
	ErrEmptyWindow       = errors.New("spectrum: restricted window is empty")
	ErrLengthMismatch    = errors.New("spectrum: axis and flux lengths differ")
	ErrEmptySpectrum     = errors.New("spectrum: spectrum is empty")
)

// window is an inclusive wavenumber interval in cm⁻¹.
type window struct {
	lower float64
	upper float64
}

// fitWindow returns the filter-dependent interval over which the fit is
// performed. The C4 filter reuses the SN3 interval when Halpha is among
// the requested lines (objects near redshift 0.25).
func fitWindow(filter string, requested []string) (window, error) {
	switch filter {
	case "SN3":
		return window{14500, 15400}, nil
	case "SN2":
		return window{19500, 20750}, nil
	case "SN1":
		return window{26000, 27400}, nil
	case "C4":
		if containsLine(requested, "Halpha") {
			return window{14500, 15400}, nil
		}
	}

	return window{}, fmt.Errorf("%w: %q", ErrUnsupportedFilter, filter)
}

// noiseWindow returns the filter-dependent off-band interval used for the
// noise estimate. It is disjoint from the fit window of the same filter.
func noiseWindow(filter string, requested []string) (window, error) {
	switch filter {
	case "SN3":
		return window{14300, 14500}, nil
	case "SN2":
		return window{18600, 19000}, nil
	case "SN1":
		return window{25300, 25700}, nil
	case "C4":
		if containsLine(requested, "Halpha") {
			return window{14300, 14500}, nil
		}
	}

	return window{}, fmt.Errorf("%w: %q", ErrUnsupportedFilter, filter)
}

func containsLine(requested []string, name string) bool {
	for _, line := range requested {
		if line == name {
			return true
		}
	}

	return false
}

// RestrictWavelength returns the half-open index range [lo, hi) of axis
// covering the fit window of the named filter.
func RestrictWavelength(axis []float64, filter string, requested []string) (int, int, error) {
	win, err := fitWindow(filter, requested)
	if err != nil {
		return 0, 0, err
	}

	return indexWindow(axis, win)
}

func indexWindow(axis []float64, win window) (int, int, error) {
	if len(axis) == 0 {
		return 0, 0, ErrEmptySpectrum
	}

	lo := NearestIndex(axis, win.lower)
	hi := NearestIndex(axis, win.upper)

	if lo >= hi {
		return 0, 0, fmt.Errorf("%w: [%g, %g] selects [%d, %d)", ErrEmptyWindow, win.lower, win.upper, lo, hi)
	}

	return lo, hi, nil
}

// EstimateNoise computes the standard deviation of the max-normalized
// spectrum over the off-band region of the named filter, ignoring
// non-finite samples. The noise is assumed homoscedastic over the axis.
func EstimateNoise(clean, axis []float64, filter string, requested []string) (float64, error) {
	if len(clean) != len(axis) {
		return 0, ErrLengthMismatch
	}

	win, err := noiseWindow(filter, requested)
	if err != nil {
		return 0, err
	}

	lo, hi, err := indexWindow(axis, win)
	if err != nil {
		return 0, err
	}

	finite := make([]float64, 0, hi-lo)

	for _, v := range clean[lo:hi] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		finite = append(finite, v)
	}

	if len(finite) == 0 {
		return 0, ErrEmptyWindow
	}

	return stat.PopStdDev(finite, nil), nil
}

// ApplyTransmission divides flux by the transmission curve into dst,
// passing samples through unchanged where the transmission is at or
// below 0.5 to avoid blow-up near transmission nulls.
func ApplyTransmission(dst, flux, trans []float64) {
	for i := range flux {
		if i < len(trans) && trans[i] > 0.5 {
			dst[i] = flux[i] / trans[i]
			continue
		}

		dst[i] = flux[i]
	}
}

// Normalize writes flux divided by its maximum into dst and returns the
// maximum as the normalization scale. A non-positive maximum leaves dst
// as a copy of flux and returns scale 1.
func Normalize(dst, flux []float64) float64 {
	copy(dst, flux)

	scale := floats.Max(flux)
	if scale <= 0 {
		return 1
	}

	vecmath.ScaleBlockInPlace(dst, 1/scale)

	return scale
}

// Interpolate resamples (axis, flux) onto refAxis by piecewise-linear
// interpolation into dst. Reference samples outside the axis range are
// clamped to the boundary flux values.
func Interpolate(dst, refAxis, axis, flux []float64) {
	n := len(axis)

	for i, x := range refAxis {
		switch {
		case x <= axis[0]:
			dst[i] = flux[0]
		case x >= axis[n-1]:
			dst[i] = flux[n-1]
		default:
			j := searchSegment(axis, x)
			frac := (x - axis[j]) / (axis[j+1] - axis[j])
			dst[i] = flux[j] + frac*(flux[j+1]-flux[j])
		}
	}
}

// searchSegment returns j such that axis[j] <= x < axis[j+1].
func searchSegment(axis []float64, x float64) int {
	lo, hi := 0, len(axis)-1

	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if axis[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}

	return lo
}

// NearestIndex returns the index of the axis sample closest to target.
func NearestIndex(axis []float64, target float64) int {
	best := 0
	bestDiff := math.Abs(axis[0] - target)

	for i := 1; i < len(axis); i++ {
		diff := math.Abs(axis[i] - target)
		if diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}

	return best
}
