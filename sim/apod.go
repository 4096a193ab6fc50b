package sim

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Apodization identifies a taper applied to the interferogram before
// transforming it. Tapering trades spectral resolution for sidelobe
// suppression in the resulting line profile.
type Apodization int

const (
	ApodNone Apodization = iota
	ApodNortonBeerWeak
	ApodNortonBeerMedium
	ApodNortonBeerStrong
	ApodHann
)

// Norton-Beer coefficients for w(u) = sum c_i (1-u²)^i, after Naylor &
// Tahic (2007).
var nortonBeerCoeffs = map[Apodization][4]float64{
	ApodNortonBeerWeak:   {0.384093, -0.087577, 0.703484, 0},
	ApodNortonBeerMedium: {0.152442, -0.136176, 0.983734, 0},
	ApodNortonBeerStrong: {0.045335, 0, 0.554883, 0.399782},
}

// ApodizationWindow returns the taper coefficients for an interferogram
// of n mirror steps with the zero path difference at zpdIndex. The taper
// is evaluated over the normalized absolute path difference, so an
// asymmetric interferogram is tapered symmetrically about its ZPD.
func ApodizationWindow(a Apodization, n, zpdIndex int) []float64 {
	if n <= 0 {
		return nil
	}

	coeffs := make([]float64, n)

	span := float64(n - 1 - zpdIndex)
	if left := float64(zpdIndex); left > span {
		span = left
	}

	if span <= 0 {
		span = 1
	}

	for j := range coeffs {
		u := math.Abs(float64(j-zpdIndex)) / span
		if u > 1 {
			u = 1
		}

		coeffs[j] = apodAt(a, u)
	}

	return coeffs
}

// Apodize multiplies the interferogram in-place by the taper. ApodNone
// leaves it untouched.
func Apodize(a Apodization, interferogram []float64, zpdIndex int) {
	if a == ApodNone || len(interferogram) == 0 {
		return
	}

	coeffs := ApodizationWindow(a, len(interferogram), zpdIndex)
	vecmath.MulBlockInPlace(interferogram, coeffs)
}

func apodAt(a Apodization, u float64) float64 {
	switch a {
	case ApodHann:
		return 0.5 * (1 + math.Cos(math.Pi*u))
	case ApodNortonBeerWeak, ApodNortonBeerMedium, ApodNortonBeerStrong:
		c := nortonBeerCoeffs[a]
		base := 1 - u*u

		w := 0.0
		pow := 1.0
		for _, ci := range c {
			w += ci * pow
			pow *= base
		}

		return w
	default:
		return 1
	}
}
