// Package lines provides the catalog of emission lines known to the
// fitting engine together with the Doppler conversions between velocity
// space and the instrument's wavenumber axis.
//
// Rest wavelengths are stored in nm; the spectral axis is in cm⁻¹
// (wavenumber = 1e7 / wavelength).
package lines

import (
	"errors"
	"math"
	"sort"
)

// SpeedOfLight is the speed of light in km/s.
const SpeedOfLight = 3e5

// nmPerCm converts between nm wavelengths and cm⁻¹ wavenumbers.
const nmPerCm = 1e7

// ErrUnknownLine reports a line name that is not in the catalog.
var ErrUnknownLine = errors.New("lines: unknown line name")

// catalog maps line names to rest wavelengths in nm.
var catalog = map[string]float64{
	"Halpha":   656.280,
	"NII6583":  658.341,
	"NII6548":  654.803,
	"SII6716":  671.647,
	"SII6731":  673.085,
	"OII3726":  372.603,
	"OII3729":  372.882,
	"OIII4959": 495.891,
	"OIII5007": 500.684,
	"Hbeta":    486.133,
}

// RestWavelength returns the rest wavelength in nm of the named line.
func RestWavelength(name string) (float64, error) {
	rest, ok := catalog[name]
	if !ok {
		return 0, ErrUnknownLine
	}

	return rest, nil
}

// Known reports whether the named line is in the catalog.
func Known(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Names returns the catalog line names in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// PositionFromVelocity returns the observed line centre in cm⁻¹ for a
// rest wavelength (nm) Doppler-shifted by velocity (km/s).
func PositionFromVelocity(restNM, velocity float64) float64 {
	return nmPerCm / ((velocity/SpeedOfLight)*restNM + restNM)
}

// VelocityFromPosition returns the Doppler velocity in km/s implied by an
// observed line centre (cm⁻¹) relative to a rest wavelength (nm).
func VelocityFromPosition(restNM, position float64) float64 {
	return SpeedOfLight * (nmPerCm/position - restNM) / restNM
}

// VelocityErr propagates a position uncertainty (cm⁻¹) into a velocity
// uncertainty (km/s) at the fitted line centre.
func VelocityErr(restNM, position, positionErr float64) float64 {
	if position == 0 {
		return 0
	}

	return SpeedOfLight * nmPerCm * positionErr / (restNM * position * position)
}

// SigmaFromBroadening converts a velocity dispersion (km/s) at the given
// line centre (cm⁻¹) into a wavenumber sigma.
func SigmaFromBroadening(position, broadening float64) float64 {
	return position * broadening / SpeedOfLight
}

// Broadening returns the velocity dispersion in km/s for a fitted
// wavenumber sigma, applying the interferometric angle correction.
func Broadening(position, sigma, corr float64) float64 {
	if position == 0 {
		return 0
	}

	return math.Abs(SpeedOfLight * sigma * corr / position)
}

// BroadeningErr propagates the width uncertainty into a velocity
// dispersion uncertainty (km/s).
func BroadeningErr(position, sigmaErr, corr float64) float64 {
	if position == 0 {
		return 0
	}

	return math.Abs(SpeedOfLight * sigmaErr * corr / position)
}
