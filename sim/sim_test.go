package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/sitelle-tools/specfit/lines"
	"github.com/sitelle-tools/specfit/model"
)

func TestAxisSpansFoldingOrder(t *testing.T) {
	axis := Axis(8, 2943, 842, 0)

	if len(axis) != 842 {
		t.Fatalf("axis length: got %d, want 842", len(axis))
	}

	wantMin := 8.0 / (2 * 2943) * 1e7
	if math.Abs(axis[0]-wantMin) > 1e-6 {
		t.Fatalf("axis start: got %v, want %v", axis[0], wantMin)
	}

	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			t.Fatalf("axis not strictly increasing at %d", i)
		}
	}
}

func TestSpectrumPeakAndContinuum(t *testing.T) {
	axis := Axis(8, 2943, 842, 0)

	flux, err := Spectrum(axis, Config{
		Lines:      []string{"Halpha"},
		Amplitudes: []float64{0.8},
		Velocity:   150,
		Broadening: 80,
		Continuum:  0.05,
		Model:      model.TypeGaussian,
	})
	if err != nil {
		t.Fatalf("Spectrum: %v", err)
	}

	rest, _ := lines.RestWavelength("Halpha")
	wantPos := lines.PositionFromVelocity(rest, 150)

	peak := 0
	for i := range flux {
		if flux[i] > flux[peak] {
			peak = i
		}
	}

	if math.Abs(axis[peak]-wantPos) > 3 {
		t.Fatalf("peak at %v, want near %v", axis[peak], wantPos)
	}

	// The sampled maximum sits within half a channel of the line centre.
	if flux[peak] < 0.75 || flux[peak] > 0.851 {
		t.Fatalf("peak flux: got %v, want close to 0.85", flux[peak])
	}

	// Far from the line only the continuum remains.
	if math.Abs(flux[10]-0.05) > 1e-6 {
		t.Fatalf("continuum: got %v, want 0.05", flux[10])
	}
}

func TestSpectrumNoiseIsSeeded(t *testing.T) {
	axis := Axis(8, 2943, 842, 0)

	cfg := Config{
		Lines:      []string{"Halpha"},
		Amplitudes: []float64{0.8},
		Velocity:   0,
		Broadening: 20,
		Model:      model.TypeGaussian,
		NoiseSigma: 0.02,
		Seed:       11,
	}

	a, err := Spectrum(axis, cfg)
	if err != nil {
		t.Fatalf("Spectrum: %v", err)
	}

	b, err := Spectrum(axis, cfg)
	if err != nil {
		t.Fatalf("Spectrum: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: same seed produced different noise", i)
		}
	}
}

func TestSpectrumValidation(t *testing.T) {
	axis := Axis(8, 2943, 64, 0)

	if _, err := Spectrum(axis, Config{}); !errors.Is(err, ErrNoLines) {
		t.Fatalf("empty config: got %v, want ErrNoLines", err)
	}

	_, err := Spectrum(axis, Config{
		Lines:      []string{"Halpha", "Hbeta"},
		Amplitudes: []float64{1},
		Model:      model.TypeGaussian,
	})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("mismatched amplitudes: got %v, want ErrLengthMismatch", err)
	}

	_, err = Spectrum(axis, Config{
		Lines:      []string{"NotALine"},
		Amplitudes: []float64{1},
		Model:      model.TypeGaussian,
	})
	if !errors.Is(err, lines.ErrUnknownLine) {
		t.Fatalf("unknown line: got %v, want lines.ErrUnknownLine", err)
	}
}

func TestFromInterferogramUnfoldsLine(t *testing.T) {
	cfg := Config{
		Lines:      []string{"Halpha"},
		Amplitudes: []float64{1},
		Velocity:   0,
	}

	axis, flux, err := FromInterferogram(cfg, 8, 2943, 842, 0, 0)
	if err != nil {
		t.Fatalf("FromInterferogram: %v", err)
	}

	if len(axis) != len(flux) {
		t.Fatalf("axis/flux length mismatch: %d vs %d", len(axis), len(flux))
	}

	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			t.Fatalf("axis not strictly increasing at %d", i)
		}
	}

	rest, _ := lines.RestWavelength("Halpha")
	wantPos := 1e7 / rest

	// Skip the DC bins dominated by the interferogram mean.
	peak := 10
	for i := peak; i < len(flux); i++ {
		if flux[i] > flux[peak] {
			peak = i
		}
	}

	binWidth := axis[1] - axis[0]
	if math.Abs(axis[peak]-wantPos) > 3*binWidth {
		t.Fatalf("unfolded peak at %v, want near %v (bin width %v)", axis[peak], wantPos, binWidth)
	}
}

func TestApodizationWindow(t *testing.T) {
	for _, a := range []Apodization{ApodNortonBeerWeak, ApodNortonBeerMedium, ApodNortonBeerStrong, ApodHann} {
		w := ApodizationWindow(a, 842, 169)

		if len(w) != 842 {
			t.Fatalf("window length: got %d, want 842", len(w))
		}

		// Unity at the zero path difference, tapered at the far end.
		if math.Abs(w[169]-apodAt(a, 0)) > 1e-12 {
			t.Fatalf("apodization %d: ZPD weight %v", a, w[169])
		}

		if w[841] >= w[169] {
			t.Fatalf("apodization %d: no taper toward maximum path difference", a)
		}

		for i, v := range w {
			if v < 0 || v > 1.0001 {
				t.Fatalf("apodization %d: weight %v out of range at %d", a, v, i)
			}
		}
	}
}

func TestApodizeSuppressesSidelobes(t *testing.T) {
	cfg := Config{
		Lines:      []string{"Halpha"},
		Amplitudes: []float64{1},
	}

	_, plain, err := FromInterferogram(cfg, 8, 2943, 842, 169, 0)
	if err != nil {
		t.Fatalf("FromInterferogram: %v", err)
	}

	cfg.Apodization = ApodNortonBeerStrong

	_, tapered, err := FromInterferogram(cfg, 8, 2943, 842, 169, 0)
	if err != nil {
		t.Fatalf("FromInterferogram: %v", err)
	}

	peakIdx := func(flux []float64) int {
		peak := 10
		for i := peak; i < len(flux); i++ {
			if flux[i] > flux[peak] {
				peak = i
			}
		}

		return peak
	}

	// Total off-peak energy relative to the peak drops under the taper.
	sidelobeEnergy := func(flux []float64) float64 {
		p := peakIdx(flux)

		sum := 0.0
		for i := 10; i < len(flux); i++ {
			if i >= p-4 && i <= p+4 {
				continue
			}

			sum += flux[i] * flux[i]
		}

		return sum / (flux[p] * flux[p])
	}

	if ts, ps := sidelobeEnergy(tapered), sidelobeEnergy(plain); ts >= ps {
		t.Fatalf("relative sidelobe energy %v with taper, %v without", ts, ps)
	}
}
