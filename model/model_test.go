package model

import (
	"errors"
	"math"
	"testing"
)

func testAxis(center, span float64, n int) []float64 {
	axis := make([]float64, n)

	step := span / float64(n-1)
	for i := range axis {
		axis[i] = center - span/2 + float64(i)*step
	}

	return axis
}

func TestParseType(t *testing.T) {
	for name, want := range map[string]Type{
		"gaussian":  TypeGaussian,
		"sinc":      TypeSinc,
		"sincgauss": TypeSincGauss,
	} {
		got, err := ParseType(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		if got != want {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}

		if got.String() != name {
			t.Fatalf("%s: String() gave %q", name, got.String())
		}
	}

	if _, err := ParseType("lorentzian"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("unknown model: got %v, want ErrUnknownModel", err)
	}
}

func TestGaussianPeakAndSymmetry(t *testing.T) {
	const (
		amp   = 0.8
		pos   = 15230.0
		sigma = 1.5
	)

	axis := testAxis(pos, 40, 401)
	dst := make([]float64, len(axis))

	Evaluate(dst, axis, []float64{amp, pos, sigma}, 1, TypeGaussian, 0)

	mid := len(axis) / 2
	if math.Abs(dst[mid]-amp) > 1e-12 {
		t.Fatalf("peak value: got %v, want %v", dst[mid], amp)
	}

	for i := 0; i < mid; i++ {
		if math.Abs(dst[i]-dst[len(dst)-1-i]) > 1e-12 {
			t.Fatalf("asymmetry at offset %d: %v vs %v", i, dst[i], dst[len(dst)-1-i])
		}
	}

	// One sigma off-centre the gaussian drops to exp(-1/2).
	want := amp * math.Exp(-0.5)
	x := []float64{pos + sigma}
	one := make([]float64, 1)
	Evaluate(one, x, []float64{amp, pos, sigma}, 1, TypeGaussian, 0)

	if math.Abs(one[0]-want) > 1e-12 {
		t.Fatalf("one-sigma value: got %v, want %v", one[0], want)
	}
}

func TestSincPeakAndZeros(t *testing.T) {
	const (
		amp   = 1.2
		pos   = 15000.0
		width = 2.0
	)

	points := []float64{pos, pos + width, pos + 2*width, pos - 3*width}
	dst := make([]float64, len(points))

	Evaluate(dst, points, []float64{amp, pos, width}, 1, TypeSinc, 0)

	if math.Abs(dst[0]-amp) > 1e-12 {
		t.Fatalf("sinc peak: got %v, want %v", dst[0], amp)
	}

	for i := 1; i < len(points); i++ {
		if math.Abs(dst[i]) > 1e-12 {
			t.Fatalf("sinc zero at %v: got %v", points[i], dst[i])
		}
	}
}

func TestSincGaussNarrowSincLimit(t *testing.T) {
	const (
		amp   = 0.7
		pos   = 15230.0
		sigma = 2.0
	)

	axis := testAxis(pos, 30, 301)

	gauss := make([]float64, len(axis))
	Evaluate(gauss, axis, []float64{amp, pos, sigma}, 1, TypeGaussian, 0)

	// With a vanishing sinc width the convolution collapses onto the
	// gaussian.
	sg := make([]float64, len(axis))
	Evaluate(sg, axis, []float64{amp, pos, sigma}, 1, TypeSincGauss, 1e-3)

	for i := range axis {
		if math.Abs(sg[i]-gauss[i]) > 1e-6 {
			t.Fatalf("index %d: sincgauss %v vs gaussian %v", i, sg[i], gauss[i])
		}
	}
}

func TestSincGaussFiniteFarFromCentre(t *testing.T) {
	const (
		amp   = 1.0
		pos   = 15230.0
		sigma = 0.5
	)

	axis := testAxis(pos, 2000, 501)
	dst := make([]float64, len(axis))

	Evaluate(dst, axis, []float64{amp, pos, sigma}, 1, TypeSincGauss, 2.5)

	for i, v := range dst {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite value %v at axis %v", v, axis[i])
		}
	}

	peak := make([]float64, 1)
	Evaluate(peak, []float64{pos}, []float64{amp, pos, sigma}, 1, TypeSincGauss, 2.5)

	if math.Abs(peak[0]-amp) > 1e-9 {
		t.Fatalf("sincgauss peak: got %v, want %v", peak[0], amp)
	}
}

func TestEvaluateSumsLines(t *testing.T) {
	axis := testAxis(15000, 100, 201)

	params := []float64{
		0.8, 14980, 1.5,
		0.4, 15020, 2.0,
	}

	both := make([]float64, len(axis))
	Evaluate(both, axis, params, 2, TypeGaussian, 0)

	first := make([]float64, len(axis))
	Evaluate(first, axis, params[:3], 1, TypeGaussian, 0)

	second := make([]float64, len(axis))
	Evaluate(second, axis, params[3:], 1, TypeGaussian, 0)

	for i := range axis {
		if math.Abs(both[i]-first[i]-second[i]) > 1e-12 {
			t.Fatalf("index %d: sum mismatch", i)
		}
	}
}

func TestFluxClosedForms(t *testing.T) {
	const (
		amp   = 0.8
		sigma = 1.5
	)

	if got, want := Flux(TypeGaussian, amp, sigma, 0), math.Sqrt(2*math.Pi)*amp*sigma; math.Abs(got-want) > 1e-12 {
		t.Fatalf("gaussian flux: got %v, want %v", got, want)
	}

	if got, want := Flux(TypeSinc, amp, sigma, 0), math.Pi*amp*sigma; math.Abs(got-want) > 1e-12 {
		t.Fatalf("sinc flux: got %v, want %v", got, want)
	}

	// The sincgauss flux exceeds the bare gaussian flux by the erf
	// normalization.
	sg := Flux(TypeSincGauss, amp, sigma, 2.5)
	if sg <= Flux(TypeGaussian, amp, sigma, 0) {
		t.Fatalf("sincgauss flux %v should exceed gaussian flux", sg)
	}
}

func TestFluxErrPropagation(t *testing.T) {
	flux := Flux(TypeGaussian, 0.8, 1.5, 0)

	// Pure amplitude error scales the flux error linearly.
	got := FluxErr(TypeGaussian, 0.8, 1.5, 0, 0.08, 0)
	if math.Abs(got-0.1*flux) > 1e-12 {
		t.Fatalf("flux error: got %v, want %v", got, 0.1*flux)
	}

	if FluxErr(TypeGaussian, 0, 1.5, 0, 0.1, 0.1) != 0 {
		t.Fatal("zero amplitude should give zero flux error")
	}
}
