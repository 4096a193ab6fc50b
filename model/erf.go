package model

import "math"

// erfSeriesTerms truncates the Abramowitz & Stegun 7.1.29 expansion.
// exp(-n²/4) at n=13 is below 4e-19, well under float64 resolution.
const erfSeriesTerms = 13

// erfRealScaled computes exp(-b²)·Re(erf(a+ib)) for a > 0 using the
// Abramowitz & Stegun 7.1.29 series. The gaussian envelope is folded
// into every term so that large |b| cannot overflow the cosh/sinh
// factors of the bare expansion.
func erfRealScaled(a, b float64) float64 {
	envelope := math.Exp(-b * b)
	twoAB := 2 * a * b

	sum := envelope * math.Erf(a)
	sum += math.Exp(-a*a-b*b) / (2 * math.Pi * a) * (1 - math.Cos(twoAB))

	expA2 := math.Exp(-a * a)
	if expA2 == 0 {
		return sum
	}

	cos2ab := math.Cos(twoAB)
	sin2ab := math.Sin(twoAB)

	series := 0.0

	for n := 1; n <= erfSeriesTerms; n++ {
		fn := float64(n)

		// exp(-b²)·cosh(nb) and exp(-b²)·sinh(nb), fused to stay finite.
		ep := math.Exp(fn*b - b*b)
		em := math.Exp(-fn*b - b*b)

		term := 2*a*envelope - a*cos2ab*(ep+em) + fn/2*sin2ab*(ep-em)
		series += math.Exp(-fn*fn/4) / (fn*fn + 4*a*a) * term
	}

	sum += 2 / math.Pi * expA2 * series

	return sum
}
