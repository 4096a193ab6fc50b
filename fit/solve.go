package fit

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/sitelle-tools/specfit/model"
)

const (
	solverTolerance     = 1e-8
	solverMaxIterations = 5000

	// Sequential penalty schedule: each round multiplies the constraint
	// and bound penalty weight.
	penaltyRounds  = 4
	penaltyInitial = 1e2
	penaltyGrowth  = 100.0
)

// negLogLikelihood evaluates the negative gaussian log-likelihood of the
// restricted spectrum under the line model plus a constant continuum,
// with homoscedastic variance from the off-band noise estimate.
func (s *Session) negLogLikelihood(params []float64) float64 {
	model.Evaluate(s.scratch, s.axisRestricted, params, s.lineCount, s.cfg.Model, s.sincWidth)

	cont := params[len(params)-1]
	sigma2 := s.noise * s.noise
	logTerm := math.Log(2 * math.Pi * sigma2)

	sum := 0.0
	for i, obs := range s.restricted {
		d := obs - s.scratch[i] - cont
		sum += d*d/sigma2 + logTerm
	}

	return 0.5 * sum
}

// penalized evaluates the likelihood at the bound-projected point plus
// quadratic penalties for bound and constraint violations. Projecting
// before the likelihood keeps the model evaluation finite for arbitrary
// solver trial points.
func (s *Session) penalized(params []float64, mu float64) float64 {
	if s.clampBuf == nil {
		s.clampBuf = make([]float64, len(params))
	}

	copy(s.clampBuf, params)

	penalty := 0.0

	for i, b := range s.bounds {
		switch {
		case params[i] < b.lower:
			d := b.lower - params[i]
			penalty += d * d
			s.clampBuf[i] = b.lower
		case params[i] > b.upper:
			d := params[i] - b.upper
			penalty += d * d
			s.clampBuf[i] = b.upper
		}
	}

	for _, c := range s.constraints {
		v := c.Violation(s.clampBuf)
		penalty += v * v
	}

	return s.negLogLikelihood(s.clampBuf) + mu*penalty
}

// solve minimizes the penalized likelihood with a derivative-free
// simplex search inside a sequential penalty loop. The solver's final
// point is accepted whether or not it reports convergence; the returned
// point is projected onto the box bounds.
func (s *Session) solve(initial []float64) []float64 {
	x := append([]float64(nil), initial...)

	mu := penaltyInitial

	for round := 0; round < penaltyRounds; round++ {
		weight := mu

		problem := optimize.Problem{
			Func: func(p []float64) float64 { return s.penalized(p, weight) },
		}

		method := &optimize.NelderMead{}
		method.InitialVertices, method.InitialValues = s.buildSimplex(x, problem.Func)

		settings := &optimize.Settings{
			MajorIterations: solverMaxIterations,
			Converger: &optimize.FunctionConverge{
				Absolute:   solverTolerance,
				Iterations: 100,
			},
		}

		result, _ := optimize.Minimize(problem, x, settings, method)
		if result != nil {
			copy(x, result.X)
		}

		mu *= penaltyGrowth
	}

	for i, b := range s.bounds {
		if x[i] < b.lower {
			x[i] = b.lower
		}

		if x[i] > b.upper {
			x[i] = b.upper
		}
	}

	return x
}

// buildSimplex seeds the simplex with per-parameter steps matched to the
// problem scales: a fraction of the normalized flux for amplitudes and
// continuum, the axis sample spacing for positions, and a sub-sample
// step for widths. The default simplex would step positions by a
// fraction of their absolute wavenumber, far outside the line profile.
func (s *Session) buildSimplex(x []float64, f func([]float64) float64) ([][]float64, []float64) {
	dim := len(x)

	spacing := 1.0
	if len(s.axis) > 1 {
		spacing = s.axis[1] - s.axis[0]
	}

	steps := make([]float64, dim)
	for i := 0; i < s.lineCount; i++ {
		steps[3*i] = 0.05
		steps[3*i+1] = spacing
		steps[3*i+2] = 0.5
	}

	steps[dim-1] = 0.02

	vertices := make([][]float64, dim+1)
	values := make([]float64, dim+1)

	vertices[0] = append([]float64(nil), x...)
	values[0] = f(vertices[0])

	for i := 0; i < dim; i++ {
		v := append([]float64(nil), x...)
		v[i] += steps[i]
		vertices[i+1] = v
		values[i+1] = f(v)
	}

	return vertices, values
}

// estimateUncertainties fills unc with 1-sigma parameter uncertainties
// from the covariance at the solution, taken as the negative inverse of
// the numerical Hessian of the negative log-likelihood. A singular
// Hessian leaves all uncertainties zero.
func (s *Session) estimateUncertainties(sol, unc []float64) {
	dim := len(sol)

	hess := mat.NewSymDense(dim, nil)
	fd.Hessian(hess, s.negLogLikelihood, sol, nil)

	var cov mat.Dense
	if err := cov.Inverse(hess); err != nil {
		for i := range unc {
			unc[i] = 0
		}

		return
	}

	for i := range unc {
		unc[i] = math.Sqrt(math.Abs(cov.At(i, i)))
	}
}
