package fit

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sitelle-tools/specfit/lines"
)

const (
	mcmcSteps        = 2000
	mcmcBurnIn       = 200
	mcmcWalkerSpread = 1e-4
	mcmcStretch      = 2.0
)

// refineBayes replaces the optimizer's solution and uncertainties with
// posterior medians and standard deviations from an ensemble stretch-move
// sampler (Goodman & Weare) run around the de-scaled solution.
func (s *Session) refineBayes() {
	dim := len(s.sol)
	nWalkers := 3*dim + 4

	s.descale()

	walkers := make([][]float64, nWalkers)
	logP := make([]float64, nWalkers)

	for k := range walkers {
		w := append([]float64(nil), s.sol...)
		for i := range w {
			w[i] += mcmcWalkerSpread * s.rng.NormFloat64()
		}

		// Continuum walkers must start non-negative.
		w[dim-1] = math.Abs(w[dim-1])

		walkers[k] = w
		logP[k] = s.logProbability(w)
	}

	samples := make([][]float64, dim)
	for i := range samples {
		samples[i] = make([]float64, 0, (mcmcSteps-mcmcBurnIn)*nWalkers)
	}

	half := nWalkers / 2
	proposal := make([]float64, dim)

	for step := 0; step < mcmcSteps; step++ {
		for k := 0; k < nWalkers; k++ {
			// Complementary-ensemble partner from the other half.
			var j int
			if k < half {
				j = half + s.rng.Intn(nWalkers-half)
			} else {
				j = s.rng.Intn(half)
			}

			u := (mcmcStretch-1)*s.rng.Float64() + 1
			z := u * u / mcmcStretch

			for i := range proposal {
				proposal[i] = walkers[j][i] + z*(walkers[k][i]-walkers[j][i])
			}

			lp := s.logProbability(proposal)

			accept := float64(dim-1)*math.Log(z) + lp - logP[k]
			if math.Log(s.rng.Float64()) < accept {
				copy(walkers[k], proposal)
				logP[k] = lp
			}
		}

		if step < mcmcBurnIn {
			continue
		}

		for k := 0; k < nWalkers; k++ {
			for i := 0; i < dim; i++ {
				samples[i] = append(samples[i], walkers[k][i])
			}
		}
	}

	for i := 0; i < dim; i++ {
		s.sol[i] = median(samples[i])
		s.unc[i] = stat.PopStdDev(samples[i], nil)
	}

	s.rescale()
	s.reconstruct()
}

// logProbability is the posterior density up to a constant: the prior
// plus the log-likelihood.
func (s *Session) logProbability(params []float64) float64 {
	lp := s.logPrior(params)
	if math.IsInf(lp, -1) {
		return lp
	}

	return lp - s.negLogLikelihood(params)
}

// logPrior is flat inside the solver's box bounds. When a distributional
// ML estimate is available, gaussian priors on each line's implied
// velocity and broadening are added on top.
func (s *Session) logPrior(params []float64) float64 {
	for i, b := range s.bounds {
		if params[i] < b.lower || params[i] > b.upper {
			return math.Inf(-1)
		}
	}

	if s.velMLSigma <= 0 || s.broadMLSigma <= 0 {
		return 0
	}

	velPrior := distuv.Normal{Mu: s.velML, Sigma: s.velMLSigma}
	broadPrior := distuv.Normal{Mu: s.broadML, Sigma: s.broadMLSigma}

	lp := 0.0

	for i := 0; i < s.lineCount; i++ {
		pos := params[3*i+1]
		vel := lines.VelocityFromPosition(s.rest[i], pos)
		broad := lines.Broadening(pos, params[3*i+2], s.corr)

		lp += velPrior.LogProb(vel) + broadPrior.LogProb(broad)
	}

	return lp
}
