// Package fit implements the emission-line parameter estimation engine
// for SITELLE spectra.
//
// A Session owns the full state of one spectrum's fit. Construction
// validates the configuration and preprocesses the spectrum (transmission
// correction, normalization, filter-window restriction, off-band noise
// estimation). Fit then builds initial guesses (analytically or through a
// machine-learned prior), assembles equality and ordering constraints
// from the requested line groupings, minimizes the negative gaussian
// log-likelihood under box bounds, optionally refines the solution with
// an ensemble MCMC sampler, and converts the fitted parameters into
// velocities, velocity dispersions and fluxes with uncertainties.
//
//	cfg := fit.DefaultConfig()
//	cfg.Spectrum = flux
//	cfg.Axis = axis
//	cfg.Lines = []string{"Halpha"}
//	cfg.Model = model.TypeGaussian
//
//	session, err := fit.NewSession(cfg)
//	if err != nil {
//	    // configuration error: unknown line, filter, model, ...
//	}
//	result, err := session.Fit()
//
// A Session is single-threaded and not safe for concurrent use; callers
// wanting parallel throughput run independent sessions.
package fit
