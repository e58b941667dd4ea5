// Package vol solves the inverse pricing problem (implied volatility) and
// estimates realized volatility from price history.
package vol

import (
	"fmt"
	"math"

	"github.com/tantralabs/optionpricing/logger"
	"github.com/tantralabs/optionpricing/models"
	"github.com/tantralabs/optionpricing/pricing"
)

// ModelFactory builds a pricing model bound to the given contract. The
// solver re-invokes it for every trial volatility, so the model should be
// cheap to construct and evaluate; Black-Scholes is the conventional choice.
type ModelFactory func(models.Contract) (pricing.Model, error)

// analyticVega is satisfied by oracles that expose a closed form vega
// (per one percentage point). When the oracle does not, the solver falls
// back to a finite difference derivative.
type analyticVega interface {
	Vega() float64
}

// SolverConfig bounds both solver phases.
type SolverConfig struct {
	Tolerance              float64      // residual price tolerance
	MaxNewtonIterations    int          // Newton-Raphson budget
	MaxBisectionIterations int          // bisection budget
	BracketLow             float64      // lower volatility bracket
	BracketHigh            float64      // upper volatility bracket
	Model                  ModelFactory // nil means Black-Scholes
}

func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Tolerance:              1e-6,
		MaxNewtonIterations:    100,
		MaxBisectionIterations: 100,
		BracketLow:             1e-4,
		BracketHigh:            5.0,
	}
}

// Newton hands off to bisection after this many consecutive steps without
// improving the residual.
const newtonStaleLimit = 3

// Solve finds the volatility at which the oracle reproduces the observed
// market price. The contract's stored volatility is only the initial guess.
//
// A Newton-Raphson phase using vega as the derivative runs first; if it
// diverges (non-positive vol estimate, vanishing vega, non-finite step, or
// a stalled residual) or exhausts its budget, a bracketing bisection phase
// takes over. The returned result reports which phase converged and the
// iterations spent across both. When neither phase converges the error
// wraps models.ErrConvergence; a best-effort value is never reported as
// converged.
func Solve(observed float64, c models.Contract, cfg SolverConfig) (models.ImpliedVolResult, error) {
	if err := validateConfig(cfg); err != nil {
		return models.ImpliedVolResult{}, err
	}
	if err := checkReachable(observed, c); err != nil {
		return models.ImpliedVolResult{}, err
	}

	factory := cfg.Model
	if factory == nil {
		factory = func(c models.Contract) (pricing.Model, error) {
			return pricing.NewBlackScholes(c), nil
		}
	}

	// f(sigma) = price(sigma) - observed. The second return is d f / d
	// sigma per unit volatility, analytic when the oracle offers it.
	eval := func(sigma float64) (residual, deriv float64, err error) {
		trial := c
		trial.Volatility = sigma
		model, err := factory(trial)
		if err != nil {
			return 0, 0, err
		}
		res, err := model.Price()
		if err != nil {
			return 0, 0, err
		}
		if av, ok := model.(analyticVega); ok {
			return res.Price - observed, av.Vega() * 100, nil
		}
		return res.Price - observed, 0, nil
	}
	priceAt := func(sigma float64) (float64, error) {
		r, _, err := eval(sigma)
		return r + observed, err
	}

	iterations := 0

	result, fellBack, err := newtonPhase(c.Volatility, cfg, eval, priceAt, &iterations)
	if err != nil {
		return models.ImpliedVolResult{}, err
	}
	if !fellBack {
		return result, nil
	}

	return bisectionPhase(observed, cfg, priceAt, &iterations)
}

func validateConfig(cfg SolverConfig) error {
	switch {
	case !(cfg.Tolerance > 0):
		return fmt.Errorf("%w: solver tolerance must be positive, got %v", models.ErrValidation, cfg.Tolerance)
	case cfg.MaxNewtonIterations <= 0 || cfg.MaxBisectionIterations <= 0:
		return fmt.Errorf("%w: solver iteration budgets must be positive", models.ErrValidation)
	case !(cfg.BracketLow > 0) || !(cfg.BracketHigh > cfg.BracketLow):
		return fmt.Errorf("%w: solver bracket [%v, %v] is not a positive increasing range",
			models.ErrValidation, cfg.BracketLow, cfg.BracketHigh)
	}
	return nil
}

// checkReachable rejects observed prices no volatility can produce: at or
// below zero, below the discounted intrinsic value (an arbitrage violating
// quote), or at or above the upper price bound.
func checkReachable(observed float64, c models.Contract) error {
	if !(observed > 0) || math.IsInf(observed, 0) {
		return fmt.Errorf("%w: observed price must be positive, got %v", models.ErrNoSolutionBracket, observed)
	}
	if floor := c.DiscountedIntrinsic(); observed < floor {
		return fmt.Errorf("%w: observed price %v is below discounted intrinsic value %v",
			models.ErrNoSolutionBracket, observed, floor)
	}
	if bound := c.PriceBound(); observed >= bound {
		return fmt.Errorf("%w: observed price %v is at or above the price bound %v",
			models.ErrNoSolutionBracket, observed, bound)
	}
	return nil
}

func newtonPhase(guess float64, cfg SolverConfig,
	eval func(float64) (float64, float64, error),
	priceAt func(float64) (float64, error),
	iterations *int) (models.ImpliedVolResult, bool, error) {

	sigma := clamp(guess, cfg.BracketLow, cfg.BracketHigh)
	bestResidual := math.Inf(1)
	stale := 0

	for i := 0; i < cfg.MaxNewtonIterations; i++ {
		*iterations++
		residual, deriv, err := eval(sigma)
		if err != nil {
			return models.ImpliedVolResult{}, false, err
		}
		logger.Debugf("newton iteration %d: sigma=%v residual=%v", *iterations, sigma, residual)
		if math.Abs(residual) < cfg.Tolerance {
			return models.ImpliedVolResult{
				Vol:        sigma,
				Iterations: *iterations,
				Residual:   math.Abs(residual),
				Method:     models.MethodNewton,
				Converged:  true,
			}, false, nil
		}

		if deriv == 0 {
			// Oracle without analytic vega: central difference.
			deriv, err = numericVega(priceAt, sigma, cfg.BracketLow)
			if err != nil {
				return models.ImpliedVolResult{}, false, err
			}
		}
		if math.Abs(deriv) < 1e-10 || math.IsNaN(deriv) {
			logger.Debugf("newton derivative %v unusable, falling back to bisection", deriv)
			return models.ImpliedVolResult{}, true, nil
		}

		next := sigma - residual/deriv
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= 0 {
			logger.Debugf("newton step to %v diverged, falling back to bisection", next)
			return models.ImpliedVolResult{}, true, nil
		}
		if math.Abs(residual) < bestResidual {
			bestResidual = math.Abs(residual)
			stale = 0
		} else {
			stale++
			if stale >= newtonStaleLimit {
				logger.Debugf("newton stalled at residual %v, falling back to bisection", residual)
				return models.ImpliedVolResult{}, true, nil
			}
		}
		sigma = clamp(next, cfg.BracketLow, cfg.BracketHigh)
	}
	return models.ImpliedVolResult{}, true, nil
}

func bisectionPhase(observed float64, cfg SolverConfig,
	priceAt func(float64) (float64, error),
	iterations *int) (models.ImpliedVolResult, error) {

	lo, hi := cfg.BracketLow, cfg.BracketHigh
	fLo, err := residualAt(priceAt, lo, observed)
	if err != nil {
		return models.ImpliedVolResult{}, err
	}
	fHi, err := residualAt(priceAt, hi, observed)
	if err != nil {
		return models.ImpliedVolResult{}, err
	}
	if fLo*fHi > 0 {
		return models.ImpliedVolResult{}, fmt.Errorf(
			"%w: price residual does not change sign over volatility bracket [%v, %v]",
			models.ErrNoSolutionBracket, lo, hi)
	}

	for i := 0; i < cfg.MaxBisectionIterations; i++ {
		*iterations++
		mid := 0.5 * (lo + hi)
		fMid, err := residualAt(priceAt, mid, observed)
		if err != nil {
			return models.ImpliedVolResult{}, err
		}
		logger.Debugf("bisection iteration %d: sigma=%v residual=%v", *iterations, mid, fMid)
		if math.Abs(fMid) < cfg.Tolerance {
			return models.ImpliedVolResult{
				Vol:        mid,
				Iterations: *iterations,
				Residual:   math.Abs(fMid),
				Method:     models.MethodBisection,
				Converged:  true,
			}, nil
		}
		if (fMid < 0) == (fLo < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
		if hi-lo < 1e-12 {
			break
		}
	}
	return models.ImpliedVolResult{Iterations: *iterations},
		fmt.Errorf("%w: neither Newton-Raphson nor bisection met tolerance %v within budget",
			models.ErrConvergence, cfg.Tolerance)
}

func residualAt(priceAt func(float64) (float64, error), sigma, observed float64) (float64, error) {
	p, err := priceAt(sigma)
	if err != nil {
		return 0, err
	}
	return p - observed, nil
}

func numericVega(priceAt func(float64) (float64, error), sigma, floor float64) (float64, error) {
	const h = 5e-3
	lo := sigma - h
	if lo < floor {
		lo = floor
	}
	up, err := priceAt(sigma + h)
	if err != nil {
		return 0, err
	}
	down, err := priceAt(lo)
	if err != nil {
		return 0, err
	}
	return (up - down) / (sigma + h - lo), nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
