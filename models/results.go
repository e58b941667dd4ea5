package models

import "fmt"

// PriceResult is a single price with the identifier of the model that
// produced it. It has no lifecycle beyond the call that returned it.
type PriceResult struct {
	Price float64
	Model string
}

// Greeks are the five standard sensitivities of an option price.
//
// Conventions: Delta and Gamma are per unit of spot, Theta is per calendar
// day (negative for a decaying long position), Vega and Rho are per one
// percentage point of volatility and rate respectively.
type Greeks struct {
	Delta float64 // d price / d spot
	Gamma float64 // d delta / d spot
	Theta float64 // d price / d time, per calendar day
	Vega  float64 // d price / d volatility, per 1% vol
	Rho   float64 // d price / d rate, per 1% rate
}

func (g Greeks) String() string {
	return fmt.Sprintf("delta=%.6f gamma=%.6f theta=%.6f vega=%.6f rho=%.6f",
		g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho)
}

// Solver phase identifiers reported by ImpliedVolResult.Method.
const (
	MethodNewton    = "newton"
	MethodBisection = "bisection"
)

// ImpliedVolResult is a converged implied volatility together with the
// convergence metadata of the solve.
type ImpliedVolResult struct {
	Vol        float64 // volatility reproducing the observed price
	Iterations int     // total iterations across both phases
	Residual   float64 // |model price - observed price| at Vol
	Method     string  // which phase converged, MethodNewton or MethodBisection
	Converged  bool    // always true on a nil error
}
