package models

import "errors"

// Engine error kinds. Every failure returned by the pricing engine wraps
// exactly one of these, so callers can discriminate with errors.Is without
// parsing messages.
var (
	// ErrValidation marks a malformed contract or model configuration.
	ErrValidation = errors.New("validation error")

	// ErrNumericalInstability marks derived model parameters outside their
	// valid mathematical range, e.g. a risk neutral probability outside [0,1].
	ErrNumericalInstability = errors.New("numerical instability")

	// ErrUnsupportedFeature marks a request a model cannot honor, e.g.
	// American exercise under Monte Carlo.
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// ErrNoSolutionBracket marks an observed price outside the range
	// reachable by any volatility, so no root can exist.
	ErrNoSolutionBracket = errors.New("no solution bracket")

	// ErrConvergence marks an iterative solve that exhausted its budget in
	// every phase without meeting tolerance.
	ErrConvergence = errors.New("convergence failure")
)
