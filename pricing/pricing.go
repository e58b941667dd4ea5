// Package pricing implements the option pricing engines: the closed form
// Black-Scholes model, a Cox-Ross-Rubinstein binomial tree, and a Monte
// Carlo simulator with antithetic variance reduction. All three satisfy
// Model and share one finite difference Greeks helper.
package pricing

import (
	"github.com/tantralabs/optionpricing/models"
)

// Model is the capability shared by every pricing engine. A model binds one
// contract at construction and holds no mutable state between calls: Price
// and Greeks are pure functions of the bound contract and the model
// configuration, and are safe for concurrent use.
type Model interface {
	Price() (models.PriceResult, error)
	Greeks() (models.Greeks, error)
}

var (
	_ Model = (*BlackScholes)(nil)
	_ Model = (*BinomialTree)(nil)
	_ Model = (*MonteCarlo)(nil)
)
