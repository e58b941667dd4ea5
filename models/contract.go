package models

import (
	"fmt"
	"math"
)

// OptionType is the payoff direction of a contract.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

func (o OptionType) Valid() bool {
	return o == Call || o == Put
}

// ExerciseStyle controls when a contract may be exercised.
type ExerciseStyle string

const (
	European ExerciseStyle = "european"
	American ExerciseStyle = "american"
)

func (e ExerciseStyle) Valid() bool {
	return e == European || e == American
}

// Contract describes a single vanilla option. It is a value type and is
// never mutated after construction; pricing models that need a perturbed
// variant work on their own copies.
type Contract struct {
	Spot          float64       // current underlying price
	Strike        float64       // strike price
	TimeToExpiry  float64       // years until expiry
	Volatility    float64       // annualized volatility
	Rate          float64       // continuously compounded risk free rate, may be negative
	DividendYield float64       // continuous dividend yield
	Type          OptionType    // call or put
	Style         ExerciseStyle // european or american
}

// NewContract validates every field and returns the contract by value.
// It never returns a partially valid contract: the zero Contract and an
// error, or a fully validated one and nil.
func NewContract(spot, strike, timeToExpiry, volatility, rate, dividendYield float64, optionType OptionType, style ExerciseStyle) (Contract, error) {
	c := Contract{
		Spot:          spot,
		Strike:        strike,
		TimeToExpiry:  timeToExpiry,
		Volatility:    volatility,
		Rate:          rate,
		DividendYield: dividendYield,
		Type:          optionType,
		Style:         style,
	}
	if err := c.validate(); err != nil {
		return Contract{}, err
	}
	return c, nil
}

func (c Contract) validate() error {
	switch {
	case !(c.Spot > 0) || math.IsInf(c.Spot, 0):
		return fmt.Errorf("%w: spot price must be positive, got %v", ErrValidation, c.Spot)
	case !(c.Strike > 0) || math.IsInf(c.Strike, 0):
		return fmt.Errorf("%w: strike price must be positive, got %v", ErrValidation, c.Strike)
	case !(c.TimeToExpiry > 0) || math.IsInf(c.TimeToExpiry, 0):
		return fmt.Errorf("%w: time to expiry must be positive, got %v", ErrValidation, c.TimeToExpiry)
	case !(c.Volatility > 0) || math.IsInf(c.Volatility, 0):
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrValidation, c.Volatility)
	case math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0):
		return fmt.Errorf("%w: risk free rate must be finite, got %v", ErrValidation, c.Rate)
	case c.DividendYield < 0 || math.IsNaN(c.DividendYield) || math.IsInf(c.DividendYield, 0):
		return fmt.Errorf("%w: dividend yield must be non-negative, got %v", ErrValidation, c.DividendYield)
	case !c.Type.Valid():
		return fmt.Errorf("%w: unknown option type %q", ErrValidation, c.Type)
	case !c.Style.Valid():
		return fmt.Errorf("%w: unknown exercise style %q", ErrValidation, c.Style)
	}
	return nil
}

// Payoff is the exercise value of the contract at the given underlying price.
func (c Contract) Payoff(underlying float64) float64 {
	var value float64
	switch c.Type {
	case Call:
		value = underlying - c.Strike
	case Put:
		value = c.Strike - underlying
	}
	if value < 0 {
		value = 0
	}
	return value
}

// Intrinsic is the exercise value at the current spot.
func (c Contract) Intrinsic() float64 {
	return c.Payoff(c.Spot)
}

// DiscountedIntrinsic is the present value of the forward intrinsic value,
// max(S e^{-qT} - K e^{-rT}, 0) for a call and the mirror for a put. It is
// the arbitrage floor for any European price, used by the implied
// volatility solver to reject unreachable market prices.
func (c Contract) DiscountedIntrinsic() float64 {
	pvSpot := c.Spot * math.Exp(-c.DividendYield*c.TimeToExpiry)
	pvStrike := c.Strike * math.Exp(-c.Rate*c.TimeToExpiry)
	var value float64
	switch c.Type {
	case Call:
		value = pvSpot - pvStrike
	case Put:
		value = pvStrike - pvSpot
	}
	if value < 0 {
		value = 0
	}
	return value
}

// PriceBound is the upper arbitrage bound for the contract price:
// S e^{-qT} for a European call, K e^{-rT} for a European put. An American
// contract can capture undiscounted value through early exercise, so its
// bound loosens to the spot (call) or the strike (put); under a negative
// yield or rate the European bound is already the larger of the two.
func (c Contract) PriceBound() float64 {
	if c.Type == Call {
		bound := c.Spot * math.Exp(-c.DividendYield*c.TimeToExpiry)
		if c.Style == American && c.Spot > bound {
			bound = c.Spot
		}
		return bound
	}
	bound := c.Strike * math.Exp(-c.Rate*c.TimeToExpiry)
	if c.Style == American && c.Strike > bound {
		bound = c.Strike
	}
	return bound
}

func (c Contract) String() string {
	return fmt.Sprintf("%v %v S=%v K=%v T=%v vol=%v r=%v q=%v",
		c.Style, c.Type, c.Spot, c.Strike, c.TimeToExpiry, c.Volatility, c.Rate, c.DividendYield)
}
