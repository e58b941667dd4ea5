package pricing

import (
	"math"

	gaussian "github.com/chobie/go-gaussian"

	"github.com/tantralabs/optionpricing/models"
)

const (
	// ModelBlackScholes identifies prices produced by BlackScholes.
	ModelBlackScholes = "BlackScholes"

	daysPerYear = 365.0
)

// BlackScholes prices European contracts in closed form and returns
// analytical Greeks.
//
// The model only knows the European payoff. An American contract is priced
// as if it were European: the early exercise premium is deliberately
// ignored rather than rejected, so callers comparing models on the same
// contract get a defined (approximate) answer. Use BinomialTree when the
// premium matters.
type BlackScholes struct {
	contract models.Contract
	norm     *gaussian.Gaussian
}

// NewBlackScholes binds the model to a contract. The contract is expected
// to have passed models.NewContract validation.
func NewBlackScholes(c models.Contract) *BlackScholes {
	return &BlackScholes{
		contract: c,
		norm:     gaussian.NewGaussian(0, 1),
	}
}

// d1 = [ln(S/K) + (r - q + sigma^2/2)T] / (sigma sqrt(T)), d2 = d1 - sigma sqrt(T)
func (m *BlackScholes) d1d2() (float64, float64) {
	c := m.contract
	sigmaSqrtT := c.Volatility * math.Sqrt(c.TimeToExpiry)
	d1 := (math.Log(c.Spot/c.Strike) + (c.Rate-c.DividendYield+0.5*c.Volatility*c.Volatility)*c.TimeToExpiry) / sigmaSqrtT
	return d1, d1 - sigmaSqrtT
}

// Price evaluates the closed form with a continuous dividend yield
// adjustment to the forward:
//
//	call = S e^{-qT} N(d1) - K e^{-rT} N(d2)
//	put  = K e^{-rT} N(-d2) - S e^{-qT} N(-d1)
func (m *BlackScholes) Price() (models.PriceResult, error) {
	return models.PriceResult{Price: m.price(), Model: ModelBlackScholes}, nil
}

func (m *BlackScholes) price() float64 {
	c := m.contract
	d1, d2 := m.d1d2()
	pvSpot := c.Spot * math.Exp(-c.DividendYield*c.TimeToExpiry)
	pvStrike := c.Strike * math.Exp(-c.Rate*c.TimeToExpiry)
	if c.Type == models.Call {
		return pvSpot*m.norm.Cdf(d1) - pvStrike*m.norm.Cdf(d2)
	}
	return pvStrike*m.norm.Cdf(-d2) - pvSpot*m.norm.Cdf(-d1)
}

// Greeks returns the five analytical sensitivities. Theta is per calendar
// day, vega and rho per one percentage point.
func (m *BlackScholes) Greeks() (models.Greeks, error) {
	c := m.contract
	d1, d2 := m.d1d2()
	sqrtT := math.Sqrt(c.TimeToExpiry)
	qDiscount := math.Exp(-c.DividendYield * c.TimeToExpiry)
	pvStrike := c.Strike * math.Exp(-c.Rate*c.TimeToExpiry)
	phiD1 := m.norm.Pdf(d1)

	g := models.Greeks{
		Gamma: qDiscount * phiD1 / (c.Spot * c.Volatility * sqrtT),
		Vega:  m.Vega(),
	}

	// Theta shares its decay term across both payoffs; the carry terms flip.
	decay := -(c.Spot * c.Volatility * qDiscount * phiD1) / (2 * sqrtT)
	if c.Type == models.Call {
		g.Delta = qDiscount * m.norm.Cdf(d1)
		g.Theta = (decay + c.DividendYield*c.Spot*qDiscount*m.norm.Cdf(d1) - c.Rate*pvStrike*m.norm.Cdf(d2)) / daysPerYear
		g.Rho = pvStrike * c.TimeToExpiry * m.norm.Cdf(d2) / 100
	} else {
		g.Delta = -qDiscount * m.norm.Cdf(-d1)
		g.Theta = (decay - c.DividendYield*c.Spot*qDiscount*m.norm.Cdf(-d1) + c.Rate*pvStrike*m.norm.Cdf(-d2)) / daysPerYear
		g.Rho = -pvStrike * c.TimeToExpiry * m.norm.Cdf(-d2) / 100
	}
	return g, nil
}

// Vega is the analytical vega, per one percentage point of volatility.
// Exposed on its own because the implied volatility solver uses it as the
// Newton-Raphson derivative.
func (m *BlackScholes) Vega() float64 {
	c := m.contract
	d1, _ := m.d1d2()
	return c.Spot * math.Exp(-c.DividendYield*c.TimeToExpiry) * math.Sqrt(c.TimeToExpiry) * m.norm.Pdf(d1) / 100
}
