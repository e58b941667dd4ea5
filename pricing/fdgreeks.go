package pricing

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/tantralabs/optionpricing/logger"
	"github.com/tantralabs/optionpricing/models"
)

// DefaultRelativeBump is the spot perturbation used by finite difference
// Greeks when a model config leaves RelativeBump at zero.
const DefaultRelativeBump = 0.01

// repriceFunc prices a (possibly perturbed) contract with a model's own
// configuration. Lattice and simulation models hand one of these to
// finiteDifferenceGreeks.
type repriceFunc func(models.Contract) (float64, error)

// finiteDifferenceGreeks computes bump-and-revalue sensitivities by central
// differences. It re-invokes the full pricing routine six times per call
// (spot up/down, vol up/down, rate up/down) plus once for the base price;
// that cost is intrinsic to models without closed form derivatives and is
// accepted rather than optimized away.
//
// Conventions match the analytical Greeks: theta per calendar day (one day
// forward difference), vega and rho per one percentage point (absolute 0.01
// bumps; the vega bump shrinks to half the volatility when 0.01 would push
// the down-bumped copy non-positive). The spot bump is relative
// (bump * spot). Every perturbed contract is a fresh copy; the caller's
// contract is never touched.
func finiteDifferenceGreeks(reprice repriceFunc, c models.Contract, bump float64) (models.Greeks, error) {
	if bump <= 0 {
		bump = DefaultRelativeBump
	}
	logger.Debugf("finite difference greeks on %v with relative bump %v", c, bump)

	base, err := reprice(c)
	if err != nil {
		return models.Greeks{}, err
	}

	// Delta and gamma from the same pair of spot bumps.
	h := c.Spot * bump
	spotUp, err := repriceShifted(reprice, c, func(s *models.Contract) { s.Spot += h })
	if err != nil {
		return models.Greeks{}, err
	}
	spotDown, err := repriceShifted(reprice, c, func(s *models.Contract) { s.Spot -= h })
	if err != nil {
		return models.Greeks{}, err
	}

	// The volatility bump is capped at half the contract's volatility so the
	// down-bumped copy stays strictly positive.
	vb := 0.01
	if half := 0.5 * c.Volatility; half < vb {
		vb = half
	}
	volUp, err := repriceShifted(reprice, c, func(s *models.Contract) { s.Volatility += vb })
	if err != nil {
		return models.Greeks{}, err
	}
	volDown, err := repriceShifted(reprice, c, func(s *models.Contract) { s.Volatility -= vb })
	if err != nil {
		return models.Greeks{}, err
	}

	rateUp, err := repriceShifted(reprice, c, func(s *models.Contract) { s.Rate += 0.01 })
	if err != nil {
		return models.Greeks{}, err
	}
	rateDown, err := repriceShifted(reprice, c, func(s *models.Contract) { s.Rate -= 0.01 })
	if err != nil {
		return models.Greeks{}, err
	}

	g := models.Greeks{
		Delta: (spotUp - spotDown) / (2 * h),
		Gamma: (spotUp - 2*base + spotDown) / (h * h),
		Vega:  (volUp - volDown) / (2 * vb) * 0.01,
		Rho:   (rateUp - rateDown) / 2,
	}

	// Theta: decay over one calendar day. Inside the final day the whole
	// remaining value decays, so a forward difference is meaningless.
	const oneDay = 1.0 / daysPerYear
	if c.TimeToExpiry <= oneDay {
		g.Theta = -base
		return g, nil
	}
	later, err := repriceShifted(reprice, c, func(s *models.Contract) { s.TimeToExpiry -= oneDay })
	if err != nil {
		return models.Greeks{}, err
	}
	g.Theta = later - base
	return g, nil
}

// repriceShifted prices a perturbed copy of c; the caller's contract is
// left untouched.
func repriceShifted(reprice repriceFunc, c models.Contract, mutate func(*models.Contract)) (float64, error) {
	var shifted models.Contract
	if err := copier.Copy(&shifted, &c); err != nil {
		return 0, fmt.Errorf("copying contract for bump: %w", err)
	}
	mutate(&shifted)
	return reprice(shifted)
}
