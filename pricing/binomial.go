package pricing

import (
	"fmt"
	"math"

	"github.com/tantralabs/optionpricing/logger"
	"github.com/tantralabs/optionpricing/models"
)

// ModelBinomialTree identifies prices produced by BinomialTree.
const ModelBinomialTree = "BinomialTree"

// DefaultBinomialSteps balances lattice accuracy against the cost of the
// 4-6 full re-pricings a Greeks call performs.
const DefaultBinomialSteps = 200

// BinomialTreeConfig configures the lattice.
type BinomialTreeConfig struct {
	// Steps is the number of time steps in the tree.
	Steps int
	// RelativeBump is the spot perturbation for finite difference Greeks;
	// zero means DefaultRelativeBump.
	RelativeBump float64
}

func DefaultBinomialTreeConfig() BinomialTreeConfig {
	return BinomialTreeConfig{Steps: DefaultBinomialSteps}
}

// BinomialTree prices contracts on a Cox-Ross-Rubinstein lattice. It is the
// only engine here that captures American early exercise: backward
// induction takes max(continuation, intrinsic) at every node when the
// contract style is American.
type BinomialTree struct {
	contract models.Contract
	cfg      BinomialTreeConfig
}

func NewBinomialTree(c models.Contract, cfg BinomialTreeConfig) (*BinomialTree, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("%w: binomial tree steps must be positive, got %d", models.ErrValidation, cfg.Steps)
	}
	logger.DebugStruct("binomial tree model", cfg)
	return &BinomialTree{contract: c, cfg: cfg}, nil
}

// Price partitions the time to expiry into N equal steps, builds the
// terminal price lattice S u^j d^(N-j), and backward-induces discounted
// risk neutral expectations to the root.
func (m *BinomialTree) Price() (models.PriceResult, error) {
	price, err := m.price(m.contract)
	if err != nil {
		return models.PriceResult{}, err
	}
	return models.PriceResult{Price: price, Model: ModelBinomialTree}, nil
}

func (m *BinomialTree) price(c models.Contract) (float64, error) {
	n := m.cfg.Steps
	dt := c.TimeToExpiry / float64(n)
	u := math.Exp(c.Volatility * math.Sqrt(dt))
	d := 1 / u
	p := (math.Exp((c.Rate-c.DividendYield)*dt) - d) / (u - d)
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("%w: risk neutral probability %v outside [0,1] (steps=%d u=%v d=%v)",
			models.ErrNumericalInstability, p, n, u, d)
	}
	discount := math.Exp(-c.Rate * dt)

	// Terminal payoffs; values[j] holds the node with j up moves.
	values := make([]float64, n+1)
	for j := 0; j <= n; j++ {
		values[j] = c.Payoff(c.Spot * math.Pow(u, float64(j)) * math.Pow(d, float64(n-j)))
	}

	american := c.Style == models.American
	for i := n - 1; i >= 0; i-- {
		// Lowest asset price at this step, walked upward by u^2 per node.
		asset := c.Spot * math.Pow(d, float64(i))
		for j := 0; j <= i; j++ {
			continuation := discount * (p*values[j+1] + (1-p)*values[j])
			if american {
				if intrinsic := c.Payoff(asset); intrinsic > continuation {
					continuation = intrinsic
				}
			}
			values[j] = continuation
			asset *= u * u
		}
	}
	return values[0], nil
}

// Greeks are numerical: the lattice has no closed form derivatives, so each
// sensitivity re-prices the full tree on a bumped contract.
func (m *BinomialTree) Greeks() (models.Greeks, error) {
	return finiteDifferenceGreeks(m.price, m.contract, m.cfg.RelativeBump)
}
