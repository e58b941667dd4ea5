package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/tantralabs/optionpricing/models"
)

// Running the finite difference scheme over the closed form price isolates
// the scheme itself: against a smooth function the central differences
// should land on the analytic Greeks to within discretization error.
func TestFiniteDifferenceAgainstClosedForm(t *testing.T) {
	for _, typ := range []models.OptionType{models.Call, models.Put} {
		c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, typ, models.European)
		analytic, _ := NewBlackScholes(c).Greeks()

		reprice := func(c models.Contract) (float64, error) {
			res, err := NewBlackScholes(c).Price()
			return res.Price, err
		}
		g, err := finiteDifferenceGreeks(reprice, c, DefaultRelativeBump)
		if err != nil {
			t.Fatalf("fd greeks: %v", err)
		}

		checkClose(t, "delta", g.Delta, analytic.Delta, 1e-3)
		checkClose(t, "gamma", g.Gamma, analytic.Gamma, 1e-3)
		checkClose(t, "theta", g.Theta, analytic.Theta, 1e-3)
		checkClose(t, "vega", g.Vega, analytic.Vega, 1e-3)
		checkClose(t, "rho", g.Rho, analytic.Rho, 1e-3)
	}
}

// A volatility at or below the standard 0.01 bump must not produce a
// non-positive down-bumped copy: the bump shrinks instead, and the central
// difference still lands on the analytic vega. The strike sits at the
// forward so the low-vol contract keeps a material vega.
func TestFiniteDifferenceVegaSmallVolatility(t *testing.T) {
	c := mustContract(t, 100, 100*math.Exp(0.05), 1, 0.005, 0.05, 0, models.Call, models.European)
	analytic, _ := NewBlackScholes(c).Greeks()

	var seen []models.Contract
	reprice := func(c models.Contract) (float64, error) {
		seen = append(seen, c)
		res, err := NewBlackScholes(c).Price()
		return res.Price, err
	}
	g, err := finiteDifferenceGreeks(reprice, c, DefaultRelativeBump)
	if err != nil {
		t.Fatalf("fd greeks: %v", err)
	}

	for _, s := range seen {
		if s.Volatility <= 0 {
			t.Errorf("repriced a contract with non-positive volatility %v", s.Volatility)
		}
	}
	checkClose(t, "vega", g.Vega, analytic.Vega, 1e-2)
	if g.Vega < 0.3 {
		t.Errorf("vega %v collapsed; analytic is %v", g.Vega, analytic.Vega)
	}
}

func TestFiniteDifferenceThetaInsideFinalDay(t *testing.T) {
	c := mustContract(t, 100, 90, 0.5/365, 0.2, 0.05, 0, models.Call, models.European)
	reprice := func(c models.Contract) (float64, error) {
		res, err := NewBlackScholes(c).Price()
		return res.Price, err
	}
	base, _ := reprice(c)
	g, err := finiteDifferenceGreeks(reprice, c, DefaultRelativeBump)
	if err != nil {
		t.Fatalf("fd greeks: %v", err)
	}
	// Inside the final day the whole remaining value decays.
	if g.Theta != -base {
		t.Errorf("final-day theta: got %v, want %v", g.Theta, -base)
	}
}

func TestFiniteDifferencePropagatesErrors(t *testing.T) {
	c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, models.Call, models.European)
	boom := errors.New("boom")
	reprice := func(models.Contract) (float64, error) { return 0, boom }
	_, err := finiteDifferenceGreeks(reprice, c, DefaultRelativeBump)
	if !errors.Is(err, boom) {
		t.Errorf("reprice failure should propagate, got %v", err)
	}
}

func TestFiniteDifferenceZeroBumpUsesDefault(t *testing.T) {
	c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, models.Call, models.European)
	reprice := func(c models.Contract) (float64, error) {
		res, err := NewBlackScholes(c).Price()
		return res.Price, err
	}
	withDefault, err := finiteDifferenceGreeks(reprice, c, 0)
	if err != nil {
		t.Fatalf("fd greeks: %v", err)
	}
	explicit, err := finiteDifferenceGreeks(reprice, c, DefaultRelativeBump)
	if err != nil {
		t.Fatalf("fd greeks: %v", err)
	}
	if withDefault != explicit {
		t.Errorf("zero bump should use the default: %+v vs %+v", withDefault, explicit)
	}
}
