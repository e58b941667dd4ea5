package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/tantralabs/optionpricing/models"
)

func TestMonteCarloRejectsAmerican(t *testing.T) {
	c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, models.Put, models.American)
	_, err := NewMonteCarlo(c, DefaultMonteCarloConfig())
	if !errors.Is(err, models.ErrUnsupportedFeature) {
		t.Errorf("American exercise should wrap ErrUnsupportedFeature, got %v", err)
	}
}

func TestMonteCarloConfigValidation(t *testing.T) {
	c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, models.Call, models.European)
	_, err := NewMonteCarlo(c, MonteCarloConfig{Paths: 0})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("zero paths should wrap ErrValidation, got %v", err)
	}
}

func TestMonteCarloDeterminism(t *testing.T) {
	c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, models.Call, models.European)
	cfg := MonteCarloConfig{Paths: 5000, Seed: 7}

	m1, _ := NewMonteCarlo(c, cfg)
	m2, _ := NewMonteCarlo(c, cfg)
	p1, _ := m1.Price()
	p2, _ := m2.Price()
	if p1.Price != p2.Price {
		t.Errorf("same seed must be bit identical: %v vs %v", p1.Price, p2.Price)
	}
	// Repeated calls on one instance reproduce as well.
	p3, _ := m1.Price()
	if p1.Price != p3.Price {
		t.Errorf("repeated call must be bit identical: %v vs %v", p1.Price, p3.Price)
	}

	other, _ := NewMonteCarlo(c, MonteCarloConfig{Paths: 5000, Seed: 8})
	po, _ := other.Price()
	if po.Price == p1.Price {
		t.Error("different seeds should not collide exactly")
	}
}

func TestMonteCarloMatchesBlackScholes(t *testing.T) {
	for _, typ := range []models.OptionType{models.Call, models.Put} {
		c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, typ, models.European)
		bs, _ := NewBlackScholes(c).Price()

		m, err := NewMonteCarlo(c, MonteCarloConfig{Paths: 100000, Seed: 42})
		if err != nil {
			t.Fatalf("model: %v", err)
		}
		price, stderr, err := m.PriceDetail()
		if err != nil {
			t.Fatalf("price: %v", err)
		}
		if stderr <= 0 {
			t.Fatalf("standard error must be positive, got %v", stderr)
		}
		if diff := math.Abs(price - bs.Price); diff > 4*stderr {
			t.Errorf("%v monte carlo %v vs black-scholes %v: off by %v (> 4 stderr %v)",
				typ, price, bs.Price, diff, 4*stderr)
		}
	}
}

func TestMonteCarloStandardErrorShrinks(t *testing.T) {
	c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, models.Call, models.European)

	small, _ := NewMonteCarlo(c, MonteCarloConfig{Paths: 2000, Seed: 42})
	large, _ := NewMonteCarlo(c, MonteCarloConfig{Paths: 200000, Seed: 42})
	_, seSmall, _ := small.PriceDetail()
	_, seLarge, _ := large.PriceDetail()

	if seLarge >= seSmall {
		t.Errorf("standard error should shrink with paths: %v (200k) >= %v (2k)", seLarge, seSmall)
	}
	// 100x the paths should cut the error by roughly 10x.
	if ratio := seSmall / seLarge; ratio < 5 || ratio > 20 {
		t.Errorf("standard error ratio %v far from sqrt scaling", ratio)
	}
}

func TestMonteCarloGreeks(t *testing.T) {
	c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, models.Call, models.European)
	analytic, _ := NewBlackScholes(c).Greeks()

	m, _ := NewMonteCarlo(c, MonteCarloConfig{Paths: 50000, Seed: 42})
	g, err := m.Greeks()
	if err != nil {
		t.Fatalf("greeks: %v", err)
	}

	// Common random numbers across the bumped evaluations keep the finite
	// differences tight even at modest path counts.
	checkClose(t, "delta", g.Delta, analytic.Delta, 2e-2)
	checkClose(t, "vega", g.Vega, analytic.Vega, 5e-2)
	if g.Gamma <= 0 || g.Gamma > 0.1 {
		t.Errorf("gamma out of plausible range: %v", g.Gamma)
	}
	if g.Theta >= 0 {
		t.Errorf("long ATM call theta must be negative, got %v", g.Theta)
	}

	// Greeks are as deterministic as prices.
	again, _ := m.Greeks()
	if g != again {
		t.Errorf("greeks not reproducible: %+v vs %+v", g, again)
	}
}

func TestMonteCarloModelIdentifier(t *testing.T) {
	c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, models.Call, models.European)
	m, _ := NewMonteCarlo(c, DefaultMonteCarloConfig())
	res, err := m.Price()
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if res.Model != ModelMonteCarlo {
		t.Errorf("model identifier: got %q, want %q", res.Model, ModelMonteCarlo)
	}
}

func TestMonteCarloZeroSeedUsesDefault(t *testing.T) {
	c := mustContract(t, 100, 100, 1, 0.2, 0.05, 0, models.Call, models.European)
	zero, _ := NewMonteCarlo(c, MonteCarloConfig{Paths: 1000})
	explicit, _ := NewMonteCarlo(c, MonteCarloConfig{Paths: 1000, Seed: DefaultMonteCarloSeed})
	pz, _ := zero.Price()
	pe, _ := explicit.Price()
	if pz.Price != pe.Price {
		t.Errorf("zero seed should select the default seed: %v vs %v", pz.Price, pe.Price)
	}
}
