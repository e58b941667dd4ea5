package vol

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/tantralabs/optionpricing/models"
)

// TradingDaysPerYear annualizes daily return volatility.
const TradingDaysPerYear = 252

// Realized estimates annualized volatility from a daily price series using
// the sample standard deviation of log returns over the trailing window.
// The caller supplies the prices; this package never fetches data.
func Realized(prices []float64, window int) (float64, error) {
	if window < 2 {
		return 0, fmt.Errorf("%w: realized volatility window must be at least 2, got %d", models.ErrValidation, window)
	}
	if len(prices) < window+1 {
		return 0, fmt.Errorf("%w: need at least %d prices for a window of %d, got %d",
			models.ErrValidation, window+1, window, len(prices))
	}

	recent := prices[len(prices)-window-1:]
	returns := make([]float64, window)
	for i := range returns {
		if !(recent[i] > 0) || !(recent[i+1] > 0) {
			return 0, fmt.Errorf("%w: prices must be positive to take log returns", models.ErrValidation)
		}
		returns[i] = math.Log(recent[i+1] / recent[i])
	}
	return stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear), nil
}
