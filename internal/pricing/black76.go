package pricing

import (
	"math"

	"github.com/commodity-desk/pricer/pkg/model"
)

// InvalidInputError reports a valuation precondition violation. The message is
// part of the API contract.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

// Black76 computes the present value of an option on a future.
//
//	f     forward price of the underlying
//	k     option strike price
//	r     risk-free interest rate
//	sigma volatility of the underlying
//	t     time to maturity in years
//
// Inputs are checked for non-negativity in the order f, k, r, sigma, t.
// t=0 and sigma=0 are not guarded: the division by zero in d1 propagates as
// NaN/Inf per IEEE 754.
func Black76(optionType model.OptionType, f, k, r, sigma, t float64) (float64, error) {
	if f < 0 {
		return 0, &InvalidInputError{Reason: "Forward price (F) must be non-negative."}
	}
	if k < 0 {
		return 0, &InvalidInputError{Reason: "Strike price (K) must be non-negative."}
	}
	if r < 0 {
		return 0, &InvalidInputError{Reason: "Risk-free interest rate (r) must be non-negative."}
	}
	if sigma < 0 {
		return 0, &InvalidInputError{Reason: "Volatility (sigma) must be non-negative."}
	}
	if t < 0 {
		return 0, &InvalidInputError{Reason: "Time to maturity (T) must be non-negative."}
	}

	sigmaSqrtT := sigma * math.Sqrt(t)
	d1 := (math.Log(f/k) + 0.5*sigma*sigma*t) / sigmaSqrtT
	d2 := d1 - sigmaSqrtT
	discount := math.Exp(-r * t)

	if optionType == model.Put {
		return discount * (k*normCDF(-d2) - f*normCDF(-d1)), nil
	}
	return discount * (f*normCDF(d1) - k*normCDF(d2)), nil
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
