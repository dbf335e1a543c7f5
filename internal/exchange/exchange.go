// Package exchange is the static registry of exchanges and the expiry rules of
// the assets they trade. The registry is populated once at process start and
// never mutated, so unsynchronized concurrent reads are safe.
package exchange

import "fmt"

// UnknownExchangeError reports an exchange code absent from the registry.
type UnknownExchangeError struct {
	Code string
}

func (e *UnknownExchangeError) Error() string {
	return fmt.Sprintf("No exchange found with exchange_code: %s", e.Code)
}

// UnknownAssetError reports an asset code with no registered expiry rule on
// the queried exchange.
type UnknownAssetError struct {
	AssetCode string
}

func (e *UnknownAssetError) Error() string {
	return fmt.Sprintf("No expiry rule found for asset code: %s", e.AssetCode)
}

// Exchange associates an exchange code with the expiry rules of its assets.
type Exchange struct {
	Code  string
	rules map[string]ExpiryRule
}

// ExpiryRule returns the rule for an asset traded on this exchange.
func (e *Exchange) ExpiryRule(assetCode string) (ExpiryRule, error) {
	rule, ok := e.rules[assetCode]
	if !ok {
		return nil, &UnknownAssetError{AssetCode: assetCode}
	}
	return rule, nil
}

var registry = map[string]*Exchange{
	"ICE": {
		Code: "ICE",
		rules: map[string]ExpiryRule{
			// Brent crude: last trading day of the second month before delivery.
			"BRN": lastTradingDayRule{asset: "BRN", monthsBefore: 2, calendarCode: "ICE"},
		},
	},
	"NYMEX": {
		Code: "NYMEX",
		rules: map[string]ExpiryRule{
			// Henry Hub: last trading day of the month before delivery.
			"HH": lastTradingDayRule{asset: "HH", monthsBefore: 1, calendarCode: "NYMEX"},
		},
	},
}

// GetExchange looks up an exchange by its code.
func GetExchange(code string) (*Exchange, error) {
	ex, ok := registry[code]
	if !ok {
		return nil, &UnknownExchangeError{Code: code}
	}
	return ex, nil
}

// GetExpiryRule resolves the expiry rule for an asset on an exchange.
// Exchange lookup failures take precedence over asset lookup failures.
func GetExpiryRule(exchangeCode, assetCode string) (ExpiryRule, error) {
	ex, err := GetExchange(exchangeCode)
	if err != nil {
		return nil, err
	}
	return ex.ExpiryRule(assetCode)
}
