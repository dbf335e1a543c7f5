package api

import (
	"fmt"

	"github.com/commodity-desk/pricer/pkg/model"
)

// CreateMarketDataRequest is the payload to upload option market data.
type CreateMarketDataRequest struct {
	ExchangeCode string         `json:"exchange_code" example:"ICE"`
	Contract     string         `json:"contract" example:"BRN Jan24 Call Strike 100 USD/BBL"`
	PricingModel string         `json:"pricing_model" example:"Black76"`
	MarketData   map[string]any `json:"market_data"`
}

// Validate checks required request fields. Domain validation (exchange codes,
// notation grammar, model schemas) happens in the service.
func (r *CreateMarketDataRequest) Validate() error {
	if r.ExchangeCode == "" {
		return fmt.Errorf("exchange_code is required")
	}
	if r.Contract == "" {
		return fmt.Errorf("contract is required")
	}
	if r.PricingModel == "" {
		return fmt.Errorf("pricing_model is required")
	}
	if r.MarketData == nil {
		return fmt.Errorf("market_data is required")
	}
	return nil
}

// OptionPricingRequest is the payload to price a stored record. The strike is
// a pointer so a missing K is distinguishable from K=0.
type OptionPricingRequest struct {
	OptionType string   `json:"option_type" example:"Call"`
	Strike     *float64 `json:"K" example:"100"`
}

func (r *OptionPricingRequest) Validate() (model.OptionType, error) {
	optionType, err := model.ParseOptionType(r.OptionType)
	if err != nil {
		return "", err
	}
	if r.Strike == nil {
		return "", fmt.Errorf("K is required")
	}
	return optionType, nil
}
