// Package pricing holds the pricing-model schema registry and the Black-76
// valuation function.
package pricing

import (
	"fmt"
	"strings"
)

// ModelBlack76 is the only pricing model currently registered.
const ModelBlack76 = "Black76"

// Schema describes the market-data payload a pricing model requires.
// The field order is the order missing fields are reported in.
type Schema struct {
	Name           string
	RequiredFields []string
}

// Adding a pricing model is a registry entry, not a new type: the pipeline
// discovers supported models from here.
var schemas = []Schema{
	{
		Name: ModelBlack76,
		RequiredFields: []string{
			"forward_price",
			"strike_price",
			"time_to_expiration",
			"volatility",
			"risk_free_interest_rate",
		},
	},
}

var schemaIndex = func() map[string]Schema {
	idx := make(map[string]Schema, len(schemas))
	for _, s := range schemas {
		idx[s.Name] = s
	}
	return idx
}()

// SupportedModels returns the registered pricing model names in registration order.
func SupportedModels() []string {
	names := make([]string, 0, len(schemas))
	for _, s := range schemas {
		names = append(names, s.Name)
	}
	return names
}

// UnsupportedModelError reports a pricing model with no registered schema.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("Unsupported pricing model. Supported models: %s",
		strings.Join(SupportedModels(), ", "))
}

// MissingFieldsError enumerates every required field absent from a payload.
type MissingFieldsError struct {
	Model  string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("Missing required fields for %s model: %s",
		e.Model, strings.Join(e.Fields, ", "))
}

// ValidateMarketData checks that payload carries every field the named pricing
// model requires. Presence-only: types and ranges are not checked here (range
// checks belong to the valuation function). Extra keys are allowed.
func ValidateMarketData(model string, payload map[string]any) error {
	schema, ok := schemaIndex[model]
	if !ok {
		return &UnsupportedModelError{Model: model}
	}

	var missing []string
	for _, field := range schema.RequiredFields {
		if _, ok := payload[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Model: model, Fields: missing}
	}
	return nil
}
