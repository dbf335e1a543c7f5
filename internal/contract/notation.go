// Package contract parses and validates contract notation strings, e.g.
// "BRN Jan24 Call Strike 100 USD/BBL".
package contract

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/commodity-desk/pricer/internal/exchange"
	"github.com/commodity-desk/pricer/pkg/model"
)

// InvalidNotationError reports a string that does not match the notation grammar.
type InvalidNotationError struct {
	Notation string
}

func (e *InvalidNotationError) Error() string {
	return fmt.Sprintf("Invalid contract notation: %s", e.Notation)
}

// The grammar is anchored at both ends: trailing text after a valid prefix is
// rejected. Month abbreviations and Call/Put are case-sensitive.
var notationPattern = regexp.MustCompile(
	`^(?P<asset>\w+)\s+` +
		`(?P<expiration_month>Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)(?P<expiration_year>\d{2})\s+` +
		`(?P<option_type>Call|Put)\s+` +
		`Strike\s+` +
		`(?P<strike_price>\d+(?:\.\d+)?)\s+` +
		`(?P<unit>[\w/]+)$`,
)

// Validate checks a notation string against the grammar.
func Validate(notation string) error {
	if !notationPattern.MatchString(notation) {
		return &InvalidNotationError{Notation: notation}
	}
	return nil
}

// Parse extracts the contract fields from a notation string. The exchange code
// is not part of the notation and is left empty; see FromNotation.
func Parse(notation string) (model.Contract, error) {
	match := notationPattern.FindStringSubmatch(notation)
	if match == nil {
		return model.Contract{}, &InvalidNotationError{Notation: notation}
	}

	groups := make(map[string]string, len(match))
	for i, name := range notationPattern.SubexpNames() {
		if name != "" {
			groups[name] = match[i]
		}
	}

	strike, err := decimal.NewFromString(groups["strike_price"])
	if err != nil {
		return model.Contract{}, &InvalidNotationError{Notation: notation}
	}

	return model.Contract{
		Asset:           groups["asset"],
		ExpirationMonth: groups["expiration_month"],
		ExpirationYear:  groups["expiration_year"],
		OptionType:      model.OptionType(groups["option_type"]),
		StrikePrice:     strike,
		Unit:            groups["unit"],
	}, nil
}

// FromNotation builds a Contract from an exchange code and a notation string.
// The exchange code is validated against the registry before the notation is
// parsed, so an unknown exchange is reported even for unparseable notation.
func FromNotation(exchangeCode, notation string) (model.Contract, error) {
	if _, err := exchange.GetExchange(exchangeCode); err != nil {
		return model.Contract{}, err
	}
	c, err := Parse(notation)
	if err != nil {
		return model.Contract{}, err
	}
	c.ExchangeCode = exchangeCode
	return c, nil
}
