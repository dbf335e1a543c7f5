package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OptionType is the side of an option contract.
type OptionType string

const (
	Call OptionType = "Call"
	Put  OptionType = "Put"
)

// ParseOptionType parses a case-insensitive option type string.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	default:
		return "", fmt.Errorf("option_type must be 'Call' or 'Put', got %q", s)
	}
}

// Contract is the structured form of an option contract. The canonical wire
// representation is the contract notation string, e.g.
// "BRN Jan24 Call Strike 100 USD/BBL" (see Notation).
type Contract struct {
	ExchangeCode    string          `json:"exchange_code"`
	Asset           string          `json:"asset"`
	ExpirationMonth string          `json:"expiration_month"` // Jan..Dec
	ExpirationYear  string          `json:"expiration_year"`  // two digits
	OptionType      OptionType      `json:"option_type"`
	StrikePrice     decimal.Decimal `json:"strike_price"`
	Unit            string          `json:"unit"` // e.g. "USD/BBL"
}

// Notation renders the contract in canonical notation. It is the inverse of
// contract.Parse for any structurally valid Contract.
func (c Contract) Notation() string {
	return fmt.Sprintf("%s %s%s %s Strike %s %s",
		c.Asset, c.ExpirationMonth, c.ExpirationYear, c.OptionType, c.StrikePrice.String(), c.Unit)
}

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// DeliveryMonth returns the first day of the contract's delivery month in UTC.
// Two-digit years map to 20YY.
func (c Contract) DeliveryMonth() (time.Time, error) {
	month, ok := months[c.ExpirationMonth]
	if !ok {
		return time.Time{}, fmt.Errorf("invalid expiration month %q", c.ExpirationMonth)
	}
	year, err := strconv.Atoi(c.ExpirationYear)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiration year %q", c.ExpirationYear)
	}
	return time.Date(2000+year, month, 1, 0, 0, 0, 0, time.UTC), nil
}
