package model

import "time"

// MarketDataRecord is the persisted form of an uploaded market-data entry.
// Contract is stored in notation form and MarketData as canonical JSON text;
// the structured views are rebuilt on read (see internal/marketdata).
type MarketDataRecord struct {
	ID              int64     `json:"id"`
	ExchangeCode    string    `json:"exchange_code"`
	Contract        string    `json:"contract"`
	PricingModel    string    `json:"pricing_model"`
	MarketData      string    `json:"market_data"`
	UploadTimestamp time.Time `json:"upload_timestamp"`
}
