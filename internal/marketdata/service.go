// Package marketdata composes the exchange registry, the notation parser and
// the pricing-model schema registry into the upload/read pipeline.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/commodity-desk/pricer/internal/calendar"
	"github.com/commodity-desk/pricer/internal/contract"
	"github.com/commodity-desk/pricer/internal/exchange"
	"github.com/commodity-desk/pricer/internal/metrics"
	"github.com/commodity-desk/pricer/internal/pricing"
	"github.com/commodity-desk/pricer/internal/store"
	"github.com/commodity-desk/pricer/pkg/model"
)

// NotFoundError reports a read for an id with no stored record.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string { return "Option market data not found." }

// CreateInput is an inbound market-data upload.
type CreateInput struct {
	ExchangeCode string
	Contract     string // contract notation
	PricingModel string
	MarketData   map[string]any
}

// Snapshot is the denormalized read view of a stored record: the contract and
// market data are structured again instead of canonical text.
type Snapshot struct {
	ID              int64          `json:"id"`
	ExchangeCode    string         `json:"exchange_code"`
	Contract        model.Contract `json:"contract"`
	PricingModel    string         `json:"pricing_model"`
	MarketData      map[string]any `json:"market_data"`
	UploadTimestamp time.Time      `json:"upload_timestamp"`
}

// EventPublisher emits events for stored records. Publishing is best effort.
type EventPublisher interface {
	PublishMarketDataUploaded(ctx context.Context, rec model.MarketDataRecord) error
}

// Service is the market-data pipeline.
type Service struct {
	logger *zap.Logger
	store  store.Store
	cal    calendar.Source
	pub    EventPublisher // nil disables event publishing
}

// NewService creates the pipeline service. pub may be nil.
func NewService(logger *zap.Logger, st store.Store, cal calendar.Source, pub EventPublisher) *Service {
	return &Service{
		logger: logger,
		store:  st,
		cal:    cal,
		pub:    pub,
	}
}

// Normalize encodes a validated payload into its canonical stored JSON text.
// Extra keys are preserved.
func Normalize(payload map[string]any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("normalize market data: %w", err)
	}
	return string(data), nil
}

// Denormalize rebuilds the structured views of a stored record: the Contract
// from its notation and the market-data mapping from its canonical JSON text.
func Denormalize(rec model.MarketDataRecord) (*Snapshot, error) {
	c, err := contract.FromNotation(rec.ExchangeCode, rec.Contract)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(rec.MarketData), &payload); err != nil {
		return nil, fmt.Errorf("denormalize market data for record %d: %w", rec.ID, err)
	}

	return &Snapshot{
		ID:              rec.ID,
		ExchangeCode:    rec.ExchangeCode,
		Contract:        c,
		PricingModel:    rec.PricingModel,
		MarketData:      payload,
		UploadTimestamp: rec.UploadTimestamp,
	}, nil
}

// Create validates and stores a market-data upload.
//
// The contract notation is checked for grammar only; whether the parsed asset
// is actually traded on the named exchange is not cross-checked here. Callers
// that need that guarantee must go through contract.FromNotation.
//
// An existing record for the same (exchange_code, contract) pair is replaced,
// not versioned. The delete and insert are two separate store calls, so a
// concurrent reader may briefly observe neither row.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.MarketDataRecord, error) {
	if _, err := exchange.GetExchange(in.ExchangeCode); err != nil {
		metrics.IncUpload("invalid")
		return nil, err
	}
	if err := contract.Validate(in.Contract); err != nil {
		metrics.IncUpload("invalid")
		return nil, err
	}
	if err := pricing.ValidateMarketData(in.PricingModel, in.MarketData); err != nil {
		metrics.IncUpload("invalid")
		return nil, err
	}

	normalized, err := Normalize(in.MarketData)
	if err != nil {
		metrics.IncUpload("error")
		return nil, err
	}

	rec := model.MarketDataRecord{
		ExchangeCode:    in.ExchangeCode,
		Contract:        in.Contract,
		PricingModel:    in.PricingModel,
		MarketData:      normalized,
		UploadTimestamp: time.Now().UTC(),
	}

	if err := s.store.DeleteMarketDataWhere(ctx, in.ExchangeCode, in.Contract); err != nil {
		metrics.IncUpload("error")
		return nil, fmt.Errorf("replace existing market data: %w", err)
	}
	id, err := s.store.InsertMarketData(ctx, rec)
	if err != nil {
		metrics.IncUpload("error")
		return nil, fmt.Errorf("insert market data: %w", err)
	}
	rec.ID = id
	metrics.IncUpload("ok")

	s.logger.Info("marketdata.created",
		zap.Int64("id", rec.ID),
		zap.String("exchange_code", rec.ExchangeCode),
		zap.String("contract", rec.Contract))

	if s.pub != nil {
		if err := s.pub.PublishMarketDataUploaded(ctx, rec); err != nil {
			s.logger.Warn("marketdata.publish_failed",
				zap.Int64("id", rec.ID),
				zap.Error(err))
		}
	}
	return &rec, nil
}

// Get returns the stored record with the given id.
func (s *Service) Get(ctx context.Context, id int64) (*model.MarketDataRecord, error) {
	rec, err := s.store.GetMarketData(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &NotFoundError{ID: id}
	}
	return rec, nil
}

// List returns all stored records in id order.
func (s *Service) List(ctx context.Context) ([]model.MarketDataRecord, error) {
	return s.store.ListMarketData(ctx)
}

// Expiry computes the option expiry date for a stored record from its
// contract's delivery month and the exchange's expiry rule.
func (s *Service) Expiry(ctx context.Context, id int64) (time.Time, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	snap, err := Denormalize(*rec)
	if err != nil {
		return time.Time{}, err
	}

	rule, err := exchange.GetExpiryRule(rec.ExchangeCode, snap.Contract.Asset)
	if err != nil {
		return time.Time{}, err
	}
	delivery, err := snap.Contract.DeliveryMonth()
	if err != nil {
		return time.Time{}, err
	}
	return rule.CalculateExpiry(ctx, s.cal, delivery)
}

// Price values a stored record with the caller's option type and strike using
// the record's Black-76 market data.
func (s *Service) Price(ctx context.Context, id int64, optionType model.OptionType, strike float64) (float64, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		metrics.IncPricing("not_found")
		return 0, err
	}
	snap, err := Denormalize(*rec)
	if err != nil {
		metrics.IncPricing("error")
		return 0, err
	}

	f, err := floatField(snap.MarketData, "forward_price")
	if err != nil {
		metrics.IncPricing("invalid")
		return 0, err
	}
	r, err := floatField(snap.MarketData, "risk_free_interest_rate")
	if err != nil {
		metrics.IncPricing("invalid")
		return 0, err
	}
	sigma, err := floatField(snap.MarketData, "volatility")
	if err != nil {
		metrics.IncPricing("invalid")
		return 0, err
	}
	ttm, err := floatField(snap.MarketData, "time_to_expiration")
	if err != nil {
		metrics.IncPricing("invalid")
		return 0, err
	}

	pv, err := pricing.Black76(optionType, f, strike, r, sigma, ttm)
	if err != nil {
		metrics.IncPricing("invalid")
		return 0, err
	}
	metrics.IncPricing("ok")
	return pv, nil
}

func floatField(payload map[string]any, name string) (float64, error) {
	v, ok := payload[name]
	if !ok {
		return 0, &pricing.InvalidInputError{Reason: fmt.Sprintf("Market data field %q is missing.", name)}
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &pricing.InvalidInputError{Reason: fmt.Sprintf("Market data field %q is not numeric.", name)}
	}
	return f, nil
}
