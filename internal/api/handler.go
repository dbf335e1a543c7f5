package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/commodity-desk/pricer/internal/calendar"
	"github.com/commodity-desk/pricer/internal/contract"
	"github.com/commodity-desk/pricer/internal/exchange"
	"github.com/commodity-desk/pricer/internal/marketdata"
	"github.com/commodity-desk/pricer/internal/pricing"
	"github.com/commodity-desk/pricer/pkg/model"
)

// MarketDataService defines the pipeline operations needed by the handler.
type MarketDataService interface {
	Create(ctx context.Context, in marketdata.CreateInput) (*model.MarketDataRecord, error)
	Get(ctx context.Context, id int64) (*model.MarketDataRecord, error)
	List(ctx context.Context) ([]model.MarketDataRecord, error)
	Expiry(ctx context.Context, id int64) (time.Time, error)
	Price(ctx context.Context, id int64, optionType model.OptionType, strike float64) (float64, error)
}

// MarketDataHandler handles HTTP API requests for market data and pricing.
type MarketDataHandler struct {
	logger  *zap.Logger
	service MarketDataService
}

// NewMarketDataHandler creates a new MarketDataHandler.
func NewMarketDataHandler(logger *zap.Logger, service MarketDataService) *MarketDataHandler {
	return &MarketDataHandler{
		logger:  logger,
		service: service,
	}
}

// statusForError maps pipeline error types to HTTP status codes. Validation
// taxonomy errors map to 422; everything unrecognized is a 500.
func statusForError(err error) int {
	var (
		unknownExchange  *exchange.UnknownExchangeError
		unknownAsset     *exchange.UnknownAssetError
		invalidNotation  *contract.InvalidNotationError
		unsupportedModel *pricing.UnsupportedModelError
		missingFields    *pricing.MissingFieldsError
		invalidInput     *pricing.InvalidInputError
		notFound         *marketdata.NotFoundError
		calUnavailable   *calendar.UnavailableError
	)
	switch {
	case errors.As(err, &unknownExchange),
		errors.As(err, &unknownAsset),
		errors.As(err, &invalidNotation),
		errors.As(err, &unsupportedModel),
		errors.As(err, &missingFields):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &invalidInput):
		return fiber.StatusBadRequest
	case errors.As(err, &calUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *MarketDataHandler) fail(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		h.logger.Error("api.internal_error",
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// CreateMarketDataHandler handles market-data upload requests.
func (h *MarketDataHandler) CreateMarketDataHandler(c *fiber.Ctx) error {
	var req CreateMarketDataRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rec, err := h.service.Create(c.Context(), marketdata.CreateInput{
		ExchangeCode: req.ExchangeCode,
		Contract:     req.Contract,
		PricingModel: req.PricingModel,
		MarketData:   req.MarketData,
	})
	if err != nil {
		return h.fail(c, err)
	}

	snap, err := marketdata.Denormalize(*rec)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(snap)
}

// ListMarketDataHandler returns all stored records as denormalized snapshots.
func (h *MarketDataHandler) ListMarketDataHandler(c *fiber.Ctx) error {
	records, err := h.service.List(c.Context())
	if err != nil {
		return h.fail(c, err)
	}

	snapshots := make([]*marketdata.Snapshot, 0, len(records))
	for _, rec := range records {
		snap, err := marketdata.Denormalize(rec)
		if err != nil {
			return h.fail(c, err)
		}
		snapshots = append(snapshots, snap)
	}
	return c.Status(fiber.StatusOK).JSON(snapshots)
}

// GetMarketDataHandler returns one stored record as a denormalized snapshot.
func (h *MarketDataHandler) GetMarketDataHandler(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	rec, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := marketdata.Denormalize(*rec)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(snap)
}

// ExpiryHandler computes the expiry date for a stored record.
func (h *MarketDataHandler) ExpiryHandler(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	expiry, err := h.service.Expiry(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"expiry_date": expiry.Format("2006-01-02"),
	})
}

// PriceHandler values a stored record with the caller's option type and strike.
func (h *MarketDataHandler) PriceHandler(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var req OptionPricingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	optionType, err := req.Validate()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pv, err := h.service.Price(c.Context(), id, optionType, *req.Strike)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"pv": pv})
}
