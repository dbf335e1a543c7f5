package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/commodity-desk/pricer/internal/calendar"
	"github.com/commodity-desk/pricer/internal/exchange"
	"github.com/commodity-desk/pricer/internal/marketdata"
	"github.com/commodity-desk/pricer/internal/pricing"
	"github.com/commodity-desk/pricer/pkg/model"
)

// --- Mock Service ---

type mockService struct {
	createFn func(ctx context.Context, in marketdata.CreateInput) (*model.MarketDataRecord, error)
	getFn    func(ctx context.Context, id int64) (*model.MarketDataRecord, error)
	listFn   func(ctx context.Context) ([]model.MarketDataRecord, error)
	expiryFn func(ctx context.Context, id int64) (time.Time, error)
	priceFn  func(ctx context.Context, id int64, optionType model.OptionType, strike float64) (float64, error)
}

func (m *mockService) Create(ctx context.Context, in marketdata.CreateInput) (*model.MarketDataRecord, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockService) Get(ctx context.Context, id int64) (*model.MarketDataRecord, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockService) List(ctx context.Context) ([]model.MarketDataRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockService) Expiry(ctx context.Context, id int64) (time.Time, error) {
	if m.expiryFn != nil {
		return m.expiryFn(ctx, id)
	}
	return time.Time{}, fmt.Errorf("not implemented")
}

func (m *mockService) Price(ctx context.Context, id int64, optionType model.OptionType, strike float64) (float64, error) {
	if m.priceFn != nil {
		return m.priceFn(ctx, id, optionType, strike)
	}
	return 0, fmt.Errorf("not implemented")
}

// --- Test Helpers ---

func newTestApp(svc MarketDataService) *fiber.App {
	app := fiber.New()
	handler := NewMarketDataHandler(zap.NewNop(), svc)
	app.Post("/market_data", handler.CreateMarketDataHandler)
	app.Get("/market_data", handler.ListMarketDataHandler)
	app.Get("/market_data/:id", handler.GetMarketDataHandler)
	app.Get("/market_data/:id/expiry", handler.ExpiryHandler)
	app.Post("/option_pricing/:id", handler.PriceHandler)
	return app
}

func storedRecord(id int64) model.MarketDataRecord {
	return model.MarketDataRecord{
		ID:           id,
		ExchangeCode: "ICE",
		Contract:     "BRN Jan24 Call Strike 100 USD/BBL",
		PricingModel: "Black76",
		MarketData: `{"forward_price":95,"strike_price":100,` +
			`"time_to_expiration":0.5,"volatility":0.25,"risk_free_interest_rate":0.03}`,
		UploadTimestamp: time.Date(2023, 11, 1, 10, 0, 0, 0, time.UTC),
	}
}

func jsonRequest(method, path, body string) *http.Request {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- Create ---

func TestCreateMarketDataHandler_Success(t *testing.T) {
	svc := &mockService{
		createFn: func(_ context.Context, in marketdata.CreateInput) (*model.MarketDataRecord, error) {
			assert.Equal(t, "ICE", in.ExchangeCode)
			assert.Equal(t, "Black76", in.PricingModel)
			rec := storedRecord(1)
			return &rec, nil
		},
	}
	app := newTestApp(svc)

	body := `{
		"exchange_code": "ICE",
		"contract": "BRN Jan24 Call Strike 100 USD/BBL",
		"pricing_model": "Black76",
		"market_data": {
			"forward_price": 95,
			"strike_price": 100,
			"time_to_expiration": 0.5,
			"volatility": 0.25,
			"risk_free_interest_rate": 0.03
		}
	}`

	resp, err := app.Test(jsonRequest(http.MethodPost, "/market_data", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result marketdata.Snapshot
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, int64(1), result.ID)
	assert.Equal(t, "BRN", result.Contract.Asset)
	assert.Equal(t, model.Call, result.Contract.OptionType)
	assert.Equal(t, 95.0, result.MarketData["forward_price"])
}

func TestCreateMarketDataHandler_InvalidJSON(t *testing.T) {
	app := newTestApp(&mockService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/market_data", "{invalid"), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateMarketDataHandler_MissingField(t *testing.T) {
	app := newTestApp(&mockService{})

	body := `{"exchange_code": "ICE", "contract": "BRN Jan24 Call Strike 100 USD/BBL"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/market_data", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Contains(t, result["error"], "pricing_model is required")
}

func TestCreateMarketDataHandler_UnknownExchange(t *testing.T) {
	svc := &mockService{
		createFn: func(_ context.Context, _ marketdata.CreateInput) (*model.MarketDataRecord, error) {
			return nil, &exchange.UnknownExchangeError{Code: "LME"}
		},
	}
	app := newTestApp(svc)

	body := `{
		"exchange_code": "LME",
		"contract": "BRN Jan24 Call Strike 100 USD/BBL",
		"pricing_model": "Black76",
		"market_data": {"forward_price": 95}
	}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/market_data", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var result map[string]string
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "No exchange found with exchange_code: LME", result["error"])
}

func TestCreateMarketDataHandler_UnsupportedModel(t *testing.T) {
	svc := &mockService{
		createFn: func(_ context.Context, _ marketdata.CreateInput) (*model.MarketDataRecord, error) {
			return nil, &pricing.UnsupportedModelError{Model: "Heston"}
		},
	}
	app := newTestApp(svc)

	body := `{
		"exchange_code": "ICE",
		"contract": "BRN Jan24 Call Strike 100 USD/BBL",
		"pricing_model": "Heston",
		"market_data": {"forward_price": 95}
	}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/market_data", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

// --- Read ---

func TestGetMarketDataHandler_Success(t *testing.T) {
	svc := &mockService{
		getFn: func(_ context.Context, id int64) (*model.MarketDataRecord, error) {
			assert.Equal(t, int64(7), id)
			rec := storedRecord(7)
			return &rec, nil
		},
	}
	app := newTestApp(svc)

	req, _ := http.NewRequest(http.MethodGet, "/market_data/7", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result marketdata.Snapshot
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, int64(7), result.ID)
	assert.Equal(t, "USD/BBL", result.Contract.Unit)
}

func TestGetMarketDataHandler_NotFound(t *testing.T) {
	svc := &mockService{
		getFn: func(_ context.Context, id int64) (*model.MarketDataRecord, error) {
			return nil, &marketdata.NotFoundError{ID: id}
		},
	}
	app := newTestApp(svc)

	req, _ := http.NewRequest(http.MethodGet, "/market_data/42", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var result map[string]string
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "Option market data not found.", result["error"])
}

func TestGetMarketDataHandler_InvalidID(t *testing.T) {
	app := newTestApp(&mockService{})

	req, _ := http.NewRequest(http.MethodGet, "/market_data/abc", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListMarketDataHandler(t *testing.T) {
	svc := &mockService{
		listFn: func(_ context.Context) ([]model.MarketDataRecord, error) {
			return []model.MarketDataRecord{storedRecord(1), storedRecord(2)}, nil
		},
	}
	app := newTestApp(svc)

	req, _ := http.NewRequest(http.MethodGet, "/market_data", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result []marketdata.Snapshot
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	require.Len(t, result, 2)
	assert.Equal(t, int64(2), result[1].ID)
}

func TestListMarketDataHandler_Empty(t *testing.T) {
	svc := &mockService{
		listFn: func(_ context.Context) ([]model.MarketDataRecord, error) {
			return nil, nil
		},
	}
	app := newTestApp(svc)

	req, _ := http.NewRequest(http.MethodGet, "/market_data", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	respBody, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", strings.TrimSpace(string(respBody)))
}

// --- Expiry ---

func TestExpiryHandler_Success(t *testing.T) {
	svc := &mockService{
		expiryFn: func(_ context.Context, id int64) (time.Time, error) {
			return time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC), nil
		},
	}
	app := newTestApp(svc)

	req, _ := http.NewRequest(http.MethodGet, "/market_data/1/expiry", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]string
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "2023-11-30", result["expiry_date"])
}

func TestExpiryHandler_CalendarUnavailable(t *testing.T) {
	svc := &mockService{
		expiryFn: func(_ context.Context, id int64) (time.Time, error) {
			return time.Time{}, &calendar.UnavailableError{
				ExchangeCode: "ICE",
				Err:          fmt.Errorf("connection refused"),
			}
		},
	}
	app := newTestApp(svc)

	req, _ := http.NewRequest(http.MethodGet, "/market_data/1/expiry", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestExpiryHandler_UnknownAsset(t *testing.T) {
	svc := &mockService{
		expiryFn: func(_ context.Context, id int64) (time.Time, error) {
			return time.Time{}, &exchange.UnknownAssetError{AssetCode: "WTI"}
		},
	}
	app := newTestApp(svc)

	req, _ := http.NewRequest(http.MethodGet, "/market_data/1/expiry", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var result map[string]string
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "No expiry rule found for asset code: WTI", result["error"])
}

// --- Price ---

func TestPriceHandler_Success(t *testing.T) {
	svc := &mockService{
		priceFn: func(_ context.Context, id int64, optionType model.OptionType, strike float64) (float64, error) {
			assert.Equal(t, int64(3), id)
			assert.Equal(t, model.Call, optionType)
			assert.Equal(t, 100.0, strike)
			return 4.584080339779133, nil
		},
	}
	app := newTestApp(svc)

	body := `{"option_type": "Call", "K": 100}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/option_pricing/3", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]float64
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.InDelta(t, 4.584080339779133, result["pv"], 1e-12)
}

func TestPriceHandler_LowercaseOptionType(t *testing.T) {
	svc := &mockService{
		priceFn: func(_ context.Context, _ int64, optionType model.OptionType, _ float64) (float64, error) {
			assert.Equal(t, model.Put, optionType)
			return 1.0, nil
		},
	}
	app := newTestApp(svc)

	body := `{"option_type": "put", "K": 50}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/option_pricing/1", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPriceHandler_MissingStrike(t *testing.T) {
	app := newTestApp(&mockService{})

	body := `{"option_type": "Call"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/option_pricing/1", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Contains(t, result["error"], "K is required")
}

func TestPriceHandler_InvalidOptionType(t *testing.T) {
	app := newTestApp(&mockService{})

	body := `{"option_type": "Straddle", "K": 100}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/option_pricing/1", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPriceHandler_NegativeStrike(t *testing.T) {
	svc := &mockService{
		priceFn: func(_ context.Context, _ int64, _ model.OptionType, _ float64) (float64, error) {
			return 0, &pricing.InvalidInputError{Reason: "Strike price (K) must be non-negative."}
		},
	}
	app := newTestApp(svc)

	body := `{"option_type": "Call", "K": -5}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/option_pricing/1", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	respBody, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "Strike price (K) must be non-negative.", result["error"])
}

func TestPriceHandler_NotFound(t *testing.T) {
	svc := &mockService{
		priceFn: func(_ context.Context, id int64, _ model.OptionType, _ float64) (float64, error) {
			return 0, &marketdata.NotFoundError{ID: id}
		},
	}
	app := newTestApp(svc)

	body := `{"option_type": "Call", "K": 100}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/option_pricing/999", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
