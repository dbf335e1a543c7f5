package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_TradingDays(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		// deliberately out of order; the client must sort ascending
		fmt.Fprint(w, `{"exchange_code":"ICE","trading_days":["2023-11-30","2023-11-28","2023-11-29"]}`)
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL, "test-key", nil)

	start := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)
	days, err := client.TradingDays(context.Background(), "ICE", start, end)
	require.NoError(t, err)

	assert.Equal(t, "/calendars/ICE/trading-days", gotPath)
	assert.Equal(t, "start=2023-11-01&end=2023-11-30", gotQuery)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, days, 3)
	assert.Equal(t, time.Date(2023, 11, 28, 0, 0, 0, 0, time.UTC), days[0])
	assert.Equal(t, time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC), days[2])
}

func TestClient_TradingDays_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL, "", nil)

	_, err := client.TradingDays(context.Background(), "ICE",
		time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "ICE", unavailable.ExchangeCode)
}

func TestClient_TradingDays_MalformedDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"exchange_code":"NYMEX","trading_days":["not-a-date"]}`)
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop(), srv.URL, "", nil)

	_, err := client.TradingDays(context.Background(), "NYMEX",
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
}
