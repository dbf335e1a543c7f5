package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	days  []time.Time
	err   error
	calls int
}

func (s *stubSource) TradingDays(_ context.Context, _ string, _, _ time.Time) ([]time.Time, error) {
	s.calls++
	return s.days, s.err
}

type mapCache struct {
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *mapCache) GetJSON(_ context.Context, key string, dest any) error {
	b, ok := c.data[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(b, dest)
}

func TestCachedSource_MissThenHit(t *testing.T) {
	days := []time.Time{
		time.Date(2023, 11, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC),
	}
	src := &stubSource{days: days}
	cached := NewCachedSource(zap.NewNop(), src, newMapCache(), time.Hour)

	start := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)

	got, err := cached.TradingDays(context.Background(), "ICE", start, end)
	require.NoError(t, err)
	assert.Equal(t, days, got)
	assert.Equal(t, 1, src.calls)

	// Second lookup is served from cache
	got, err = cached.TradingDays(context.Background(), "ICE", start, end)
	require.NoError(t, err)
	assert.Equal(t, days, got)
	assert.Equal(t, 1, src.calls)
}

func TestCachedSource_PropagatesSourceError(t *testing.T) {
	src := &stubSource{err: &UnavailableError{ExchangeCode: "ICE"}}
	cached := NewCachedSource(zap.NewNop(), src, newMapCache(), time.Hour)

	_, err := cached.TradingDays(context.Background(), "ICE",
		time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC))

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
}
