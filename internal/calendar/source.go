// Package calendar provides trading-day data for exchange venue calendars.
//
// The expiry rules in internal/exchange only require one guarantee from a
// Source: given a date range, return the ordered trading days within it. There
// is no retry or fallback beyond the HTTP client's transport retries; when a
// source cannot supply data for a range the lookup fails with UnavailableError.
package calendar

import (
	"context"
	"fmt"
	"time"
)

// Source supplies the ordered trading (business) days for an exchange calendar
// within [start, end], inclusive.
type Source interface {
	TradingDays(ctx context.Context, exchangeCode string, start, end time.Time) ([]time.Time, error)
}

// UnavailableError reports that the calendar source had no data for the
// queried range.
type UnavailableError struct {
	ExchangeCode string
	Start        time.Time
	End          time.Time
	Err          error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("calendar data unavailable for %s between %s and %s",
		e.ExchangeCode, e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

func (e *UnavailableError) Unwrap() error { return e.Err }
