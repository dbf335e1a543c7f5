package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/commodity-desk/pricer/internal/calendar"
)

// ExpiryRule computes an option's expiry date from its delivery month.
// Rules are stateless; given the same calendar data and delivery month the
// result is stable.
type ExpiryRule interface {
	AssetCode() string
	CalculateExpiry(ctx context.Context, src calendar.Source, deliveryMonth time.Time) (time.Time, error)
}

// lastTradingDayRule expires on the last trading day of the month that is
// monthsBefore months ahead of the delivery month, per the named venue
// calendar. Covers BRN (ICE, 2 months) and HH (NYMEX, 1 month); further assets
// are added as registry entries, not new types.
type lastTradingDayRule struct {
	asset        string
	monthsBefore int
	calendarCode string
}

func (r lastTradingDayRule) AssetCode() string { return r.asset }

func (r lastTradingDayRule) CalculateExpiry(ctx context.Context, src calendar.Source, deliveryMonth time.Time) (time.Time, error) {
	monthStart := time.Date(deliveryMonth.Year(), deliveryMonth.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -r.monthsBefore, 0)
	monthEnd := monthStart.AddDate(0, 1, -1)

	days, err := src.TradingDays(ctx, r.calendarCode, monthStart, monthEnd)
	if err != nil {
		var unavailable *calendar.UnavailableError
		if errors.As(err, &unavailable) {
			return time.Time{}, err
		}
		return time.Time{}, &calendar.UnavailableError{
			ExchangeCode: r.calendarCode, Start: monthStart, End: monthEnd, Err: err,
		}
	}
	if len(days) == 0 {
		return time.Time{}, &calendar.UnavailableError{
			ExchangeCode: r.calendarCode, Start: monthStart, End: monthEnd,
		}
	}
	return days[len(days)-1], nil
}
