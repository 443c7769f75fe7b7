package common

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument is static reference data for a tradeable fixed-income
// instrument. Live pricing lives in Quote; this struct never changes after
// it is registered.
type Instrument struct {
	ID         string          // Reference id, e.g. "US-GOVT-001"
	Ticker     string          // Display ticker, e.g. "UST-10Y"
	Issuer     string          // Issuing entity
	CouponRate decimal.Decimal // Annual coupon, percent
	FaceValue  decimal.Decimal // Par value per unit
	Maturity   time.Time       // Maturity date
}

// Quote is a point-in-time market snapshot for one instrument. Quotes are
// supplied by an external provider and are read-only to the engine.
type Quote struct {
	Bid       decimal.Decimal // Best bid price
	Ask       decimal.Decimal // Best ask price
	YTM       decimal.Decimal // Yield to maturity, percent
	Timestamp time.Time       // When the snapshot was taken
}

// Mid returns the quote midpoint, used for mark-to-market valuation.
func (q Quote) Mid() decimal.Decimal {
	two := decimal.NewFromInt(2)
	return q.Bid.Add(q.Ask).Div(two)
}
