package common

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLot is a discrete quantity of an instrument acquired at one price
// and time. Lots are created by buy fills and consumed, wholly or partly,
// by later sells. A lot belongs to exactly one position.
type PurchaseLot struct {
	ID         string
	Seq        uint64          // Acquisition order within the position
	Quantity   decimal.Decimal // Originally acquired volume
	Remaining  decimal.Decimal // Volume not yet disposed of
	Price      decimal.Decimal // Acquisition price
	AcquiredAt time.Time
}

// Position is a read-time snapshot of one instrument's holding. The average
// price and the valuation fields are derived from the open lots and the
// live quote on every read; nothing here is cached between reads.
type Position struct {
	InstrumentID  string
	Quantity      decimal.Decimal // Sum of lot remainders
	AveragePrice  decimal.Decimal // Cost basis of the open lots
	CurrentPrice  decimal.Decimal // Quote midpoint at snapshot time
	MarketValue   decimal.Decimal // Quantity * CurrentPrice
	UnrealizedPnL decimal.Decimal // Quantity * (CurrentPrice - AveragePrice)
	RealizedPnL   decimal.Decimal // Accumulated over completed disposals
	TotalPnL      decimal.Decimal // Unrealized + realized
	Lots          []PurchaseLot   // Open lots, acquisition order
}
