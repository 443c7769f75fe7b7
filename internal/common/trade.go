package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade records one completed execution. Trades are immutable and
// append-only; exactly one exists per executed order.
type Trade struct {
	ID           string
	OrderID      string
	InstrumentID string
	Side         Side
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	Value        decimal.Decimal // Quantity * Price at execution
	Timestamp    time.Time
}

func (t Trade) String() string {
	return fmt.Sprintf(
		`ID:         %s
Order:      %s
Instrument: %s
Side:       %v
Quantity:   %v
Price:      %v
Value:      %v
Timestamp:  %v`,
		t.ID,
		t.OrderID,
		t.InstrumentID,
		t.Side,
		t.Quantity,
		t.Price,
		t.Value,
		t.Timestamp.Format(time.RFC3339),
	)
}
