package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Side int

const (
	Buy Side = iota
	Sell
)

var sideName = map[Side]string{
	Buy:  "BUY",
	Sell: "SELL",
}

func (s Side) String() string {
	return sideName[s]
}

type OrderKind int

const (
	// Market orders are instructions to buy or sell immediately at the
	// crossing quote (ask for a buy, bid for a sell).
	MarketOrder OrderKind = iota
	// Limit orders execute at the order's own price once the quote is at
	// least as favourable. Limit orders may rest pending until triggered.
	LimitOrder
	// Stop orders arm once the quote moves through the stop price, and
	// then execute at that price.
	StopOrder
	// Conditional orders trigger on a structured yield predicate rather
	// than a price comparison.
	ConditionalOrder
)

var kindName = map[OrderKind]string{
	MarketOrder:      "MARKET",
	LimitOrder:       "LIMIT",
	StopOrder:        "STOP",
	ConditionalOrder: "CONDITIONAL",
}

func (k OrderKind) String() string {
	return kindName[k]
}

type OrderStatus int

const (
	Pending OrderStatus = iota
	Executed
	Cancelled
)

var statusName = map[OrderStatus]string{
	Pending:   "PENDING",
	Executed:  "EXECUTED",
	Cancelled: "CANCELLED",
}

func (s OrderStatus) String() string {
	return statusName[s]
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == Executed || s == Cancelled
}

type ConditionOp int

const (
	Above ConditionOp = iota
	Below
	AtOrAbove
	AtOrBelow
)

var opName = map[ConditionOp]string{
	Above:     ">",
	Below:     "<",
	AtOrAbove: ">=",
	AtOrBelow: "<=",
}

func (op ConditionOp) String() string {
	return opName[op]
}

// Condition is the structured predicate carried by conditional orders.
// It compares the instrument's yield to maturity against a fixed threshold.
// Free-text conditions are not representable and are rejected at submission.
type Condition struct {
	Op        ConditionOp
	Threshold decimal.Decimal // Yield threshold, percent
}

// Holds reports whether the predicate is satisfied by the given yield.
func (c Condition) Holds(ytm decimal.Decimal) bool {
	switch c.Op {
	case Above:
		return ytm.GreaterThan(c.Threshold)
	case Below:
		return ytm.LessThan(c.Threshold)
	case AtOrAbove:
		return ytm.GreaterThanOrEqual(c.Threshold)
	case AtOrBelow:
		return ytm.LessThanOrEqual(c.Threshold)
	}
	return false
}

func (c Condition) String() string {
	return fmt.Sprintf("ytm %v %v", c.Op, c.Threshold)
}

type Order struct {
	ID           string          // Engine tracked uuid
	InstrumentID string          // Instrument the order trades
	Side         Side            // Order side
	Kind         OrderKind       // Trigger semantics
	Quantity     decimal.Decimal // Total volume requested
	Price        decimal.Decimal // Limit/stop price; zero for market orders
	DisclosedQty decimal.Decimal // Optionally disclosed portion, zero if unset
	StopLoss     decimal.Decimal // Optional stop-loss level, zero if unset
	Condition    *Condition      // Set only for conditional orders
	Status       OrderStatus     // Lifecycle state
	CreatedAt    time.Time       // Time of arrival of the order
	ExecutedQty  decimal.Decimal // Filled volume; zero or equal to Quantity
	ExecutedPx   decimal.Decimal // Fill price, set on execution
	ExecutedAt   time.Time       // Fill time, set on execution
	CancelReason string          // Why the order was cancelled, if it was
}

func (o Order) String() string {
	return fmt.Sprintf(
		`ID:           %s
Instrument:   %s
Side:         %v
Kind:         %v
Quantity:     %v (Executed: %v)
Price:        %v
Status:       %v
CreatedAt:    %v
CancelReason: %s`,
		o.ID,
		o.InstrumentID,
		o.Side,
		o.Kind,
		o.Quantity,
		o.ExecutedQty,
		o.Price,
		o.Status,
		o.CreatedAt.Format(time.RFC3339),
		o.CancelReason,
	)
}
