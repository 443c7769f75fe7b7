package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
	"github.com/ajinkya-tambe/FixedIncome/internal/store"
)

// This is the main execution engine.

var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrMissingPrice      = errors.New("non-market order requires a price")
	ErrMissingCondition  = errors.New("conditional order requires a structured condition")
	ErrInvalidDisclosed  = errors.New("disclosed quantity must be positive and at most the quantity")
	ErrInvalidStopLoss   = errors.New("stop loss must be positive")
	ErrNotPending        = errors.New("order is no longer pending")
)

// SubmitRequest carries everything a caller may set on a new order.
// Optional decimals are left zero when unset.
type SubmitRequest struct {
	InstrumentID string
	Side         Side
	Kind         OrderKind
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	DisclosedQty decimal.Decimal
	StopLoss     decimal.Decimal
	Condition    *Condition
}

// Amendment is a partial update of a pending order. Nil fields are left
// untouched.
type Amendment struct {
	Quantity *decimal.Decimal
	Price    *decimal.Decimal
	StopLoss *decimal.Decimal
}

// Engine is the order execution and position-accounting engine: a
// lifecycle state machine over submitted orders, trigger evaluation
// against the quote board, and lot-based cost-basis accounting on fills.
// The engine carries no timers; an external driver calls Sweep at whatever
// cadence it wants pending orders re-evaluated.
type Engine struct {
	md     MarketData
	orders *store.Orders
	book   *Book
	rec    recorder

	methodMu sync.RWMutex
	method   AccountingMethod
}

func New(md MarketData, orders *store.Orders, journal *store.Journal, method AccountingMethod) *Engine {
	book := NewBook()
	return &Engine{
		md:     md,
		orders: orders,
		book:   book,
		rec: recorder{
			orders:  orders,
			book:    book,
			journal: journal,
		},
		method: method,
	}
}

// Submit validates and stores a new order as PENDING. Market orders are
// evaluated immediately; everything else waits for the next sweep.
func (e *Engine) Submit(req SubmitRequest) (Order, error) {
	if err := e.validate(req); err != nil {
		return Order{}, err
	}

	order := Order{
		ID:           fmt.Sprintf("ORD-%s", uuid.NewString()),
		InstrumentID: req.InstrumentID,
		Side:         req.Side,
		Kind:         req.Kind,
		Quantity:     req.Quantity,
		Price:        req.Price,
		DisclosedQty: req.DisclosedQty,
		StopLoss:     req.StopLoss,
		Condition:    req.Condition,
		Status:       Pending,
		CreatedAt:    time.Now(),
		ExecutedQty:  decimal.Zero,
		ExecutedPx:   decimal.Zero,
	}

	if err := e.orders.Insert(order); err != nil {
		return Order{}, err
	}
	if err := e.rec.journal.SaveOrder(order); err != nil {
		log.Error().Err(err).Str("order", order.ID).Msg("journal write failed")
	}

	log.Info().
		Str("order", order.ID).
		Str("instrument", order.InstrumentID).
		Str("side", order.Side.String()).
		Str("kind", order.Kind.String()).
		Str("quantity", order.Quantity.String()).
		Msg("order submitted")

	if order.Kind == MarketOrder {
		return e.Evaluate(order.ID)
	}
	return order, nil
}

// Cancel moves a pending order to CANCELLED. A terminal order is a no-op;
// its current state is returned so the caller sees what actually happened.
func (e *Engine) Cancel(id string) (Order, error) {
	order, err := e.orders.Mutate(id, func(o *Order) error {
		if o.Status.Terminal() {
			return store.ErrTerminalOrder
		}
		o.Status = Cancelled
		o.CancelReason = "cancelled by request"
		return nil
	})
	if errors.Is(err, store.ErrTerminalOrder) {
		return order, nil
	}
	if err != nil {
		return order, err
	}

	log.Info().Str("order", order.ID).Msg("order cancelled")
	if err := e.rec.journal.SaveOrder(order); err != nil {
		log.Error().Err(err).Str("order", order.ID).Msg("journal write failed")
	}
	return order, nil
}

// Amend adjusts quantity, price or stop loss on a pending order.
func (e *Engine) Amend(id string, amend Amendment) (Order, error) {
	order, err := e.orders.Mutate(id, func(o *Order) error {
		if o.Status.Terminal() {
			return ErrNotPending
		}
		if amend.Quantity != nil {
			if amend.Quantity.Sign() <= 0 {
				return ErrInvalidQuantity
			}
			o.Quantity = *amend.Quantity
		}
		if amend.Price != nil {
			if amend.Price.Sign() <= 0 {
				return ErrMissingPrice
			}
			o.Price = *amend.Price
		}
		if amend.StopLoss != nil {
			if amend.StopLoss.Sign() <= 0 {
				return ErrInvalidStopLoss
			}
			o.StopLoss = *amend.StopLoss
		}
		return nil
	})
	if err != nil {
		return order, err
	}

	log.Info().Str("order", order.ID).Msg("order amended")
	if err := e.rec.journal.SaveOrder(order); err != nil {
		log.Error().Err(err).Str("order", order.ID).Msg("journal write failed")
	}
	return order, nil
}

// Evaluate runs one trigger evaluation for the order against the current
// quote. Terminal orders are a no-op. A missing quote leaves the order
// pending for a later cycle.
func (e *Engine) Evaluate(id string) (Order, error) {
	order, err := e.orders.Get(id)
	if err != nil {
		return Order{}, err
	}
	if order.Status.Terminal() {
		return order, nil
	}

	q, ok := e.md.Quote(order.InstrumentID)
	if !ok {
		log.Debug().
			Str("order", order.ID).
			Str("instrument", order.InstrumentID).
			Msg("no quote this cycle, order stays pending")
		return order, nil
	}

	// Sells must be covered before their trigger is even considered.
	if order.Side == Sell && e.book.Available(order.InstrumentID).LessThan(order.Quantity) {
		return e.rec.cancelShortfall(order.ID)
	}

	fire, px := evaluate(order, q)
	if !fire {
		return order, nil
	}

	log.Debug().
		Str("order", order.ID).
		Str("kind", order.Kind.String()).
		Str("price", px.String()).
		Msg("trigger condition met")
	return e.rec.execute(order, px, e.Method())
}

// Sweep evaluates every pending order once. This is the external driver's
// entry point; the engine never schedules sweeps itself.
func (e *Engine) Sweep() {
	for _, order := range e.orders.List() {
		if order.Status != Pending {
			continue
		}
		if _, err := e.Evaluate(order.ID); err != nil {
			log.Error().Err(err).Str("order", order.ID).Msg("evaluation failed")
		}
	}
}

// Orders returns a snapshot of all orders in creation order.
func (e *Engine) Orders() []Order {
	return e.orders.List()
}

// Trades returns a snapshot of the trade log.
func (e *Engine) Trades() []Trade {
	return e.orders.Trades()
}

// Positions snapshots every open position, valued against live quotes.
func (e *Engine) Positions() []Position {
	return e.book.Positions(e.md)
}

// SetMethod switches the default accounting method for subsequent sells.
// Past disposals are never restated.
func (e *Engine) SetMethod(m AccountingMethod) {
	e.methodMu.Lock()
	e.method = m
	e.methodMu.Unlock()
	log.Info().Str("method", m.String()).Msg("accounting method set")
}

// Method returns the accounting method applied to the next disposal.
func (e *Engine) Method() AccountingMethod {
	e.methodMu.RLock()
	defer e.methodMu.RUnlock()
	return e.method
}

func (e *Engine) validate(req SubmitRequest) error {
	if !e.md.Known(req.InstrumentID) {
		return ErrUnknownInstrument
	}
	if req.Quantity.Sign() <= 0 {
		return ErrInvalidQuantity
	}
	if req.Kind != MarketOrder && req.Price.Sign() <= 0 {
		return ErrMissingPrice
	}
	if req.Kind == ConditionalOrder && req.Condition == nil {
		return ErrMissingCondition
	}
	if !req.DisclosedQty.IsZero() &&
		(req.DisclosedQty.Sign() < 0 || req.DisclosedQty.GreaterThan(req.Quantity)) {
		return ErrInvalidDisclosed
	}
	if !req.StopLoss.IsZero() && req.StopLoss.Sign() < 0 {
		return ErrInvalidStopLoss
	}
	return nil
}
