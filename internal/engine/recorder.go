package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
	"github.com/ajinkya-tambe/FixedIncome/internal/store"
)

const cancelReasonShortfall = "insufficient position"

// recorder turns a triggered order into an executed one: claim the order,
// update the lot ledger, emit the trade, journal everything. Execution is
// at-most-once per order id; the claim step is the gate.
type recorder struct {
	orders  *store.Orders
	book    *Book
	journal *store.Journal
}

// execute records a full fill of the order at px, costing sells under the
// given accounting method.
//
// The order is claimed (PENDING -> EXECUTED) before the ledger is touched,
// which is what suppresses duplicate or re-entrant execution. A sell can
// still lose its position to a concurrent fill between the evaluator's
// shortfall check and the ledger update; that surfaces here as a ledger
// rejection and the claim is rolled into a cancellation instead, so the
// order never sits EXECUTED with no trade behind it.
func (r *recorder) execute(order Order, px decimal.Decimal, method AccountingMethod) (Order, error) {
	now := time.Now()

	claimed, err := r.orders.Mutate(order.ID, func(o *Order) error {
		if o.Status.Terminal() {
			return store.ErrTerminalOrder
		}
		o.Status = Executed
		o.ExecutedQty = o.Quantity
		o.ExecutedPx = px
		o.ExecutedAt = now
		return nil
	})
	if err != nil {
		// Someone else got there first. Not an error to the caller.
		return claimed, nil
	}

	var report FillReport
	if claimed.Side == Buy {
		report = r.book.ApplyBuy(claimed.InstrumentID, claimed.Quantity, px, now)
	} else {
		report, err = r.book.ApplySell(claimed.InstrumentID, method, claimed.Quantity, px)
		if err != nil {
			// We hold the claim, so overwriting the EXECUTED marking is
			// safe: no other writer can touch a terminal order.
			cancelled, _ := r.orders.Mutate(claimed.ID, func(o *Order) error {
				o.Status = Cancelled
				o.CancelReason = cancelReasonShortfall
				o.ExecutedQty = decimal.Zero
				o.ExecutedPx = decimal.Zero
				o.ExecutedAt = time.Time{}
				return nil
			})
			log.Info().
				Str("order", cancelled.ID).
				Str("instrument", cancelled.InstrumentID).
				Msg("sell cancelled, insufficient position")
			if err := r.journal.SaveOrder(cancelled); err != nil {
				log.Error().Err(err).Str("order", cancelled.ID).Msg("journal write failed")
			}
			return cancelled, nil
		}
	}

	trade := Trade{
		ID:           fmt.Sprintf("TRD-%s", uuid.NewString()),
		OrderID:      claimed.ID,
		InstrumentID: claimed.InstrumentID,
		Side:         claimed.Side,
		Quantity:     claimed.Quantity,
		Price:        px,
		Value:        claimed.Quantity.Mul(px),
		Timestamp:    now,
	}
	r.orders.AppendTrade(trade)

	log.Info().
		Str("order", claimed.ID).
		Str("trade", trade.ID).
		Str("instrument", claimed.InstrumentID).
		Str("side", claimed.Side.String()).
		Str("quantity", claimed.Quantity.String()).
		Str("price", px.String()).
		Msg("order executed")

	r.journalFill(claimed, trade, report)
	return claimed, nil
}

// cancelShortfall is the evaluator's pre-trigger gate for sells whose
// requested quantity exceeds the held position. It only ever acts on a
// pending order; a concurrent fill that beat it leaves the order alone.
func (r *recorder) cancelShortfall(orderID string) (Order, error) {
	cancelled, err := r.orders.Mutate(orderID, func(o *Order) error {
		if o.Status.Terminal() {
			return store.ErrTerminalOrder
		}
		o.Status = Cancelled
		o.CancelReason = cancelReasonShortfall
		return nil
	})
	if err != nil {
		return cancelled, nil
	}

	log.Info().
		Str("order", cancelled.ID).
		Str("instrument", cancelled.InstrumentID).
		Msg("sell cancelled, insufficient position")

	if err := r.journal.SaveOrder(cancelled); err != nil {
		log.Error().Err(err).Str("order", cancelled.ID).Msg("journal write failed")
	}
	return cancelled, nil
}

// journalFill persists the post-fill state. Journal failures are logged
// and swallowed; durability is best-effort and must not corrupt the
// in-memory book.
func (r *recorder) journalFill(order Order, trade Trade, report FillReport) {
	if err := r.journal.SaveOrder(order); err != nil {
		log.Error().Err(err).Str("order", order.ID).Msg("journal write failed")
	}
	if err := r.journal.SaveTrade(trade); err != nil {
		log.Error().Err(err).Str("trade", trade.ID).Msg("journal write failed")
	}
	if err := r.journal.SavePosition(report.InstrumentID, report.Quantity, report.Realized, report.Lots); err != nil {
		log.Error().Err(err).Str("instrument", report.InstrumentID).Msg("journal write failed")
	}
}
