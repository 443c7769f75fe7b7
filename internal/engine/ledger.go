package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
)

var ErrInsufficientPosition = errors.New("insufficient position")

// Ledger holds the open purchase lots of one instrument and costs sell
// fills against them. Lots are kept in a btree ordered by acquisition
// sequence: FIFO walks it ascending, LIFO descending, WAP shrinks every
// lot by the same ratio. The ledger is not safe for concurrent use; the
// position book serializes access per instrument.
type Ledger struct {
	instrumentID string
	lots         *btree.BTreeG[*PurchaseLot]
	seq          uint64
	quantity     decimal.Decimal
	realized     decimal.Decimal
}

func NewLedger(instrumentID string) *Ledger {
	// Sorted by acquisition sequence, earliest first.
	lots := btree.NewBTreeG(func(a, b *PurchaseLot) bool {
		return a.Seq < b.Seq
	})
	return &Ledger{
		instrumentID: instrumentID,
		lots:         lots,
		quantity:     decimal.Zero,
		realized:     decimal.Zero,
	}
}

// Buy appends a new open lot and grows the aggregate quantity.
func (l *Ledger) Buy(qty, price decimal.Decimal, ts time.Time) PurchaseLot {
	l.seq++
	lot := &PurchaseLot{
		ID:         fmt.Sprintf("LOT-%s", uuid.NewString()),
		Seq:        l.seq,
		Quantity:   qty,
		Remaining:  qty,
		Price:      price,
		AcquiredAt: ts,
	}
	l.lots.Set(lot)
	l.quantity = l.quantity.Add(qty)
	return *lot
}

// Sell costs a disposal of qty at price under the given accounting method
// and returns the realized P&L of this disposal. The method is an explicit
// argument: switching the engine default never restates past disposals.
// A qty above the aggregate position is rejected wholesale.
func (l *Ledger) Sell(method AccountingMethod, qty, price decimal.Decimal) (decimal.Decimal, error) {
	if qty.GreaterThan(l.quantity) {
		return decimal.Zero, ErrInsufficientPosition
	}

	var pnl decimal.Decimal
	switch method {
	case WAP:
		pnl = l.sellProportional(qty, price)
	case FIFO:
		pnl = l.sellOrdered(qty, price, false)
	case LIFO:
		pnl = l.sellOrdered(qty, price, true)
	}

	l.prune()
	l.quantity = l.quantity.Sub(qty)
	l.realized = l.realized.Add(pnl)
	return pnl, nil
}

// sellProportional implements WAP: the disposal is costed at the weighted
// average of all open lots and every lot shrinks by the ratio qty/total.
// The rounding remainder of the shrink lands on the last lot touched, so
// the sum of lot remainders stays exactly total - qty.
func (l *Ledger) sellProportional(qty, price decimal.Decimal) decimal.Decimal {
	avg := l.AverageCost()
	pnl := price.Sub(avg).Mul(qty)

	ratio := qty.Div(l.quantity)
	consumed := decimal.Zero

	open := l.openLots()
	for i, lot := range open {
		reduceBy := lot.Remaining.Mul(ratio)
		if i == len(open)-1 {
			reduceBy = qty.Sub(consumed)
		}
		lot.Remaining = lot.Remaining.Sub(reduceBy)
		consumed = consumed.Add(reduceBy)
	}
	return pnl
}

// sellOrdered implements FIFO (and, walked newest-first, LIFO): consume
// lots in acquisition order, costing min(remaining to sell, lot remainder)
// against each lot's own price.
func (l *Ledger) sellOrdered(qty, price decimal.Decimal, newestFirst bool) decimal.Decimal {
	remaining := qty
	pnl := decimal.Zero

	consume := func(lot *PurchaseLot) bool {
		if remaining.IsZero() {
			return false
		}
		take := lot.Remaining
		if remaining.LessThan(take) {
			take = remaining
		}
		lot.Remaining = lot.Remaining.Sub(take)
		remaining = remaining.Sub(take)
		pnl = pnl.Add(price.Sub(lot.Price).Mul(take))
		return true
	}

	if newestFirst {
		l.lots.Reverse(consume)
	} else {
		l.lots.Scan(consume)
	}
	return pnl
}

// prune drops lots whose remainder has reached zero.
func (l *Ledger) prune() {
	var dead []*PurchaseLot
	l.lots.Scan(func(lot *PurchaseLot) bool {
		if lot.Remaining.IsZero() {
			dead = append(dead, lot)
		}
		return true
	})
	for _, lot := range dead {
		l.lots.Delete(lot)
	}
}

func (l *Ledger) openLots() []*PurchaseLot {
	open := make([]*PurchaseLot, 0, l.lots.Len())
	l.lots.Scan(func(lot *PurchaseLot) bool {
		open = append(open, lot)
		return true
	})
	return open
}

// AverageCost is the weighted-average price of the open lots, recomputed
// from the lots on every call.
func (l *Ledger) AverageCost() decimal.Decimal {
	if l.quantity.IsZero() {
		return decimal.Zero
	}
	value := decimal.Zero
	l.lots.Scan(func(lot *PurchaseLot) bool {
		value = value.Add(lot.Remaining.Mul(lot.Price))
		return true
	})
	return value.Div(l.quantity)
}

// Quantity is the aggregate open quantity.
func (l *Ledger) Quantity() decimal.Decimal {
	return l.quantity
}

// Realized is the accumulated realized P&L over completed disposals.
func (l *Ledger) Realized() decimal.Decimal {
	return l.realized
}

// Empty reports whether the position has been fully disposed of.
func (l *Ledger) Empty() bool {
	return l.quantity.IsZero()
}

// Lots returns value copies of the open lots, acquisition order.
func (l *Ledger) Lots() []PurchaseLot {
	out := make([]PurchaseLot, 0, l.lots.Len())
	l.lots.Scan(func(lot *PurchaseLot) bool {
		out = append(out, *lot)
		return true
	})
	return out
}
