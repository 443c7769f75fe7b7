package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
)

// MarketData is the read-only quote surface the engine consumes. The quote
// board satisfies it; tests swap in fixtures.
type MarketData interface {
	Quote(instrumentID string) (Quote, bool)
	Known(instrumentID string) bool
}

type ledgerEntry struct {
	mu     sync.Mutex
	ledger *Ledger
	dead   bool // Set once the entry has been pruned from the book
}

// FillReport is the post-fill ledger state handed back to the recorder,
// mainly so the journal can persist it outside the instrument lock.
type FillReport struct {
	InstrumentID string
	Quantity     decimal.Decimal
	Realized     decimal.Decimal
	DisposalPnL  decimal.Decimal // Realized by this fill; zero for buys
	Lots         []PurchaseLot
}

// Book owns one ledger per instrument with a position. Fills against the
// same instrument serialize on the entry mutex; distinct instruments do not
// contend. Ledger mutation is not commutative, so this exclusion is what
// keeps the lot-sum invariant intact under concurrent execution.
type Book struct {
	mu      sync.RWMutex
	ledgers map[string]*ledgerEntry
}

func NewBook() *Book {
	return &Book{
		ledgers: make(map[string]*ledgerEntry),
	}
}

// ApplyBuy appends a lot to the instrument's ledger, creating the position
// lazily on the first buy fill.
func (b *Book) ApplyBuy(instrumentID string, qty, price decimal.Decimal, ts time.Time) FillReport {
	for {
		entry := b.entry(instrumentID, true)

		entry.mu.Lock()
		if entry.dead {
			// Lost a race with a prune; the map no longer holds this
			// entry, so fetch a fresh one.
			entry.mu.Unlock()
			continue
		}
		lot := entry.ledger.Buy(qty, price, ts)
		report := b.report(entry.ledger)
		entry.mu.Unlock()

		log.Debug().
			Str("instrument", instrumentID).
			Str("lot", lot.ID).
			Str("quantity", qty.String()).
			Str("price", price.String()).
			Msg("purchase lot opened")
		return report
	}
}

// ApplySell costs a disposal under the given accounting method. The
// position entity is deleted once its aggregate quantity reaches zero.
func (b *Book) ApplySell(instrumentID string, method AccountingMethod, qty, price decimal.Decimal) (FillReport, error) {
	for {
		entry := b.entry(instrumentID, false)
		if entry == nil {
			return FillReport{}, ErrInsufficientPosition
		}

		entry.mu.Lock()
		if entry.dead {
			entry.mu.Unlock()
			continue
		}
		pnl, err := entry.ledger.Sell(method, qty, price)
		if err != nil {
			entry.mu.Unlock()
			return FillReport{}, err
		}
		report := b.report(entry.ledger)
		report.DisposalPnL = pnl
		empty := entry.ledger.Empty()
		entry.mu.Unlock()

		log.Debug().
			Str("instrument", instrumentID).
			Str("method", method.String()).
			Str("quantity", qty.String()).
			Str("realized", pnl.String()).
			Msg("disposal costed")

		if empty {
			b.prune(instrumentID)
		}
		return report, nil
	}
}

// Available returns the open quantity held for the instrument.
func (b *Book) Available(instrumentID string) decimal.Decimal {
	entry := b.entry(instrumentID, false)
	if entry == nil {
		return decimal.Zero
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.dead {
		return decimal.Zero
	}
	return entry.ledger.Quantity()
}

// Positions snapshots every open position, recomputing average cost from
// the lots and the valuation from the live quote on each call. An
// instrument with no published quote is valued at a zero current price.
func (b *Book) Positions(md MarketData) []Position {
	b.mu.RLock()
	ids := make([]string, 0, len(b.ledgers))
	for id := range b.ledgers {
		ids = append(ids, id)
	}
	entries := make([]*ledgerEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, b.ledgers[id])
	}
	b.mu.RUnlock()

	positions := make([]Position, 0, len(ids))
	for i, entry := range entries {
		entry.mu.Lock()
		if entry.dead || entry.ledger.Empty() {
			entry.mu.Unlock()
			continue
		}

		pos := Position{
			InstrumentID: ids[i],
			Quantity:     entry.ledger.Quantity(),
			AveragePrice: entry.ledger.AverageCost(),
			RealizedPnL:  entry.ledger.Realized(),
			Lots:         entry.ledger.Lots(),
		}
		entry.mu.Unlock()

		pos.CurrentPrice = decimal.Zero
		if q, ok := md.Quote(pos.InstrumentID); ok {
			pos.CurrentPrice = q.Mid()
		}
		pos.MarketValue = pos.Quantity.Mul(pos.CurrentPrice)
		pos.UnrealizedPnL = pos.Quantity.Mul(pos.CurrentPrice.Sub(pos.AveragePrice))
		pos.TotalPnL = pos.UnrealizedPnL.Add(pos.RealizedPnL)

		positions = append(positions, pos)
	}
	return positions
}

// entry fetches the instrument's ledger entry, optionally creating it.
func (b *Book) entry(instrumentID string, create bool) *ledgerEntry {
	b.mu.RLock()
	entry, ok := b.ledgers[instrumentID]
	b.mu.RUnlock()
	if ok || !create {
		return entry
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if entry, ok := b.ledgers[instrumentID]; ok {
		return entry
	}
	entry = &ledgerEntry{ledger: NewLedger(instrumentID)}
	b.ledgers[instrumentID] = entry
	return entry
}

// prune removes the entry if the position is still empty. A concurrent buy
// may have re-opened it between the caller's check and here, in which case
// it stays.
func (b *Book) prune(instrumentID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.ledgers[instrumentID]
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.ledger.Empty() {
		entry.dead = true
		delete(b.ledgers, instrumentID)
		log.Debug().Str("instrument", instrumentID).Msg("position closed out")
	}
}

func (b *Book) report(l *Ledger) FillReport {
	return FillReport{
		InstrumentID: l.instrumentID,
		Quantity:     l.Quantity(),
		Realized:     l.Realized(),
		Lots:         l.Lots(),
	}
}
