package quote

import (
	"errors"
	"sort"
	"sync"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
)

var ErrUnknownInstrument = errors.New("unknown instrument")

// Board holds the latest market snapshot per instrument, plus the static
// reference data registered at construction. External collaborators publish
// quotes at their own cadence; the engine only ever reads. The board is the
// sole seam between the engine and whatever market-data plumbing feeds it.
type Board struct {
	mu          sync.RWMutex
	instruments map[string]Instrument
	quotes      map[string]Quote
}

func NewBoard(instruments ...Instrument) *Board {
	b := &Board{
		instruments: make(map[string]Instrument),
		quotes:      make(map[string]Quote),
	}
	for _, inst := range instruments {
		b.instruments[inst.ID] = inst
	}
	return b
}

// Register adds an instrument to the board. Registering an id twice
// replaces the reference data but keeps any published quote.
func (b *Board) Register(inst Instrument) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.instruments[inst.ID] = inst
}

// Publish stores the latest snapshot for a known instrument.
func (b *Board) Publish(instrumentID string, q Quote) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.instruments[instrumentID]; !ok {
		return ErrUnknownInstrument
	}
	b.quotes[instrumentID] = q
	return nil
}

// Quote returns the latest snapshot for the instrument, if one has been
// published. A registered instrument with no quote yet returns false.
func (b *Board) Quote(instrumentID string) (Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	q, ok := b.quotes[instrumentID]
	return q, ok
}

// Instrument returns the reference data for a registered instrument.
func (b *Board) Instrument(instrumentID string) (Instrument, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	inst, ok := b.instruments[instrumentID]
	return inst, ok
}

// Known reports whether the instrument id has been registered.
func (b *Board) Known(instrumentID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.instruments[instrumentID]
	return ok
}

// Instruments lists registered ids in stable order.
func (b *Board) Instruments() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.instruments))
	for id := range b.instruments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
