package store

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
)

func pendingOrder(id string) Order {
	return Order{
		ID:           id,
		InstrumentID: "US-GOVT-001",
		Side:         Buy,
		Kind:         LimitOrder,
		Quantity:     decimal.NewFromInt(100),
		Price:        decimal.NewFromInt(990),
		Status:       Pending,
		CreatedAt:    time.Now(),
	}
}

func TestInsert_RejectsDuplicateID(t *testing.T) {
	s := NewOrders()

	require.NoError(t, s.Insert(pendingOrder("ORD-1")))
	assert.ErrorIs(t, s.Insert(pendingOrder("ORD-1")), ErrOrderExists)
}

func TestMutate_AppliesUnderLock(t *testing.T) {
	s := NewOrders()
	require.NoError(t, s.Insert(pendingOrder("ORD-1")))

	updated, err := s.Mutate("ORD-1", func(o *Order) error {
		o.Status = Executed
		o.ExecutedQty = o.Quantity
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Executed, updated.Status)

	got, err := s.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, Executed, got.Status)
}

func TestMutate_RollsBackOnError(t *testing.T) {
	s := NewOrders()
	require.NoError(t, s.Insert(pendingOrder("ORD-1")))

	boom := errors.New("boom")
	got, err := s.Mutate("ORD-1", func(o *Order) error {
		o.Status = Cancelled
		o.CancelReason = "should not stick"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Pending, got.Status, "returned order reflects the untouched state")

	stored, err := s.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, Pending, stored.Status)
	assert.Empty(t, stored.CancelReason)
}

func TestMutate_UnknownOrder(t *testing.T) {
	s := NewOrders()
	_, err := s.Mutate("ORD-404", func(o *Order) error { return nil })
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestList_PreservesCreationOrder(t *testing.T) {
	s := NewOrders()
	for _, id := range []string{"ORD-1", "ORD-2", "ORD-3"} {
		require.NoError(t, s.Insert(pendingOrder(id)))
	}

	orders := s.List()
	require.Len(t, orders, 3)
	assert.Equal(t, "ORD-1", orders[0].ID)
	assert.Equal(t, "ORD-2", orders[1].ID)
	assert.Equal(t, "ORD-3", orders[2].ID)
}

func TestTrades_AppendOnlySnapshot(t *testing.T) {
	s := NewOrders()
	s.AppendTrade(Trade{ID: "TRD-1"})
	s.AppendTrade(Trade{ID: "TRD-2"})

	trades := s.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, "TRD-1", trades[0].ID)

	// The snapshot is a copy; mutating it does not touch the log.
	trades[0].ID = "mutated"
	assert.Equal(t, "TRD-1", s.Trades()[0].ID)
}
