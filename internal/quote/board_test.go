package quote

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
)

func testInstrument(id string) Instrument {
	return Instrument{
		ID:         id,
		Ticker:     "UST-10Y",
		Issuer:     "US Treasury",
		CouponRate: decimal.NewFromFloat(4.25),
		FaceValue:  decimal.NewFromInt(1000),
	}
}

func TestPublish_RejectsUnknownInstrument(t *testing.T) {
	board := NewBoard(testInstrument("US-GOVT-001"))

	err := board.Publish("NOPE", Quote{})
	assert.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestPublish_LatestSnapshotWins(t *testing.T) {
	board := NewBoard(testInstrument("US-GOVT-001"))

	require.NoError(t, board.Publish("US-GOVT-001", Quote{
		Bid: decimal.NewFromFloat(985.25),
		Ask: decimal.NewFromFloat(985.75),
		YTM: decimal.NewFromFloat(4.38),
	}))
	require.NoError(t, board.Publish("US-GOVT-001", Quote{
		Bid:       decimal.NewFromFloat(986.0),
		Ask:       decimal.NewFromFloat(986.5),
		YTM:       decimal.NewFromFloat(4.35),
		Timestamp: time.Now(),
	}))

	q, ok := board.Quote("US-GOVT-001")
	require.True(t, ok)
	assert.True(t, q.Bid.Equal(decimal.NewFromFloat(986.0)))
	assert.True(t, q.Mid().Equal(decimal.NewFromFloat(986.25)))
}

func TestQuote_RegisteredButNeverQuoted(t *testing.T) {
	board := NewBoard(testInstrument("US-GOVT-001"))

	assert.True(t, board.Known("US-GOVT-001"))
	_, ok := board.Quote("US-GOVT-001")
	assert.False(t, ok)
}

func TestInstruments_StableOrder(t *testing.T) {
	board := NewBoard(
		testInstrument("US-GOVT-002"),
		testInstrument("US-GOVT-001"),
	)
	board.Register(testInstrument("CORP-AAPL-001"))

	assert.Equal(t,
		[]string{"CORP-AAPL-001", "US-GOVT-001", "US-GOVT-002"},
		board.Instruments())
}
