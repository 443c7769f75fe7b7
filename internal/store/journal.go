package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
)

// JournalOptions configures the durable journal.
type JournalOptions struct {
	Path            string
	InMemory        bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Journal persists the full attribute set of every entity to SQLite.
// The engine runs fine without one (pass nil); when present, orders are
// upserted on every transition, trades appended once, and the lot/position
// state of an instrument replaced wholesale after each fill.
type Journal struct {
	db *sql.DB
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS orders (
	id             TEXT PRIMARY KEY,
	instrument_id  TEXT NOT NULL,
	side           TEXT NOT NULL,
	kind           TEXT NOT NULL,
	quantity       TEXT NOT NULL,
	price          TEXT NOT NULL,
	disclosed_qty  TEXT NOT NULL,
	stop_loss      TEXT NOT NULL,
	condition_op   TEXT,
	condition_thr  TEXT,
	status         TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	executed_qty   TEXT NOT NULL,
	executed_px    TEXT NOT NULL,
	executed_at    TEXT,
	cancel_reason  TEXT
);
CREATE TABLE IF NOT EXISTS trades (
	id             TEXT PRIMARY KEY,
	order_id       TEXT NOT NULL,
	instrument_id  TEXT NOT NULL,
	side           TEXT NOT NULL,
	quantity       TEXT NOT NULL,
	price          TEXT NOT NULL,
	value          TEXT NOT NULL,
	timestamp      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS lots (
	id             TEXT PRIMARY KEY,
	instrument_id  TEXT NOT NULL,
	seq            INTEGER NOT NULL,
	quantity       TEXT NOT NULL,
	remaining      TEXT NOT NULL,
	price          TEXT NOT NULL,
	acquired_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS positions (
	instrument_id  TEXT PRIMARY KEY,
	quantity       TEXT NOT NULL,
	realized_pnl   TEXT NOT NULL
);
`

// OpenJournal opens (and migrates) the SQLite journal.
func OpenJournal(opts JournalOptions) (*Journal, error) {
	dsn := opts.Path
	if opts.InMemory {
		dsn = ":memory:"
	} else if dir := filepath.Dir(opts.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", dsn))
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := db.Exec(journalSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// SaveOrder upserts the order's full attribute set.
func (j *Journal) SaveOrder(o Order) error {
	if j == nil {
		return nil
	}

	var condOp, condThr, executedAt any
	if o.Condition != nil {
		condOp = o.Condition.Op.String()
		condThr = o.Condition.Threshold.String()
	}
	if !o.ExecutedAt.IsZero() {
		executedAt = o.ExecutedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := j.db.Exec(`
		INSERT INTO orders (
			id, instrument_id, side, kind, quantity, price, disclosed_qty,
			stop_loss, condition_op, condition_thr, status, created_at,
			executed_qty, executed_px, executed_at, cancel_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			quantity = excluded.quantity,
			price = excluded.price,
			stop_loss = excluded.stop_loss,
			executed_qty = excluded.executed_qty,
			executed_px = excluded.executed_px,
			executed_at = excluded.executed_at,
			cancel_reason = excluded.cancel_reason`,
		o.ID, o.InstrumentID, o.Side.String(), o.Kind.String(),
		o.Quantity.String(), o.Price.String(), o.DisclosedQty.String(),
		o.StopLoss.String(), condOp, condThr, o.Status.String(),
		o.CreatedAt.UTC().Format(time.RFC3339Nano),
		o.ExecutedQty.String(), o.ExecutedPx.String(), executedAt,
		o.CancelReason,
	)
	if err != nil {
		return fmt.Errorf("journaling order %s: %w", o.ID, err)
	}
	return nil
}

// SaveTrade appends one trade.
func (j *Journal) SaveTrade(t Trade) error {
	if j == nil {
		return nil
	}

	_, err := j.db.Exec(`
		INSERT INTO trades (id, order_id, instrument_id, side, quantity, price, value, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OrderID, t.InstrumentID, t.Side.String(),
		t.Quantity.String(), t.Price.String(), t.Value.String(),
		t.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journaling trade %s: %w", t.ID, err)
	}
	return nil
}

// SavePosition replaces the instrument's journaled lots and position row
// with the post-fill state. An empty lot set removes the position.
func (j *Journal) SavePosition(instrumentID string, quantity, realized decimal.Decimal, lots []PurchaseLot) error {
	if j == nil {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("journaling position %s: %w", instrumentID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM lots WHERE instrument_id = ?`, instrumentID); err != nil {
		return fmt.Errorf("journaling position %s: %w", instrumentID, err)
	}
	if _, err := tx.Exec(`DELETE FROM positions WHERE instrument_id = ?`, instrumentID); err != nil {
		return fmt.Errorf("journaling position %s: %w", instrumentID, err)
	}

	if len(lots) > 0 {
		for _, lot := range lots {
			if _, err := tx.Exec(`
				INSERT INTO lots (id, instrument_id, seq, quantity, remaining, price, acquired_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				lot.ID, instrumentID, lot.Seq, lot.Quantity.String(),
				lot.Remaining.String(), lot.Price.String(),
				lot.AcquiredAt.UTC().Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("journaling lot %s: %w", lot.ID, err)
			}
		}
		if _, err := tx.Exec(`
			INSERT INTO positions (instrument_id, quantity, realized_pnl)
			VALUES (?, ?, ?)`,
			instrumentID, quantity.String(), realized.String(),
		); err != nil {
			return fmt.Errorf("journaling position %s: %w", instrumentID, err)
		}
	}

	return tx.Commit()
}
