package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const defaultSlotsTable = "ledger_slots"

// SlotRepository stores a ledger slot as one row of a key-value table.
type SlotRepository struct {
	db  *sql.DB
	key string
}

// NewSlotRepository constructs a repository bound to key.
func NewSlotRepository(db *sql.DB, key string) (*SlotRepository, error) {
	if db == nil {
		return nil, errors.New("slot repo: nil db")
	}
	if key == "" {
		return nil, errors.New("slot repo: empty key")
	}
	return &SlotRepository{db: db, key: key}, nil
}

// EnsureSchema creates the slots table when missing.
func (r *SlotRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("slot repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+defaultSlotsTable+` (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`)
	return err
}

// Read loads the slot value, nil when the row does not exist.
func (r *SlotRepository) Read(ctx context.Context) ([]byte, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("slot repo: nil db")
	}
	var value []byte
	err := r.db.QueryRowContext(ctx, `
SELECT value
FROM `+defaultSlotsTable+`
WHERE key = $1`, r.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Write upserts the slot value.
func (r *SlotRepository) Write(ctx context.Context, data []byte) error {
	if r == nil || r.db == nil {
		return errors.New("slot repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO `+defaultSlotsTable+` (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		r.key, string(data), time.Now().UTC())
	return err
}
