package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS basket_lines (
	owner_kind TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	product_id TEXT NOT NULL,
	qty        INTEGER NOT NULL CHECK (qty > 0),
	PRIMARY KEY (owner_kind, owner_id, product_id)
);

CREATE TABLE IF NOT EXISTS orders (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	total_cost_cents INTEGER NOT NULL,
	status           TEXT NOT NULL,
	delivery_name    TEXT NOT NULL DEFAULT '',
	delivery_email   TEXT NOT NULL DEFAULT '',
	delivery_phone   TEXT NOT NULL DEFAULT '',
	city             TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL DEFAULT '',
	delivery_type    TEXT NOT NULL DEFAULT '',
	payment_type     TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);

CREATE TABLE IF NOT EXISTS order_lines (
	order_id         TEXT NOT NULL REFERENCES orders(id),
	product_id       TEXT NOT NULL,
	title            TEXT NOT NULL,
	qty              INTEGER NOT NULL,
	unit_price_cents INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id);
`

// Open opens (creating if needed) the store database with WAL and a busy
// timeout for concurrent request handling.
func Open(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: prepare dir: %w", err)
		}
	}
	return sql.Open("sqlite", dbPath+"?_pragma=busy_timeout=5000&_pragma=journal_mode=WAL")
}

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}
