package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGSERIAL PRIMARY KEY,
		username    TEXT NOT NULL UNIQUE,
		email       TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL,
		name        TEXT NOT NULL DEFAULT '',
		address     TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		currency    TEXT NOT NULL DEFAULT 'gbp',
		stock       INTEGER NOT NULL CONSTRAINT products_stock_check CHECK (stock >= 0),
		listed_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS products_user_id_idx ON products(user_id)`,
	`CREATE TABLE IF NOT EXISTS cart_lines (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_id  BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity    INTEGER NOT NULL CHECK (quantity > 0),
		UNIQUE (user_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT REFERENCES users(id) ON DELETE SET NULL,
		status      TEXT NOT NULL DEFAULT 'pending',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders(user_id)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		order_id    BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id  BIGINT NOT NULL REFERENCES products(id),
		quantity    INTEGER NOT NULL CHECK (quantity > 0),
		status      TEXT NOT NULL DEFAULT 'pending',
		PRIMARY KEY (order_id, product_id)
	)`,
	`CREATE INDEX IF NOT EXISTS order_lines_product_id_idx ON order_lines(product_id)`,
}

// Migrate applies the schema. Every statement is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}

// Truncate empties every table. Used by integration tests.
func (db *DB) Truncate(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `TRUNCATE order_lines, orders, cart_lines, products, users RESTART IDENTITY CASCADE`)
	return err
}
