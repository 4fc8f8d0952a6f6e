package migrations

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"stockroom/m/internal/logger"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS products (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            sku TEXT NOT NULL UNIQUE,
            stock INTEGER NOT NULL DEFAULT 0,
            selling_price REAL NOT NULL,
            cost_price REAL,
            expiry_date TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS customers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            phone TEXT,
            email TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS invoices (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            customer_id INTEGER,
            sale_date TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
            final_amount REAL NOT NULL,
            FOREIGN KEY(customer_id) REFERENCES customers(id)
        );`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_id INTEGER NOT NULL,
            product_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL,
            unit_price REAL NOT NULL DEFAULT 0,
            FOREIGN KEY(invoice_id) REFERENCES invoices(id),
            FOREIGN KEY(product_id) REFERENCES products(id)
        );`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            sku TEXT NOT NULL UNIQUE,
            stock BIGINT NOT NULL DEFAULT 0,
            selling_price NUMERIC(12,2) NOT NULL,
            cost_price NUMERIC(12,2),
            expiry_date DATE
        );`,
	`CREATE TABLE IF NOT EXISTS customers (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            phone TEXT,
            email TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS invoices (
            id BIGSERIAL PRIMARY KEY,
            customer_id BIGINT REFERENCES customers(id),
            sale_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            final_amount NUMERIC(12,2) NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
            id BIGSERIAL PRIMARY KEY,
            invoice_id BIGINT NOT NULL REFERENCES invoices(id),
            product_id BIGINT NOT NULL REFERENCES products(id),
            quantity BIGINT NOT NULL,
            unit_price NUMERIC(12,2) NOT NULL DEFAULT 0
        );`,
}

// Schema returns the DDL statements for the given driver name.
func Schema(driver string) []string {
	if driver == "pgx" {
		return postgresSchema
	}
	return sqliteSchema
}

// Initialize creates the inventory schema in a single transaction. Every
// statement is guarded with IF NOT EXISTS, so running it again is a no-op.
func Initialize(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range Schema(db.DriverName()) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	logger.Info("schema initialized (%s)", db.DriverName())
	return nil
}

// Run creates the schema and exits on failure.
func Run(db *sqlx.DB) {
	if err := Initialize(context.Background(), db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}
