package dashboard

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/m/domain"
	"stockroom/m/internal/database"
	"stockroom/m/internal/migrations"
)

// TestAggregatePostgres runs against the database named by DATABASE_DSN when
// it points at Postgres. Fixtures live in a transaction that is rolled back.
func TestAggregatePostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_DSN")
	if database.DriverFor(dsn) != "pgx" {
		t.Skip("DATABASE_DSN is not a postgres:// URL")
	}
	db, err := database.Open(dsn)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	require.NoError(t, migrations.Initialize(ctx, db))

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	txExec := func(query string, args ...interface{}) {
		t.Helper()
		_, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		require.NoError(t, err)
	}
	insertProduct := func(sku string, stock int, selling string, cost interface{}, expiry interface{}) int64 {
		t.Helper()
		var id int64
		require.NoError(t, tx.GetContext(ctx, &id, tx.Rebind(
			`INSERT INTO products (name, sku, stock, selling_price, cost_price, expiry_date) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
			"Product "+sku, sku, stock, selling, cost, expiry))
		return id
	}

	txExec(`TRUNCATE invoice_items, invoices, customers, products RESTART IDENTITY CASCADE`)
	milk := insertProduct("MLK", 3, "0.10", "0.10", "2026-10-25")
	rice := insertProduct("RCE", 20, "0.20", nil, nil)
	txExec(`INSERT INTO customers (name) VALUES (?)`, "Zed")
	var invoice int64
	require.NoError(t, tx.GetContext(ctx, &invoice, tx.Rebind(
		`INSERT INTO invoices (sale_date, final_amount) VALUES (?, ?) RETURNING id`), "2026-10-19 09:00:00", "0.30"))
	txExec(`INSERT INTO invoice_items (invoice_id, product_id, quantity) VALUES (?, ?, ?), (?, ?, ?)`,
		invoice, milk, 4, invoice, rice, 4)

	d, err := Aggregate(ctx, tx, DefaultOptions(today))
	require.NoError(t, err)

	assert.Equal(t, "0.3", d.TodaySales.String())
	assert.Equal(t, int64(1), d.LowStockCount)
	assert.Equal(t, int64(1), d.ExpiringSoonCount)
	assert.Equal(t, int64(1), d.TotalCustomers)
	assert.Equal(t, "4.3", d.StockValueSelling.String())
	assert.Equal(t, "0.3", d.StockValueCost.String())
	assert.Equal(t, []domain.TopSeller{
		{ProductID: milk, Name: "Product MLK", TotalSold: 4},
		{ProductID: rice, Name: "Product RCE", TotalSold: 4},
	}, d.TopSellers)
}
