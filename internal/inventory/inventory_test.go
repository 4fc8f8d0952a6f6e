package inventory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/m/internal/database"
	"stockroom/m/internal/migrations"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open("file:" + filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Initialize(context.Background(), db))
	return db
}

func TestListAllSizes(t *testing.T) {
	for _, n := range []int{0, 1, 4} {
		db := newTestDB(t)
		for i := 0; i < n; i++ {
			_, err := db.Exec(`INSERT INTO products (name, sku, stock, selling_price) VALUES (?, ?, ?, ?)`,
				"item", "SKU-"+string(rune('A'+i)), i, 1.5)
			require.NoError(t, err)
		}

		products, err := ListAll(context.Background(), db)

		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Len(t, products, n)
	}
}

func TestListAllMapsColumns(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`INSERT INTO products (name, sku, stock, selling_price, cost_price, expiry_date)
		VALUES ('Milk', 'MLK-1', 12, 2.5, 1.25, '2026-11-01'), ('Rice', 'RCE-1', 40, 8, NULL, NULL)`)
	require.NoError(t, err)

	products, err := ListAll(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, products, 2)

	byName := map[string]int{}
	for i, p := range products {
		byName[p.Name] = i
	}

	milk := products[byName["Milk"]]
	assert.Equal(t, "MLK-1", milk.SKU)
	assert.Equal(t, int64(12), milk.Stock)
	assert.True(t, milk.SellingPrice.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, milk.CostPrice.Valid)
	assert.True(t, milk.CostPrice.Decimal.Equal(decimal.RequireFromString("1.25")))
	require.NotNil(t, milk.ExpiryDate)
	assert.Equal(t, "2026-11-01", *milk.ExpiryDate)

	rice := products[byName["Rice"]]
	assert.False(t, rice.CostPrice.Valid)
	assert.Nil(t, rice.ExpiryDate)
	assert.True(t, rice.SellingPrice.Equal(decimal.NewFromInt(8)))
}

func TestListAllStoreFailure(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`DROP TABLE products`)
	require.NoError(t, err)

	products, err := ListAll(context.Background(), db)
	assert.Error(t, err)
	assert.Nil(t, products)
}
