package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/m/internal/database"
	"stockroom/m/internal/inventory"
	"stockroom/m/internal/migrations"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open("file:" + filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Initialize(context.Background(), db))
	return db
}

const catalog = `name,sku,stock,selling_price,cost_price,expiry_date
Milk,MLK-1,12,2.50,1.25,2026-11-01
Rice,RCE-1,40,8,,
,NONAME,1,1,,
Bread,BRD-1,many,1.00,,
Eggs,EGG-1,30,3.75,2.10,01/11/2026
Tea,TEA-1,7,4.00,2.00,
`

func TestImportProducts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	n, err := ImportProducts(ctx, db, strings.NewReader(catalog))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	products, err := inventory.ListAll(ctx, db)
	require.NoError(t, err)
	require.Len(t, products, 3)

	bySKU := map[string]int{}
	for i, p := range products {
		bySKU[p.SKU] = i
	}
	rice := products[bySKU["RCE-1"]]
	assert.Equal(t, int64(40), rice.Stock)
	assert.False(t, rice.CostPrice.Valid)
	assert.Nil(t, rice.ExpiryDate)

	milk := products[bySKU["MLK-1"]]
	assert.True(t, milk.CostPrice.Valid)
	require.NotNil(t, milk.ExpiryDate)
	assert.Equal(t, "2026-11-01", *milk.ExpiryDate)
}

func TestImportProductsIgnoresExistingSKUs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := ImportProducts(ctx, db, strings.NewReader(catalog))
	require.NoError(t, err)
	n, err := ImportProducts(ctx, db, strings.NewReader(catalog))
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM products`))
	assert.Equal(t, 3, count)
}

func TestImportProductsRequiresHeader(t *testing.T) {
	db := newTestDB(t)
	_, err := ImportProducts(context.Background(), db, strings.NewReader("name,stock\nMilk,1\n"))
	assert.ErrorContains(t, err, `"sku"`)
}

func TestLoadProductsFromFile(t *testing.T) {
	db := newTestDB(t)
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o600))

	n, err := LoadProducts(context.Background(), db, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = LoadProducts(context.Background(), db, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
