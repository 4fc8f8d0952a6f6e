package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockroom/m/internal/logger"
)

// productColumns is the expected CSV header.
var productColumns = []string{"name", "sku", "stock", "selling_price", "cost_price", "expiry_date"}

// LoadProducts reads a product catalog CSV from path and inserts it.
func LoadProducts(ctx context.Context, db *sqlx.DB, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open product catalog %s: %w", path, err)
	}
	defer file.Close()
	return ImportProducts(ctx, db, file)
}

// ImportProducts inserts the catalog rows read from r in one transaction and
// returns how many were added. Rows whose SKU already exists are ignored;
// malformed rows are logged and skipped.
func ImportProducts(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read product header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin product import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO products (name, sku, stock, selling_price, cost_price, expiry_date)
		VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (sku) DO NOTHING`))
	if err != nil {
		return 0, fmt.Errorf("prepare product insert: %w", err)
	}
	defer stmt.Close()

	rows := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("unable to read product row %d: %v", line, err)
			continue
		}
		p, err := parseProduct(record, index)
		if err != nil {
			logger.Warn("skipping product row %d: %v", line, err)
			continue
		}

		res, err := stmt.ExecContext(ctx, p.name, p.sku, p.stock, p.sellingPrice, p.costPrice, p.expiryDate)
		if err != nil {
			return rows, fmt.Errorf("insert product %s: %w", p.sku, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit product import: %w", err)
	}
	logger.Info("seeded product catalog with %d rows", rows)
	return rows, nil
}

type productRow struct {
	name         string
	sku          string
	stock        int64
	sellingPrice decimal.Decimal
	costPrice    decimal.NullDecimal
	expiryDate   *string
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range productColumns[:4] {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("product catalog is missing column %q", col)
		}
	}
	return index, nil
}

func field(record []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseProduct(record []string, index map[string]int) (productRow, error) {
	p := productRow{
		name: field(record, index, "name"),
		sku:  field(record, index, "sku"),
	}
	if p.name == "" || p.sku == "" {
		return p, errors.New("name and sku are required")
	}

	stock, err := strconv.ParseInt(field(record, index, "stock"), 10, 64)
	if err != nil || stock < 0 {
		return p, fmt.Errorf("invalid stock %q", field(record, index, "stock"))
	}
	p.stock = stock

	if p.sellingPrice, err = decimal.NewFromString(field(record, index, "selling_price")); err != nil {
		return p, fmt.Errorf("invalid selling_price: %w", err)
	}

	if raw := field(record, index, "cost_price"); raw != "" {
		cost, err := decimal.NewFromString(raw)
		if err != nil {
			return p, fmt.Errorf("invalid cost_price: %w", err)
		}
		p.costPrice = decimal.NewNullDecimal(cost)
	}

	if raw := field(record, index, "expiry_date"); raw != "" {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return p, errors.New("expiry_date must be in YYYY-MM-DD format")
		}
		p.expiryDate = &raw
	}
	return p, nil
}
