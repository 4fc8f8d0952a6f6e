package dashboard

import (
	"context"
	"fmt"
	"time"

	"stockroom/m/domain"
	"stockroom/m/internal/database"
)

const dateLayout = "2006-01-02"

// Defaults applied when no configuration overrides them.
const (
	DefaultLowStockThreshold = 10
	DefaultExpiryHorizonDays = 30
	DefaultTopSellers        = 5
)

// moneyPlaces matches the scale of the NUMERIC(12,2) money columns.
const moneyPlaces = 2

// Options parameterise Aggregate.
type Options struct {
	Today             time.Time
	LowStockThreshold int
	ExpiryHorizonDays int
	TopSellers        int
}

// DefaultOptions returns a threshold of 10, a 30 day horizon and the top 5 sellers.
func DefaultOptions(today time.Time) Options {
	return Options{
		Today:             today,
		LowStockThreshold: DefaultLowStockThreshold,
		ExpiryHorizonDays: DefaultExpiryHorizonDays,
		TopSellers:        DefaultTopSellers,
	}
}

// Aggregate computes the dashboard figures with read-only queries. Figures
// over empty tables are zero; a failing query is returned as an error.
func Aggregate(ctx context.Context, q database.Queryer, opts Options) (*domain.Dashboard, error) {
	today := opts.Today.Format(dateLayout)
	horizon := opts.Today.AddDate(0, 0, opts.ExpiryHorizonDays).Format(dateLayout)

	d := &domain.Dashboard{TopSellers: []domain.TopSeller{}}

	if err := q.GetContext(ctx, &d.TodaySales, q.Rebind(
		`SELECT COALESCE(SUM(final_amount), 0) FROM invoices WHERE DATE(sale_date) = ?`), today); err != nil {
		return nil, fmt.Errorf("today's sales: %w", err)
	}

	if err := q.GetContext(ctx, &d.LowStockCount, q.Rebind(
		`SELECT COUNT(*) FROM products WHERE stock < ?`), opts.LowStockThreshold); err != nil {
		return nil, fmt.Errorf("low stock count: %w", err)
	}

	if err := q.GetContext(ctx, &d.ExpiringSoonCount, q.Rebind(
		`SELECT COUNT(*) FROM products WHERE expiry_date IS NOT NULL AND DATE(expiry_date) <= ?`), horizon); err != nil {
		return nil, fmt.Errorf("expiring soon count: %w", err)
	}

	if err := q.GetContext(ctx, &d.TotalCustomers, `SELECT COUNT(*) FROM customers`); err != nil {
		return nil, fmt.Errorf("customer count: %w", err)
	}

	// Ties on total_sold fall back to product id.
	if err := q.SelectContext(ctx, &d.TopSellers, q.Rebind(`
		SELECT p.id, p.name, SUM(ii.quantity) AS total_sold
		FROM invoice_items ii
		JOIN products p ON ii.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY total_sold DESC, p.id ASC
		LIMIT ?`), opts.TopSellers); err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}

	if err := q.GetContext(ctx, &d.StockValueSelling,
		`SELECT COALESCE(SUM(stock * selling_price), 0) FROM products`); err != nil {
		return nil, fmt.Errorf("stock value at selling price: %w", err)
	}

	if err := q.GetContext(ctx, &d.StockValueCost,
		`SELECT COALESCE(SUM(stock * cost_price), 0) FROM products WHERE cost_price IS NOT NULL`); err != nil {
		return nil, fmt.Errorf("stock value at cost price: %w", err)
	}

	// SQLite sums REAL columns in floating point.
	d.TodaySales = d.TodaySales.Round(moneyPlaces)
	d.StockValueSelling = d.StockValueSelling.Round(moneyPlaces)
	d.StockValueCost = d.StockValueCost.Round(moneyPlaces)

	return d, nil
}
