package inventory

import (
	"context"
	"fmt"

	"stockroom/m/domain"
	"stockroom/m/internal/database"
)

// ListAll returns every product row, unfiltered, in the store's default order.
func ListAll(ctx context.Context, q database.Queryer) ([]domain.Product, error) {
	products := []domain.Product{}
	err := q.SelectContext(ctx, &products,
		`SELECT id, name, sku, stock, selling_price, cost_price, expiry_date FROM products`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
