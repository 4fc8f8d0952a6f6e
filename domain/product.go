package domain

import "github.com/shopspring/decimal"

// Product is one catalog row. CostPrice and ExpiryDate are optional.
type Product struct {
	ID           int64               `db:"id" json:"id"`
	Name         string              `db:"name" json:"name"`
	SKU          string              `db:"sku" json:"sku"`
	Stock        int64               `db:"stock" json:"stock"`
	SellingPrice decimal.Decimal     `db:"selling_price" json:"selling_price"`
	CostPrice    decimal.NullDecimal `db:"cost_price" json:"cost_price"`
	ExpiryDate   *string             `db:"expiry_date" json:"expiry_date,omitempty"`
}
