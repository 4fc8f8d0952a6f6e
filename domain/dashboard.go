package domain

import "github.com/shopspring/decimal"

type TopSeller struct {
	ProductID int64  `db:"id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	TotalSold int64  `db:"total_sold" json:"total_sold"`
}

// Dashboard bundles the figures shown on the merchant's landing page.
type Dashboard struct {
	TodaySales        decimal.Decimal `json:"today_sales"`
	LowStockCount     int64           `json:"low_stock_count"`
	ExpiringSoonCount int64           `json:"expiring_soon_count"`
	TotalCustomers    int64           `json:"total_customers"`
	TopSellers        []TopSeller     `json:"top_selling_products"`
	StockValueSelling decimal.Decimal `json:"total_stock_value_selling"`
	StockValueCost    decimal.Decimal `json:"total_stock_value_cost"`
}
