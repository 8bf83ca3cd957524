package domain

// InventoryStatistics is a point-in-time summary of the catalog. In-stock and
// out-of-stock counts only consider active products.
type InventoryStatistics struct {
	TotalProducts      int64 `json:"total_products"`
	ActiveProducts     int64 `json:"active_products"`
	InactiveProducts   int64 `json:"inactive_products"`
	ProductsInStock    int64 `json:"products_in_stock"`
	ProductsOutOfStock int64 `json:"products_out_of_stock"`
}
