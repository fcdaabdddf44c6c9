package catalog

import "time"

// Product groups sellable variants under one name.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SellerID  int64     `json:"seller_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Variant is the sellable unit. Price and weight feed order totals and
// shipping rates; the order module snapshots them at placement time.
type Variant struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	SKU       string    `json:"sku"`
	Price     float64   `json:"price"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
