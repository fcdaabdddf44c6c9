package catalog

import "context"

// Repository defines read access to products and variants.
type Repository interface {
	// GetVariantByID retrieves a variant, nil when absent.
	GetVariantByID(ctx context.Context, id int64) (*Variant, error)

	// GetProductByID retrieves a product, nil when absent.
	GetProductByID(ctx context.Context, id int64) (*Product, error)

	// ListVariantsByProduct returns a product's variants.
	ListVariantsByProduct(ctx context.Context, productID int64) ([]*Variant, error)
}
