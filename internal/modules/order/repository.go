package order

import (
	"context"
	"time"
)

// Repository defines data access for the order aggregate.
type Repository interface {
	// WithinTx runs fn inside one atomic unit of work. The creation use
	// case computes totals and persists the order, its items and the
	// initial history row through the TxStore it receives.
	WithinTx(ctx context.Context, fn func(TxStore) error) error

	// FindByID retrieves an order with items and status history,
	// nil when absent.
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindByUser returns a user's orders with items, newest first.
	FindByUser(ctx context.Context, userID int64) ([]*Order, error)

	// FindByStatus returns all orders currently in a status.
	FindByStatus(ctx context.Context, status Status) ([]*Order, error)

	// FindWithFilters pages the order listing.
	FindWithFilters(ctx context.Context, f Filter) (*PaginatedOrders, error)

	// UpdateStatus writes the status change and its history row in one
	// transaction.
	UpdateStatus(ctx context.Context, id int64, status Status, note string) error

	// SalesSummary aggregates non-cancelled orders placed in a date range.
	SalesSummary(ctx context.Context, start, end time.Time) (*SalesSummary, error)

	// StatusBreakdown counts orders and revenue per status in a date range.
	StatusBreakdown(ctx context.Context, start, end time.Time) ([]*StatusBreakdownRow, error)
}

// VariantSnapshot is the variant data re-fetched inside the creation
// transaction so totals never act on stale pre-transaction reads.
type VariantSnapshot struct {
	VariantID   int64
	ProductID   int64
	SellerID    int64
	ProductName string
	SKU         string
	Price       float64
	Weight      float64
}

// BundleSnapshot is the bundle equivalent of VariantSnapshot.
type BundleSnapshot struct {
	BundleID int64
	SellerID int64
	Name     string
	SKU      string
	Price    float64
}

// TxStore is the transaction-scoped view used by the creation use case.
type TxStore interface {
	// VariantForOrder fetches the price/weight/name/SKU/seller snapshot,
	// nil when the variant is absent.
	VariantForOrder(ctx context.Context, variantID int64) (*VariantSnapshot, error)

	// BundleForOrder fetches the bundle snapshot, nil when absent.
	BundleForOrder(ctx context.Context, bundleID int64) (*BundleSnapshot, error)

	// NextSequence returns max(id)+1. Advisory only: under concurrent
	// inserts the derived external reference may collide or skip.
	NextSequence(ctx context.Context) (int64, error)

	// InsertOrder persists the order row and fills in its id/timestamps.
	InsertOrder(ctx context.Context, o *Order) error

	// InsertItem persists one line item.
	InsertItem(ctx context.Context, item *Item) error

	// InsertStatusHistory appends a history row.
	InsertStatusHistory(ctx context.Context, orderID int64, status Status, note string) error
}
