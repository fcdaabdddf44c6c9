package bundle

import "context"

// Repository defines data access for bundles and their stock holds.
type Repository interface {
	// GetByID retrieves a bundle with its components, nil when absent.
	GetByID(ctx context.Context, id int64) (*Bundle, error)

	// WithinTx runs fn inside one transaction.
	WithinTx(ctx context.Context, fn func(TxStore) error) error
}

// TxStore is the transaction-scoped view of the store.
type TxStore interface {
	// BundleForUpdate row-locks and returns a bundle, nil when absent.
	BundleForUpdate(ctx context.Context, id int64) (*Bundle, error)

	// AdjustReserved applies a delta to the bundle's reserved counter.
	AdjustReserved(ctx context.Context, id int64, delta int) error

	// InsertReservation persists a new hold.
	InsertReservation(ctx context.Context, res *Reservation) error

	// LiveReservation returns the still-reserved hold for an order,
	// nil when there is none.
	LiveReservation(ctx context.Context, orderID, bundleID int64) (*Reservation, error)

	// CloseReservation marks a hold released.
	CloseReservation(ctx context.Context, id int64) error
}
