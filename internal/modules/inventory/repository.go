package inventory

import "context"

// Repository defines data access for stock rows and reservations.
type Repository interface {
	// FindFulfillmentLocation picks the location best able to satisfy qty
	// units of a variant (largest free quantity wins). Returns 0 when no
	// location has enough free stock.
	FindFulfillmentLocation(ctx context.Context, variantID int64, qty int) (int64, error)

	// ReservedLocation returns a location holding a positive reserved
	// quantity for the variant, 0 when there is none.
	ReservedLocation(ctx context.Context, variantID int64) (int64, error)

	// StockLevels lists the variant's stock rows across locations.
	StockLevels(ctx context.Context, variantID int64) ([]*Stock, error)

	// WithinTx runs fn inside one transaction; reserve/release/fulfill use
	// it so counter updates and reservation rows commit together.
	WithinTx(ctx context.Context, fn func(TxStore) error) error
}

// TxStore is the transaction-scoped view of the store.
type TxStore interface {
	// StockForUpdate row-locks and returns one stock row, nil when absent.
	StockForUpdate(ctx context.Context, variantID, locationID int64) (*Stock, error)

	// AdjustStock applies deltas to the available and reserved counters.
	AdjustStock(ctx context.Context, variantID, locationID int64, availableDelta, reservedDelta int) error

	// InsertReservation persists a new hold.
	InsertReservation(ctx context.Context, res *Reservation) error

	// LiveReservation returns the still-reserved hold for an order at a
	// location, nil when there is none.
	LiveReservation(ctx context.Context, orderID, variantID, locationID int64) (*Reservation, error)

	// SetReservationState moves a hold to released or fulfilled.
	SetReservationState(ctx context.Context, id int64, state ReservationState) error
}
