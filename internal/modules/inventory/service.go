package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrInsufficientStock means no location can satisfy the requested hold.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrNotReserved means no live reservation exists to release or fulfill.
	ErrNotReserved = errors.New("no reserved stock for order")
)

// Service is the stock reservation gateway. It owns the stock counters:
// concurrent reservations against the same variant serialize on the
// row lock taken inside each operation's transaction.
type Service interface {
	// FindFulfillmentLocation picks a location with enough free stock,
	// 0 when none exists.
	FindFulfillmentLocation(ctx context.Context, variantID int64, qty int) (int64, error)

	// Reserve places a hold of qty units for an order.
	Reserve(ctx context.Context, variantID, locationID int64, qty int, orderID int64) error

	// Release returns a hold to available stock.
	Release(ctx context.Context, variantID, locationID int64, qty int, orderID int64) error

	// Fulfill converts a hold into a permanent stock decrement.
	Fulfill(ctx context.Context, variantID, locationID int64, qty int, orderID int64) error

	// ReservedLocation finds a location holding reserved stock for the
	// variant, 0 when none.
	ReservedLocation(ctx context.Context, variantID int64) (int64, error)

	// StockLevels lists a variant's stock rows across locations.
	StockLevels(ctx context.Context, variantID int64) ([]*Stock, error)
}

type service struct {
	repo Repository
}

// NewService creates a new inventory service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) FindFulfillmentLocation(ctx context.Context, variantID int64, qty int) (int64, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be positive, got %d", qty)
	}
	return s.repo.FindFulfillmentLocation(ctx, variantID, qty)
}

func (s *service) Reserve(ctx context.Context, variantID, locationID int64, qty int, orderID int64) error {
	return s.repo.WithinTx(ctx, func(tx TxStore) error {
		stock, err := tx.StockForUpdate(ctx, variantID, locationID)
		if err != nil {
			return err
		}
		if stock == nil || stock.Available-stock.Reserved < qty {
			return fmt.Errorf("variant %d at location %d, requested %d: %w",
				variantID, locationID, qty, ErrInsufficientStock)
		}

		if err := tx.AdjustStock(ctx, variantID, locationID, 0, qty); err != nil {
			return err
		}
		return tx.InsertReservation(ctx, &Reservation{
			OrderID:    orderID,
			VariantID:  variantID,
			LocationID: locationID,
			Quantity:   qty,
			State:      ReservationReserved,
		})
	})
}

func (s *service) Release(ctx context.Context, variantID, locationID int64, qty int, orderID int64) error {
	return s.repo.WithinTx(ctx, func(tx TxStore) error {
		res, err := tx.LiveReservation(ctx, orderID, variantID, locationID)
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("variant %d at location %d for order %d: %w",
				variantID, locationID, orderID, ErrNotReserved)
		}
		if res.Quantity != qty {
			slog.WarnContext(ctx, "release quantity differs from reservation, using reserved quantity",
				"order_id", orderID, "variant_id", variantID,
				"requested", qty, "reserved", res.Quantity)
		}

		if err := tx.AdjustStock(ctx, variantID, locationID, 0, -res.Quantity); err != nil {
			return err
		}
		return tx.SetReservationState(ctx, res.ID, ReservationReleased)
	})
}

func (s *service) Fulfill(ctx context.Context, variantID, locationID int64, qty int, orderID int64) error {
	return s.repo.WithinTx(ctx, func(tx TxStore) error {
		res, err := tx.LiveReservation(ctx, orderID, variantID, locationID)
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("variant %d at location %d for order %d: %w",
				variantID, locationID, orderID, ErrNotReserved)
		}

		if err := tx.AdjustStock(ctx, variantID, locationID, -res.Quantity, -res.Quantity); err != nil {
			return err
		}
		return tx.SetReservationState(ctx, res.ID, ReservationFulfilled)
	})
}

func (s *service) ReservedLocation(ctx context.Context, variantID int64) (int64, error) {
	return s.repo.ReservedLocation(ctx, variantID)
}

func (s *service) StockLevels(ctx context.Context, variantID int64) ([]*Stock, error) {
	return s.repo.StockLevels(ctx, variantID)
}
