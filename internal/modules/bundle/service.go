package bundle

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced bundle does not exist.
	ErrNotFound = errors.New("bundle not found")
	// ErrInactive means the bundle exists but is not sellable.
	ErrInactive = errors.New("bundle is inactive")
	// ErrUnavailable means bundle stock cannot satisfy the quantity.
	ErrUnavailable = errors.New("bundle unavailable")
	// ErrNotReserved means no live hold exists to release.
	ErrNotReserved = errors.New("no reserved bundle stock for order")
)

// Service is the bundle gateway: composition validation plus bundle-level
// stock holds, mirroring the inventory gateway's contract.
type Service interface {
	// ValidateForOrder checks that a bundle is orderable at a quantity.
	ValidateForOrder(ctx context.Context, bundleID int64, qty int) error

	// Reserve places a bundle-level hold for an order.
	Reserve(ctx context.Context, bundleID int64, qty int, orderID int64) error

	// Release returns a hold to available bundle stock.
	Release(ctx context.Context, bundleID int64, qty int, orderID int64) error
}

type service struct {
	repo Repository
}

// NewService creates a new bundle service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ValidateForOrder(ctx context.Context, bundleID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}
	b, err := s.repo.GetByID(ctx, bundleID)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("bundle %d: %w", bundleID, ErrNotFound)
	}
	if !b.IsActive {
		return fmt.Errorf("bundle %d: %w", bundleID, ErrInactive)
	}
	if len(b.Items) == 0 {
		return fmt.Errorf("bundle %d has no components: %w", bundleID, ErrUnavailable)
	}
	if b.Stock-b.Reserved < qty {
		return fmt.Errorf("bundle %d, requested %d, free %d: %w",
			bundleID, qty, b.Stock-b.Reserved, ErrUnavailable)
	}
	return nil
}

func (s *service) Reserve(ctx context.Context, bundleID int64, qty int, orderID int64) error {
	return s.repo.WithinTx(ctx, func(tx TxStore) error {
		b, err := tx.BundleForUpdate(ctx, bundleID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("bundle %d: %w", bundleID, ErrNotFound)
		}
		if b.Stock-b.Reserved < qty {
			return fmt.Errorf("bundle %d, requested %d, free %d: %w",
				bundleID, qty, b.Stock-b.Reserved, ErrUnavailable)
		}

		if err := tx.AdjustReserved(ctx, bundleID, qty); err != nil {
			return err
		}
		return tx.InsertReservation(ctx, &Reservation{
			OrderID:  orderID,
			BundleID: bundleID,
			Quantity: qty,
			State:    reservationReserved,
		})
	})
}

func (s *service) Release(ctx context.Context, bundleID int64, qty int, orderID int64) error {
	return s.repo.WithinTx(ctx, func(tx TxStore) error {
		res, err := tx.LiveReservation(ctx, orderID, bundleID)
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("bundle %d for order %d: %w", bundleID, orderID, ErrNotReserved)
		}

		if err := tx.AdjustReserved(ctx, bundleID, -res.Quantity); err != nil {
			return err
		}
		return tx.CloseReservation(ctx, res.ID)
	})
}
