package order

import (
	"context"

	"github.com/tmwansa/markethub-backend/internal/modules/notification"
)

// InventoryGateway is the stock reservation contract the orchestrator
// consumes. The gateway owns the stock counters; reservation calls made
// outside the order transaction are serialized there, not here.
type InventoryGateway interface {
	// FindFulfillmentLocation returns a location able to satisfy qty units,
	// 0 when none can.
	FindFulfillmentLocation(ctx context.Context, variantID int64, qty int) (int64, error)

	// Reserve holds qty units at a location for an order.
	Reserve(ctx context.Context, variantID, locationID int64, qty int, orderID int64) error

	// Release returns a hold to available stock.
	Release(ctx context.Context, variantID, locationID int64, qty int, orderID int64) error

	// Fulfill converts a hold into a permanent decrement.
	Fulfill(ctx context.Context, variantID, locationID int64, qty int, orderID int64) error

	// ReservedLocation finds the location holding reserved stock for a
	// variant, 0 when none.
	ReservedLocation(ctx context.Context, variantID int64) (int64, error)
}

// BundleGateway validates bundle composition and manages bundle-level
// stock holds, mirroring the inventory contract for bundle lines.
type BundleGateway interface {
	ValidateForOrder(ctx context.Context, bundleID int64, qty int) error
	Reserve(ctx context.Context, bundleID int64, qty int, orderID int64) error
	Release(ctx context.Context, bundleID int64, qty int, orderID int64) error
}

// ShippingGateway validates a chosen shipping method and quotes its cost.
type ShippingGateway interface {
	ValidateMethod(ctx context.Context, methodID int64) error
	CalculateRate(ctx context.Context, methodID int64, subtotal, weight float64) (float64, error)
}

// CommissionGateway splits a line total between the platform and the
// fulfilling seller.
type CommissionGateway interface {
	SplitLine(ctx context.Context, lineTotal float64, sellerID int64) (platformFee, sellerAmount float64, err error)
}

// EventBus receives the domain events the use-case methods emit.
type EventBus interface {
	Publish(ctx context.Context, evt notification.Event)
}
