package inventory

import "time"

// Stock tracks a variant's quantities at one fulfillment location.
// Available is the on-hand count; Reserved is the portion held for orders.
type Stock struct {
	VariantID  int64     `json:"variant_id"`
	LocationID int64     `json:"location_id"`
	Available  int       `json:"available"`
	Reserved   int       `json:"reserved"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReservationState is the lifecycle of a stock hold.
type ReservationState string

const (
	ReservationReserved  ReservationState = "reserved"
	ReservationReleased  ReservationState = "released"
	ReservationFulfilled ReservationState = "fulfilled"
)

// Reservation associates a quantity of stock at a location with an order.
// It is either fulfilled on shipment or released on cancellation.
type Reservation struct {
	ID         int64            `json:"id"`
	OrderID    int64            `json:"order_id"`
	VariantID  int64            `json:"variant_id"`
	LocationID int64            `json:"location_id"`
	Quantity   int              `json:"quantity"`
	State      ReservationState `json:"state"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
