package bundle

import "time"

// Bundle is a sellable composition of variants with its own stock counter
// and price.
type Bundle struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Price     float64   `json:"price"`
	SellerID  int64     `json:"seller_id"`
	Stock     int       `json:"stock"`
	Reserved  int       `json:"reserved"`
	IsActive  bool      `json:"is_active"`
	Items     []*Component `json:"items,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Component is one variant inside a bundle.
type Component struct {
	BundleID  int64 `json:"bundle_id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// Reservation is a bundle-level stock hold tied to an order.
type Reservation struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	BundleID  int64     `json:"bundle_id"`
	Quantity  int       `json:"quantity"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	reservationReserved = "reserved"
	reservationReleased = "released"
)
