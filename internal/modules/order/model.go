package order

import "time"

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the state machine defines no transition out of s.
func (s Status) Terminal() bool {
	return s == StatusShipped || s == StatusCancelled
}

// Order is the aggregate root. Total is always recomputed from its
// components; cancellation is a status change, never a deletion.
type Order struct {
	ID                int64            `json:"id"`
	ExternalRef       string           `json:"external_ref"`
	UserID            int64            `json:"user_id"`
	Subtotal          float64          `json:"subtotal"`
	ShippingAmount    float64          `json:"shipping_amount"`
	DiscountAmount    float64          `json:"discount_amount"`
	TaxAmount         float64          `json:"tax_amount"`
	Total             float64          `json:"total"`
	Status            Status           `json:"status"`
	ShippingMethodID  *int64           `json:"shipping_method_id,omitempty"`
	BillingAddressID  *int64           `json:"billing_address_id,omitempty"`
	ShippingAddressID *int64           `json:"shipping_address_id,omitempty"`
	Items             []*Item          `json:"items,omitempty"`
	History           []*StatusHistory `json:"status_history,omitempty"`
	PlacedAt          time.Time        `json:"placed_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Item is a single line within an order. Exactly one of VariantID or
// BundleID is set. Price, name and SKU are snapshots frozen at order time.
type Item struct {
	ID           int64     `json:"id"`
	OrderID      int64     `json:"order_id"`
	VariantID    *int64    `json:"variant_id,omitempty"`
	BundleID     *int64    `json:"bundle_id,omitempty"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	LineTotal    float64   `json:"line_total"`
	ProductName  string    `json:"product_name"`
	SKU          string    `json:"sku"`
	SellerID     int64     `json:"seller_id"`
	PlatformFee  float64   `json:"platform_fee"`
	SellerAmount float64   `json:"seller_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// StatusHistory is an append-only log entry written on every status
// transition, including initial placement.
type StatusHistory struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Status    Status    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LineRequest describes one requested line: exactly one of VariantID or
// BundleID must be set.
type LineRequest struct {
	VariantID *int64 `json:"variant_id,omitempty"`
	BundleID  *int64 `json:"bundle_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// CreateRequest is the payload for placing a new order.
type CreateRequest struct {
	UserID            int64         `json:"user_id"`
	Items             []LineRequest `json:"items"`
	ShippingMethodID  *int64        `json:"shipping_method_id,omitempty"`
	BillingAddressID  *int64        `json:"billing_address_id,omitempty"`
	ShippingAddressID *int64        `json:"shipping_address_id,omitempty"`
}

// UpdateStatusRequest is the payload for recording a status transition.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
	Note   string `json:"note,omitempty"`
}

// CancelRequest carries the cancellation reason recorded in history.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Filter narrows and pages the admin order listing.
type Filter struct {
	Status    Status
	UserID    int64
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *float64
	MaxAmount *float64
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Pagination describes the page window of a listing result.
type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

// PaginatedOrders is a page of orders plus its pagination envelope.
type PaginatedOrders struct {
	Data       []*Order   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// SalesSummary aggregates non-cancelled orders over a date range.
type SalesSummary struct {
	OrderCount   int64   `json:"order_count"`
	TotalRevenue float64 `json:"total_revenue"`
	SubtotalSum  float64 `json:"subtotal_sum"`
	ShippingSum  float64 `json:"shipping_sum"`
	AverageOrder float64 `json:"average_order"`
}

// StatusBreakdownRow counts orders and revenue per status over a date range.
type StatusBreakdownRow struct {
	Status     Status  `json:"status"`
	OrderCount int64   `json:"order_count"`
	TotalValue float64 `json:"total_value"`
}
