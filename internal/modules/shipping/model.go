package shipping

import "time"

// Method is a configured shipping option. Rate = BaseRate + PerKgRate×weight,
// waived entirely when FreeOver is set and the subtotal reaches it.
type Method struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	BaseRate      float64   `json:"base_rate"`
	PerKgRate     float64   `json:"per_kg_rate"`
	FreeOver      *float64  `json:"free_over,omitempty"`
	EstimatedDays int       `json:"estimated_days"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RateQuote is the calculated cost of shipping an order with a method.
type RateQuote struct {
	MethodID       int64   `json:"method_id"`
	MethodName     string  `json:"method_name"`
	CalculatedRate float64 `json:"calculated_rate"`
	EstimatedDays  int     `json:"estimated_days"`
}

// CalculateRequest is the payload for quoting shipping rates.
type CalculateRequest struct {
	MethodID *int64  `json:"method_id,omitempty"`
	Subtotal float64 `json:"subtotal"`
	Weight   float64 `json:"weight"`
}
