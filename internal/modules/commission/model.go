package commission

// FeeType selects how the platform fee is derived from a line total.
type FeeType string

const (
	FeePercentage FeeType = "percentage"
	FeeFixed      FeeType = "fixed"
	FeeNone       FeeType = "none"
)

// Config is a seller's resolved fee configuration: the seller's own values
// when set, otherwise the defaults of the seller's category.
type Config struct {
	FeeType   FeeType `json:"fee_type"`
	FeeAmount float64 `json:"fee_amount"`
}

// Result is the revenue split for one line.
type Result struct {
	LineTotal    float64 `json:"line_total"`
	PlatformFee  float64 `json:"platform_fee"`
	SellerAmount float64 `json:"seller_amount"`
	FeeType      FeeType `json:"fee_type"`
	FeeRate      float64 `json:"fee_rate"`
}

// LineInput pairs a line total with the seller fulfilling it.
type LineInput struct {
	LineTotal float64 `json:"line_total"`
	SellerID  int64   `json:"seller_id"`
}

// BulkResult aggregates the split across many lines.
type BulkResult struct {
	TotalLineTotal    float64   `json:"total_line_total"`
	TotalPlatformFee  float64   `json:"total_platform_fee"`
	TotalSellerAmount float64   `json:"total_seller_amount"`
	Breakdown         []*Result `json:"breakdown"`
}
