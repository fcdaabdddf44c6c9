package commission

import "context"

// ConfigRepository resolves a seller's fee configuration.
type ConfigRepository interface {
	// ConfigForSeller returns the seller's own fee configuration when set,
	// else the default configuration of the seller's category. A nil result
	// means the seller is unknown.
	ConfigForSeller(ctx context.Context, sellerID int64) (*Config, error)
}
