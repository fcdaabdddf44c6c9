package commission

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const configCacheTTL = 5 * time.Minute

// Calculator computes the platform/seller revenue split for order lines.
// Config lookups go through Redis when a client is provided; the calculator
// works without one.
type Calculator struct {
	repo  ConfigRepository
	cache *redis.Client
}

// NewCalculator creates a calculator. cache may be nil.
func NewCalculator(repo ConfigRepository, cache *redis.Client) *Calculator {
	return &Calculator{repo: repo, cache: cache}
}

// Calculate resolves the seller's fee configuration and splits lineTotal.
// An unknown seller yields zero commission rather than an error.
func (c *Calculator) Calculate(ctx context.Context, lineTotal float64, sellerID int64) (*Result, error) {
	cfg, err := c.configFor(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		slog.WarnContext(ctx, "seller not found, using zero commission", "seller_id", sellerID)
		cfg = &Config{FeeType: FeeNone}
	}
	return FromConfig(lineTotal, *cfg), nil
}

// SplitLine is the narrow form used at order creation time: just the two
// persisted amounts.
func (c *Calculator) SplitLine(ctx context.Context, lineTotal float64, sellerID int64) (platformFee, sellerAmount float64, err error) {
	res, err := c.Calculate(ctx, lineTotal, sellerID)
	if err != nil {
		return 0, 0, err
	}
	return res.PlatformFee, res.SellerAmount, nil
}

// CalculateBulk splits many lines and sums both sides alongside the
// per-line breakdown.
func (c *Calculator) CalculateBulk(ctx context.Context, lines []LineInput) (*BulkResult, error) {
	bulk := &BulkResult{Breakdown: make([]*Result, 0, len(lines))}
	for _, line := range lines {
		res, err := c.Calculate(ctx, line.LineTotal, line.SellerID)
		if err != nil {
			return nil, err
		}
		bulk.Breakdown = append(bulk.Breakdown, res)
		bulk.TotalLineTotal += res.LineTotal
		bulk.TotalPlatformFee += res.PlatformFee
		bulk.TotalSellerAmount += res.SellerAmount
	}
	bulk.TotalPlatformFee = round2(bulk.TotalPlatformFee)
	bulk.TotalSellerAmount = round2(bulk.TotalSellerAmount)
	return bulk, nil
}

// Preview exposes the split for an arbitrary amount without persisting
// anything, for showing sellers their cut before an order exists.
func (c *Calculator) Preview(ctx context.Context, sellerID int64, amount float64) (*Result, error) {
	return c.Calculate(ctx, amount, sellerID)
}

func (c *Calculator) configFor(ctx context.Context, sellerID int64) (*Config, error) {
	key := cacheKey(sellerID)
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, key).Result(); err == nil {
			var cfg Config
			if err := json.Unmarshal([]byte(raw), &cfg); err == nil {
				return &cfg, nil
			}
		}
	}

	cfg, err := c.repo.ConfigForSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && cfg != nil {
		if raw, err := json.Marshal(cfg); err == nil {
			c.cache.Set(ctx, key, raw, configCacheTTL)
		}
	}
	return cfg, nil
}

func cacheKey(sellerID int64) string {
	return "commission:config:" + strconv.FormatInt(sellerID, 10)
}

// FromConfig splits lineTotal with an already-resolved configuration.
// The platform fee is clamped to [0, lineTotal] so a misconfigured fixed
// fee can never make the seller amount negative. Non-positive totals
// short-circuit to zero fee.
func FromConfig(lineTotal float64, cfg Config) *Result {
	feeType := cfg.FeeType
	if feeType == "" {
		feeType = FeeNone
	}

	if lineTotal <= 0 {
		return &Result{
			LineTotal:    lineTotal,
			PlatformFee:  0,
			SellerAmount: lineTotal,
			FeeType:      feeType,
			FeeRate:      0,
		}
	}

	var fee float64
	switch feeType {
	case FeePercentage:
		fee = lineTotal * (cfg.FeeAmount / 100)
	case FeeFixed:
		fee = cfg.FeeAmount
	default:
		fee = 0
	}

	if fee < 0 {
		fee = 0
	}
	if fee > lineTotal {
		fee = lineTotal
	}

	return &Result{
		LineTotal:    lineTotal,
		PlatformFee:  round2(fee),
		SellerAmount: round2(lineTotal - fee),
		FeeType:      feeType,
		FeeRate:      cfg.FeeAmount,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
