package commission

import (
	"context"
	"database/sql"
	"errors"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed fee configuration lookup.
func NewPostgresRepository(db *sql.DB) ConfigRepository { return &postgresRepo{db: db} }

// ConfigForSeller joins the seller row with its category so one query
// yields both the custom configuration and the category default.
func (r *postgresRepo) ConfigForSeller(ctx context.Context, sellerID int64) (*Config, error) {
	var feeType, defaultFeeType sql.NullString
	var feeAmount, defaultFeeAmount sql.NullFloat64

	err := r.db.QueryRowContext(ctx, `
		SELECT s.fee_type, s.fee_amount, c.default_fee_type, c.default_fee_amount
		FROM sellers s
		LEFT JOIN seller_categories c ON c.code = s.category_code
		WHERE s.id=$1`, sellerID).
		Scan(&feeType, &feeAmount, &defaultFeeType, &defaultFeeAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if feeType.Valid && feeAmount.Valid {
		return &Config{FeeType: FeeType(feeType.String), FeeAmount: feeAmount.Float64}, nil
	}
	if defaultFeeType.Valid && defaultFeeAmount.Valid {
		return &Config{FeeType: FeeType(defaultFeeType.String), FeeAmount: defaultFeeAmount.Float64}, nil
	}
	return &Config{FeeType: FeeNone}, nil
}
