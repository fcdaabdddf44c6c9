package inventory

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed inventory store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) FindFulfillmentLocation(ctx context.Context, variantID int64, qty int) (int64, error) {
	var locationID int64
	err := r.db.QueryRowContext(ctx, `
		SELECT location_id FROM variant_stock
		WHERE variant_id=$1 AND available - reserved >= $2
		ORDER BY available - reserved DESC
		LIMIT 1`, variantID, qty).Scan(&locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return locationID, err
}

func (r *postgresRepo) ReservedLocation(ctx context.Context, variantID int64) (int64, error) {
	var locationID int64
	err := r.db.QueryRowContext(ctx, `
		SELECT location_id FROM variant_stock
		WHERE variant_id=$1 AND reserved > 0
		ORDER BY reserved DESC
		LIMIT 1`, variantID).Scan(&locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return locationID, err
}

func (r *postgresRepo) StockLevels(ctx context.Context, variantID int64) ([]*Stock, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT variant_id, location_id, available, reserved, updated_at
		FROM variant_stock WHERE variant_id=$1 ORDER BY location_id`, variantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []*Stock
	for rows.Next() {
		s := &Stock{}
		if err := rows.Scan(&s.VariantID, &s.LocationID, &s.Available, &s.Reserved, &s.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, s)
	}
	return levels, rows.Err()
}

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(TxStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type txStore struct{ tx *sql.Tx }

func (s *txStore) StockForUpdate(ctx context.Context, variantID, locationID int64) (*Stock, error) {
	st := &Stock{}
	err := s.tx.QueryRowContext(ctx, `
		SELECT variant_id, location_id, available, reserved, updated_at
		FROM variant_stock
		WHERE variant_id=$1 AND location_id=$2
		FOR UPDATE`, variantID, locationID).
		Scan(&st.VariantID, &st.LocationID, &st.Available, &st.Reserved, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *txStore) AdjustStock(ctx context.Context, variantID, locationID int64, availableDelta, reservedDelta int) error {
	_, err := s.tx.ExecContext(ctx, `
		UPDATE variant_stock
		SET available = available + $3, reserved = reserved + $4, updated_at = $5
		WHERE variant_id=$1 AND location_id=$2`,
		variantID, locationID, availableDelta, reservedDelta, time.Now())
	return err
}

func (s *txStore) InsertReservation(ctx context.Context, res *Reservation) error {
	return s.tx.QueryRowContext(ctx, `
		INSERT INTO stock_reservations (order_id, variant_id, location_id, quantity, state)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		res.OrderID, res.VariantID, res.LocationID, res.Quantity, res.State).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

func (s *txStore) LiveReservation(ctx context.Context, orderID, variantID, locationID int64) (*Reservation, error) {
	res := &Reservation{}
	err := s.tx.QueryRowContext(ctx, `
		SELECT id, order_id, variant_id, location_id, quantity, state, created_at, updated_at
		FROM stock_reservations
		WHERE order_id=$1 AND variant_id=$2 AND location_id=$3 AND state=$4
		FOR UPDATE`, orderID, variantID, locationID, ReservationReserved).
		Scan(&res.ID, &res.OrderID, &res.VariantID, &res.LocationID,
			&res.Quantity, &res.State, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *txStore) SetReservationState(ctx context.Context, id int64, state ReservationState) error {
	_, err := s.tx.ExecContext(ctx, `
		UPDATE stock_reservations SET state=$2, updated_at=$3 WHERE id=$1`,
		id, state, time.Now())
	return err
}
