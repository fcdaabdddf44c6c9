package bundle

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed bundle store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const bundleColumns = `id, name, sku, price, seller_id, stock, reserved, is_active, created_at, updated_at`

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*Bundle, error) {
	b, err := scanBundle(r.db.QueryRowContext(ctx,
		`SELECT `+bundleColumns+` FROM bundles WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT bundle_id, variant_id, quantity
		FROM bundle_items WHERE bundle_id=$1 ORDER BY variant_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		c := &Component{}
		if err := rows.Scan(&c.BundleID, &c.VariantID, &c.Quantity); err != nil {
			return nil, err
		}
		b.Items = append(b.Items, c)
	}
	return b, rows.Err()
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

func (s *txStore) BundleForUpdate(ctx context.Context, id int64) (*Bundle, error) {
	b, err := scanBundle(s.tx.QueryRowContext(ctx,
		`SELECT `+bundleColumns+` FROM bundles WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (s *txStore) AdjustReserved(ctx context.Context, id int64, delta int) error {
	_, err := s.tx.ExecContext(ctx, `
		UPDATE bundles SET reserved = reserved + $2, updated_at = $3 WHERE id=$1`,
		id, delta, time.Now())
	return err
}

func (s *txStore) InsertReservation(ctx context.Context, res *Reservation) error {
	return s.tx.QueryRowContext(ctx, `
		INSERT INTO bundle_reservations (order_id, bundle_id, quantity, state)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`,
		res.OrderID, res.BundleID, res.Quantity, res.State).
		Scan(&res.ID, &res.CreatedAt)
}

func (s *txStore) LiveReservation(ctx context.Context, orderID, bundleID int64) (*Reservation, error) {
	res := &Reservation{}
	err := s.tx.QueryRowContext(ctx, `
		SELECT id, order_id, bundle_id, quantity, state, created_at
		FROM bundle_reservations
		WHERE order_id=$1 AND bundle_id=$2 AND state=$3
		FOR UPDATE`, orderID, bundleID, reservationReserved).
		Scan(&res.ID, &res.OrderID, &res.BundleID, &res.Quantity, &res.State, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *txStore) CloseReservation(ctx context.Context, id int64) error {
	_, err := s.tx.ExecContext(ctx,
		`UPDATE bundle_reservations SET state=$2 WHERE id=$1`, id, reservationReleased)
	return err
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanBundle(row rowScanner) (*Bundle, error) {
	b := &Bundle{}
	err := row.Scan(&b.ID, &b.Name, &b.SKU, &b.Price, &b.SellerID,
		&b.Stock, &b.Reserved, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}
