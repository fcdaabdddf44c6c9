package shipping

import (
	"context"
	"database/sql"
	"errors"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed shipping method repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const methodColumns = `id, name, code, base_rate, per_kg_rate, free_over, estimated_days, is_active, created_at, updated_at`

func (r *postgresRepo) GetMethodByID(ctx context.Context, id int64) (*Method, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+methodColumns+` FROM shipping_methods WHERE id=$1`, id)
	m, err := scanMethod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *postgresRepo) ListActiveMethods(ctx context.Context) ([]*Method, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+methodColumns+` FROM shipping_methods WHERE is_active ORDER BY base_rate ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []*Method
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanMethod(row rowScanner) (*Method, error) {
	m := &Method{}
	var freeOver sql.NullFloat64
	err := row.Scan(&m.ID, &m.Name, &m.Code, &m.BaseRate, &m.PerKgRate,
		&freeOver, &m.EstimatedDays, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if freeOver.Valid {
		m.FreeOver = &freeOver.Float64
	}
	return m, nil
}
