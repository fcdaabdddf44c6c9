package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a Postgres-backed order repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, external_ref, user_id, subtotal, shipping_amount, discount_amount,
	tax_amount, total, status, shipping_method_id, billing_address_id, shipping_address_id,
	placed_at, updated_at`

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

func (r *postgresRepo) FindByID(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	o.History, err = r.loadHistory(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) FindByUser(ctx context.Context, userID int64) ([]*Order, error) {
	return r.queryOrdersWithItems(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY placed_at DESC`, userID)
}

func (r *postgresRepo) FindByStatus(ctx context.Context, status Status) ([]*Order, error) {
	return r.queryOrdersWithItems(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status=$1 ORDER BY placed_at DESC`, status)
}

// sortColumns whitelists the fields the listing may be ordered by.
var sortColumns = map[string]string{
	"placed_at": "placed_at",
	"total":     "total",
	"status":    "status",
	"id":        "id",
}

func (r *postgresRepo) FindWithFilters(ctx context.Context, f Filter) (*PaginatedOrders, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	var where []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		where = append(where, "status="+arg(f.Status))
	}
	if f.UserID != 0 {
		where = append(where, "user_id="+arg(f.UserID))
	}
	if f.StartDate != nil {
		where = append(where, "placed_at >= "+arg(*f.StartDate))
	}
	if f.EndDate != nil {
		where = append(where, "placed_at <= "+arg(*f.EndDate))
	}
	if f.MinAmount != nil {
		where = append(where, "total >= "+arg(*f.MinAmount))
	}
	if f.MaxAmount != nil {
		where = append(where, "total <= "+arg(*f.MaxAmount))
	}
	if f.Search != "" {
		where = append(where, "external_ref ILIKE "+arg("%"+f.Search+"%"))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	orderSQL := " ORDER BY placed_at DESC"
	if col, ok := sortColumns[f.SortBy]; ok {
		dir := "ASC"
		if strings.EqualFold(f.SortOrder, "desc") {
			dir = "DESC"
		}
		orderSQL = fmt.Sprintf(" ORDER BY %s %s", col, dir)
	}

	listArgs := append(append([]interface{}{}, args...),
		limit, (page-1)*limit)
	listSQL := fmt.Sprintf("SELECT "+orderColumns+" FROM orders%s%s LIMIT $%d OFFSET $%d",
		whereSQL, orderSQL, len(args)+1, len(args)+2)

	// Page rows and total count run concurrently.
	var orders []*Order
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = r.queryOrdersWithItems(gctx, listSQL, listArgs...)
		return err
	})
	g.Go(func() error {
		return r.db.QueryRowContext(gctx,
			"SELECT COUNT(*) FROM orders"+whereSQL, args...).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &PaginatedOrders{
		Data: orders,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: limit,
			HasNext:      page < totalPages,
			HasPrev:      page > 1,
		},
	}, nil
}

// UpdateStatus writes the status change and its history row atomically.
func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, status Status, note string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, id, status, time.Now())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %d not found", id)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_status_history (order_id, status, note) VALUES ($1,$2,$3)`,
		id, status, nullableString(note))
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) SalesSummary(ctx context.Context, start, end time.Time) (*SalesSummary, error) {
	s := &SalesSummary{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total), 0),
		       COALESCE(SUM(subtotal), 0),
		       COALESCE(SUM(shipping_amount), 0),
		       COALESCE(AVG(total), 0)
		FROM orders
		WHERE placed_at >= $1 AND placed_at <= $2 AND status <> $3`,
		start, end, StatusCancelled).
		Scan(&s.OrderCount, &s.TotalRevenue, &s.SubtotalSum, &s.ShippingSum, &s.AverageOrder)
	return s, err
}

func (r *postgresRepo) StatusBreakdown(ctx context.Context, start, end time.Time) ([]*StatusBreakdownRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE placed_at >= $1 AND placed_at <= $2
		GROUP BY status
		ORDER BY status`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []*StatusBreakdownRow
	for rows.Next() {
		row := &StatusBreakdownRow{}
		if err := rows.Scan(&row.Status, &row.OrderCount, &row.TotalValue); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, row)
	}
	return breakdown, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) queryOrdersWithItems(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	var ids []int64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}
	return orders, nil
}

// loadItems fetches the items of many orders in one query.
func (r *postgresRepo) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, variant_id, bundle_id, quantity, unit_price, line_total,
		       product_name, sku, seller_id, platform_fee, seller_amount, created_at
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]*Item)
	for rows.Next() {
		item := &Item{}
		var variantID, bundleID sql.NullInt64
		if err := rows.Scan(&item.ID, &item.OrderID, &variantID, &bundleID,
			&item.Quantity, &item.UnitPrice, &item.LineTotal,
			&item.ProductName, &item.SKU, &item.SellerID,
			&item.PlatformFee, &item.SellerAmount, &item.CreatedAt); err != nil {
			return nil, err
		}
		if variantID.Valid {
			item.VariantID = &variantID.Int64
		}
		if bundleID.Valid {
			item.BundleID = &bundleID.Int64
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) loadHistory(ctx context.Context, orderID int64) ([]*StatusHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, status, COALESCE(note, ''), created_at
		FROM order_status_history WHERE order_id=$1 ORDER BY created_at ASC, id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*StatusHistory
	for rows.Next() {
		h := &StatusHistory{}
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Note, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var methodID, billingID, shippingID sql.NullInt64
	err := row.Scan(&o.ID, &o.ExternalRef, &o.UserID, &o.Subtotal, &o.ShippingAmount,
		&o.DiscountAmount, &o.TaxAmount, &o.Total, &o.Status,
		&methodID, &billingID, &shippingID, &o.PlacedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if methodID.Valid {
		o.ShippingMethodID = &methodID.Int64
	}
	if billingID.Valid {
		o.BillingAddressID = &billingID.Int64
	}
	if shippingID.Valid {
		o.ShippingAddressID = &shippingID.Int64
	}
	return o, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// ── transaction-scoped store ─────────────────────────────────────────────────

type txStore struct{ tx *sql.Tx }

func (s *txStore) VariantForOrder(ctx context.Context, variantID int64) (*VariantSnapshot, error) {
	v := &VariantSnapshot{}
	err := s.tx.QueryRowContext(ctx, `
		SELECT v.id, v.product_id, p.seller_id, p.name, v.sku, v.price, v.weight
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id=$1`, variantID).
		Scan(&v.VariantID, &v.ProductID, &v.SellerID, &v.ProductName, &v.SKU, &v.Price, &v.Weight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *txStore) BundleForOrder(ctx context.Context, bundleID int64) (*BundleSnapshot, error) {
	b := &BundleSnapshot{}
	err := s.tx.QueryRowContext(ctx, `
		SELECT id, seller_id, name, sku, price FROM bundles WHERE id=$1`, bundleID).
		Scan(&b.BundleID, &b.SellerID, &b.Name, &b.SKU, &b.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *txStore) NextSequence(ctx context.Context) (int64, error) {
	var next int64
	err := s.tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) + 1 FROM orders`).Scan(&next)
	return next, err
}

func (s *txStore) InsertOrder(ctx context.Context, o *Order) error {
	return s.tx.QueryRowContext(ctx, `
		INSERT INTO orders
		  (external_ref, user_id, subtotal, shipping_amount, discount_amount, tax_amount,
		   total, status, shipping_method_id, billing_address_id, shipping_address_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, placed_at, updated_at`,
		o.ExternalRef, o.UserID, o.Subtotal, o.ShippingAmount, o.DiscountAmount,
		o.TaxAmount, o.Total, o.Status, o.ShippingMethodID, o.BillingAddressID,
		o.ShippingAddressID).
		Scan(&o.ID, &o.PlacedAt, &o.UpdatedAt)
}

func (s *txStore) InsertItem(ctx context.Context, item *Item) error {
	return s.tx.QueryRowContext(ctx, `
		INSERT INTO order_items
		  (order_id, variant_id, bundle_id, quantity, unit_price, line_total,
		   product_name, sku, seller_id, platform_fee, seller_amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at`,
		item.OrderID, item.VariantID, item.BundleID, item.Quantity,
		item.UnitPrice, item.LineTotal, item.ProductName, item.SKU,
		item.SellerID, item.PlatformFee, item.SellerAmount).
		Scan(&item.ID, &item.CreatedAt)
}

func (s *txStore) InsertStatusHistory(ctx context.Context, orderID int64, status Status, note string) error {
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO order_status_history (order_id, status, note) VALUES ($1,$2,$3)`,
		orderID, status, nullableString(note))
	return err
}
