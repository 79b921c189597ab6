package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"orderwarden/internal/model"
)

const orderColumns = `id, order_id, tracking_number, carrier, last_status, last_update_at, risk_level, created_at, updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (model.Order, error) {
	var (
		o          model.Order
		carrier    sql.NullString
		status     sql.NullString
		risk       sql.NullString
		lastUpdate sql.NullTime
	)
	err := row.Scan(&o.ID, &o.OrderID, &o.TrackingNumber, &carrier, &status, &lastUpdate, &risk, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return model.Order{}, err
	}
	o.Carrier = carrier.String
	o.LastStatus = model.Status(status.String)
	o.RiskLevel = model.RiskLevel(risk.String)
	if lastUpdate.Valid {
		t := lastUpdate.Time
		o.LastUpdateAt = &t
	}
	return o, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *PostgresStore) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, userID, id string) (model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id::text = $1 AND user_id = $2
	`, id, userID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) CreateOrder(ctx context.Context, userID string, in model.NewOrder) (model.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE user_id = $1 AND order_id = $2)`,
		userID, in.OrderID,
	).Scan(&exists)
	if err != nil {
		return model.Order{}, fmt.Errorf("check order: %w", err)
	}
	if exists {
		err = ErrOrderExists
		return model.Order{}, err
	}

	o, err := scanOrder(tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, order_id, tracking_number, carrier)
		VALUES ($1, $2, $3, $4)
		RETURNING `+orderColumns,
		userID, in.OrderID, in.TrackingNumber, nullString(in.Carrier),
	))
	if err != nil {
		return model.Order{}, fmt.Errorf("insert order: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return model.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	return o, nil
}

func (s *PostgresStore) DeleteOrder(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id::text = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateTracking(ctx context.Context, userID, id string, u TrackingUpdate) (model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE orders
		SET carrier = COALESCE($3, carrier),
		    last_status = $4,
		    last_update_at = $5,
		    risk_level = $6,
		    updated_at = NOW()
		WHERE id::text = $1 AND user_id = $2
		RETURNING `+orderColumns,
		id, userID, nullString(u.Carrier), string(u.Status), u.LastUpdateAt, string(u.RiskLevel),
	)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("update tracking: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) ListStale(ctx context.Context, before time.Time, limit int) ([]OwnedOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, `+orderColumns+`
		FROM orders
		WHERE (last_status IS NULL OR last_status NOT IN ('delivered', 'delivery_failed'))
		  AND (last_update_at IS NULL OR updated_at < $1)
		ORDER BY (last_update_at IS NOT NULL), updated_at ASC, created_at ASC
		LIMIT $2
	`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale orders: %w", err)
	}
	defer rows.Close()

	var out []OwnedOrder
	for rows.Next() {
		var userID string
		o, err := scanOrder(prefixScanner{row: rows, prefix: &userID})
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, OwnedOrder{UserID: userID, Order: o})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return out, nil
}

// prefixScanner scans leading columns that are not part of the order.
type prefixScanner struct {
	row    rowScanner
	prefix *string
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.row.Scan(append([]any{p.prefix}, dest...)...)
}

func (s *PostgresStore) ImportOrders(ctx context.Context, userID string, orders []model.NewOrder) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	imported := 0
	for _, in := range orders {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO orders (user_id, order_id, tracking_number, carrier)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, order_id) DO NOTHING
		`, userID, in.OrderID, in.TrackingNumber, nullString(in.Carrier))
		if err != nil {
			return 0, fmt.Errorf("import order %s: %w", in.OrderID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		imported += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return imported, nil
}

func (s *PostgresStore) GetEtsyConnection(ctx context.Context, userID string) (EtsyConnection, error) {
	var (
		conn     EtsyConnection
		lastSync sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT shop_name, connected_at, last_sync_at FROM etsy_connections WHERE user_id = $1`,
		userID,
	).Scan(&conn.ShopName, &conn.ConnectedAt, &lastSync)
	if errors.Is(err, sql.ErrNoRows) {
		return EtsyConnection{}, ErrNotFound
	}
	if err != nil {
		return EtsyConnection{}, fmt.Errorf("get etsy connection: %w", err)
	}
	if lastSync.Valid {
		t := lastSync.Time
		conn.LastSyncAt = &t
	}
	return conn, nil
}

func (s *PostgresStore) SaveEtsyConnection(ctx context.Context, userID string, conn EtsyConnection) error {
	var lastSync sql.NullTime
	if conn.LastSyncAt != nil {
		lastSync = sql.NullTime{Time: *conn.LastSyncAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO etsy_connections (user_id, shop_name, connected_at, last_sync_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET shop_name = EXCLUDED.shop_name,
		    connected_at = EXCLUDED.connected_at,
		    last_sync_at = EXCLUDED.last_sync_at
	`, userID, conn.ShopName, conn.ConnectedAt, lastSync)
	if err != nil {
		return fmt.Errorf("save etsy connection: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteEtsyConnection(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM etsy_connections WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete etsy connection: %w", err)
	}
	return nil
}
