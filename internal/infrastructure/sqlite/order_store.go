package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/Denis-77/megano-store/internal/domain/order"
)

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) Insert(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("sqlite: order id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: insert order: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders(
			id, user_id, total_cost_cents, status,
			delivery_name, delivery_email, delivery_phone,
			city, address, delivery_type, payment_type,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.TotalCostCents, string(o.Status),
		o.Delivery.Name, o.Delivery.Email, o.Delivery.Phone,
		o.Delivery.City, o.Delivery.Address, o.Delivery.DeliveryType, o.Delivery.PaymentType,
		o.CreatedAt.Format(time.RFC3339Nano), o.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order: %w", err)
	}

	for _, l := range o.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines(order_id, product_id, title, qty, unit_price_cents)
			VALUES (?, ?, ?, ?, ?)`,
			o.ID, l.ProductID, l.Title, l.Quantity, l.UnitPriceCents,
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	o := &domain.Order{ID: id}
	var status, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, total_cost_cents, status,
			delivery_name, delivery_email, delivery_phone,
			city, address, delivery_type, payment_type,
			created_at, updated_at
		FROM orders WHERE id=?`, id,
	).Scan(
		&o.UserID, &o.TotalCostCents, &status,
		&o.Delivery.Name, &o.Delivery.Email, &o.Delivery.Phone,
		&o.Delivery.City, &o.Delivery.Address, &o.Delivery.DeliveryType, &o.Delivery.PaymentType,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order: %w", err)
	}
	o.Status = domain.Status(status)
	o.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	o.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	if o.Lines, err = s.lines(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderStore) Update(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("sqlite: order id is required")
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status=?, delivery_type=?, payment_type=?, city=?, address=?, updated_at=?
		WHERE id=?`,
		string(o.Status), o.Delivery.DeliveryType, o.Delivery.PaymentType,
		o.Delivery.City, o.Delivery.Address,
		o.UpdatedAt.Format(time.RFC3339Nano), o.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update order: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM orders WHERE user_id=? ORDER BY created_at`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: list orders: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *OrderStore) lines(ctx context.Context, orderID string) ([]domain.Line, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, title, qty, unit_price_cents
		FROM order_lines WHERE order_id=?`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: order lines: %w", err)
	}
	defer rows.Close()

	var out []domain.Line
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ProductID, &l.Title, &l.Quantity, &l.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("sqlite: order lines: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
