package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/Denis-77/megano-store/internal/domain/basket"
)

// LineStore persists basket lines in sqlite. Each mutation is a single
// statement so the store stays consistent without explicit transactions.
type LineStore struct {
	db *sql.DB
}

func NewLineStore(db *sql.DB) *LineStore {
	return &LineStore{db: db}
}

func (s *LineStore) Get(ctx context.Context, owner domain.Owner, productID string) (int, error) {
	var qty int
	err := s.db.QueryRowContext(ctx, `
		SELECT qty FROM basket_lines
		WHERE owner_kind=? AND owner_id=? AND product_id=?`,
		string(owner.Kind), owner.ID, productID,
	).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: get line: %w", err)
	}
	return qty, nil
}

func (s *LineStore) Upsert(ctx context.Context, owner domain.Owner, productID string, quantity int) error {
	if quantity <= 0 {
		return s.Delete(ctx, owner, productID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO basket_lines(owner_kind, owner_id, product_id, qty)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_kind, owner_id, product_id)
		DO UPDATE SET qty = excluded.qty`,
		string(owner.Kind), owner.ID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert line: %w", err)
	}
	return nil
}

func (s *LineStore) Delete(ctx context.Context, owner domain.Owner, productID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM basket_lines
		WHERE owner_kind=? AND owner_id=? AND product_id=?`,
		string(owner.Kind), owner.ID, productID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: delete line: %w", err)
	}
	return nil
}

func (s *LineStore) List(ctx context.Context, owner domain.Owner) ([]domain.Line, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, qty FROM basket_lines
		WHERE owner_kind=? AND owner_id=?`,
		string(owner.Kind), owner.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list lines: %w", err)
	}
	defer rows.Close()

	var out []domain.Line
	for rows.Next() {
		line := domain.Line{Owner: owner}
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("sqlite: list lines: %w", err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (s *LineStore) Clear(ctx context.Context, owner domain.Owner) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM basket_lines WHERE owner_kind=? AND owner_id=?`,
		string(owner.Kind), owner.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: clear lines: %w", err)
	}
	return nil
}

func (s *LineStore) PurgeProduct(ctx context.Context, productID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM basket_lines WHERE product_id=?`, productID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: purge product lines: %w", err)
	}
	return nil
}
