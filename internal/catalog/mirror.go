package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found in mirror")

// Mirror keeps the last product listing in sqlite so browsing and stock lookups keep
// working while the API is unreachable.
type Mirror struct {
	db *sql.DB
}

func NewMirror(db *sql.DB) *Mirror {
	return &Mirror{db: db}
}

// Replace swaps the mirrored listing for products, keeping their order.
func (m *Mirror) Replace(ctx context.Context, products []domain.Product) error {
	return m.write(ctx, products, true)
}

// Upsert refreshes products from a partial listing. Rows it does not name are kept
// and new rows go after the existing ones.
func (m *Mirror) Upsert(ctx context.Context, products []domain.Product) error {
	return m.write(ctx, products, false)
}

func (m *Mirror) write(ctx context.Context, products []domain.Product, replace bool) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin mirror tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	base := 0
	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_products`); err != nil {
			return fmt.Errorf("failed to clear mirror: %w", err)
		}
	} else {
		err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM catalog_products`).Scan(&base)
		if err != nil {
			return fmt.Errorf("failed to read mirror position: %w", err)
		}
	}

	// existing rows keep their position
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_products (id, name, description, price, quantity, image_url, color, size, position, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			quantity = excluded.quantity,
			image_url = excluded.image_url,
			color = excluded.color,
			size = excluded.size,
			synced_at = excluded.synced_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mirror insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, p := range products {
		if p.ID == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Description, p.Price.String(), p.Quantity, p.ImageURL, p.Color, string(p.Size), base+i, now)
		if err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mirror: %w", err)
	}
	return nil
}

// List returns up to limit mirrored products in listing order; limit <= 0 means all.
func (m *Mirror) List(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price, quantity, image_url, color, size
		FROM catalog_products
		ORDER BY position
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mirror: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (m *Mirror) Get(ctx context.Context, id string) (domain.Product, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, quantity, image_url, color, size
		FROM catalog_products
		WHERE id = ?
	`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (domain.Product, error) {
	var (
		p     domain.Product
		price string
		size  string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Quantity, &p.ImageURL, &p.Color, &size); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan product: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return p, fmt.Errorf("bad mirrored price for %s: %w", p.ID, err)
	}
	p.Price = d
	p.Size = domain.Size(size)
	return p, nil
}
