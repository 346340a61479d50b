package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront/internal/model"
)

const productColumns = `id, name, price::text, stock, description, images::text`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (model.Product, error) {
	var (
		p      model.Product
		price  string
		images string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Stock, &p.Description, &images); err != nil {
		return model.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return model.Product{}, fmt.Errorf("product %d price: %w", p.ID, err)
	}
	p.Price = d
	p.Images = model.ParseImages(images)
	return p, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	return string(b), err
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	return p, mapErr(err)
}

func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (name, price, stock, description, images)
		VALUES ($1, $2::numeric, $3, $4, $5::jsonb)
		RETURNING id
	`
	return mapErr(s.pool.QueryRow(ctx, query, p.Name, p.Price.String(), p.Stock, p.Description, images).Scan(&p.ID))
}

func (s *Store) UpdateProduct(ctx context.Context, p model.Product) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}
	query := `
		UPDATE products
		SET name = $2, price = $3::numeric, stock = $4, description = $5, images = $6::jsonb
		WHERE id = $1
	`
	return affected(s.pool.Exec(ctx, query, p.ID, p.Name, p.Price.String(), p.Stock, p.Description, images))
}

// DeleteProduct relies on ON DELETE CASCADE to drop cart lines.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id))
}
