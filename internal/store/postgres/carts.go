package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront/internal/model"
)

func (s *Store) UpsertCartLine(ctx context.Context, userID, productID int64, quantity int) (model.CartLine, error) {
	query := `
		INSERT INTO cart_lines (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
		RETURNING id, user_id, product_id, quantity
	`
	var l model.CartLine
	err := s.pool.QueryRow(ctx, query, userID, productID, quantity).Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity)
	return l, mapErr(err)
}

func (s *Store) GetCartLine(ctx context.Context, id int64) (model.CartLine, error) {
	var l model.CartLine
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, product_id, quantity FROM cart_lines WHERE id = $1`, id,
	).Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity)
	return l, mapErr(err)
}

func (s *Store) DeleteCartLine(ctx context.Context, id int64) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, id))
}

func (s *Store) ListCartItems(ctx context.Context, userID int64) ([]model.CartItem, error) {
	query := `
		SELECT c.id, c.product_id, p.name, p.price::text, p.stock, c.quantity, p.images::text
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CartItem{}
	for rows.Next() {
		var (
			it     model.CartItem
			price  string
			images string
		)
		if err := rows.Scan(&it.CartLineID, &it.ProductID, &it.Name, &price, &it.Stock, &it.Quantity, &images); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		it.Images = model.ParseImages(images)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) CountCartItems(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM cart_lines WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (s *Store) ClearCart(ctx context.Context, userID int64) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
