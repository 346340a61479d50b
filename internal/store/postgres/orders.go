package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront/internal/model"
)

type pgTx struct {
	tx pgx.Tx
}

// LockProducts takes row locks in ascending id order so that concurrent
// orders over overlapping products cannot deadlock.
func (t *pgTx) LockProducts(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := t.tx.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]model.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (t *pgTx) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("decrement stock: quantity %d must be positive", qty)
	}
	tag, err := t.tx.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`, id, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *model.Order) error {
	query := `INSERT INTO orders (user_id, total, created_at) VALUES ($1, $2::numeric, $3) RETURNING id`
	return t.tx.QueryRow(ctx, query, o.UserID, o.Total.String(), o.CreatedAt).Scan(&o.ID)
}

func (t *pgTx) InsertOrderLine(ctx context.Context, l *model.OrderLine) error {
	query := `
		INSERT INTO order_lines (order_id, product_id, quantity, subtotal)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING id
	`
	return t.tx.QueryRow(ctx, query, l.OrderID, l.ProductID, l.Quantity, l.Subtotal.String()).Scan(&l.ID)
}

func (s *Store) GetOrderDetail(ctx context.Context, id int64) (model.OrderDetail, error) {
	var (
		d     model.OrderDetail
		total string
	)
	header := `
		SELECT o.id, COALESCE(u.name, ''), COALESCE(u.email, ''), o.created_at, o.total::text
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`
	if err := s.pool.QueryRow(ctx, header, id).Scan(&d.ID, &d.CustomerName, &d.CustomerEmail, &d.Date, &total); err != nil {
		return model.OrderDetail{}, mapErr(err)
	}
	var err error
	if d.Total, err = decimal.NewFromString(total); err != nil {
		return model.OrderDetail{}, err
	}

	lines := `
		SELECT l.product_id, l.quantity, l.subtotal::text,
			COALESCE(p.name, ''), COALESCE(p.price, 0)::text, COALESCE(p.images::text, '[]')
		FROM order_lines l
		LEFT JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.id
	`
	rows, err := s.pool.Query(ctx, lines, id)
	if err != nil {
		return model.OrderDetail{}, err
	}
	defer rows.Close()

	d.Lines = []model.OrderLineDetail{}
	for rows.Next() {
		var (
			ld                      model.OrderLineDetail
			subtotal, price, images string
		)
		if err := rows.Scan(&ld.ProductID, &ld.Quantity, &subtotal, &ld.Name, &price, &images); err != nil {
			return model.OrderDetail{}, err
		}
		if ld.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return model.OrderDetail{}, err
		}
		if ld.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return model.OrderDetail{}, err
		}
		ld.Image = model.FirstImage(model.ParseImages(images))
		d.Lines = append(d.Lines, ld)
	}
	return d, rows.Err()
}

func (s *Store) ListOrderSummaries(ctx context.Context) ([]model.OrderSummary, error) {
	query := `
		SELECT o.id, o.user_id, COALESCE(u.name, ''), o.total::text, o.created_at
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.OrderSummary{}
	for rows.Next() {
		var (
			o     model.OrderSummary
			total string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.CustomerName, &total, &o.Date); err != nil {
			return nil, err
		}
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
