package postgres

import (
	"context"

	"github.com/fairyhunter13/storefront/internal/model"
)

const blogColumns = `id, title, author, date, image, content`

func scanBlog(row rowScanner) (model.Blog, error) {
	var b model.Blog
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Date, &b.Image, &b.Content)
	return b, err
}

func (s *Store) ListBlogs(ctx context.Context) ([]model.Blog, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+blogColumns+` FROM blogs ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetBlog(ctx context.Context, id int64) (model.Blog, error) {
	b, err := scanBlog(s.pool.QueryRow(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id))
	return b, mapErr(err)
}

func (s *Store) CreateBlog(ctx context.Context, b *model.Blog) error {
	query := `
		INSERT INTO blogs (title, author, date, image, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return s.pool.QueryRow(ctx, query, b.Title, b.Author, b.Date, b.Image, b.Content).Scan(&b.ID)
}

func (s *Store) CreateContact(ctx context.Context, m *model.ContactMessage) error {
	query := `
		INSERT INTO contacts (name, email, comment, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return s.pool.QueryRow(ctx, query, m.Name, m.Email, m.Comment, m.CreatedAt).Scan(&m.ID)
}
