package postgres

import (
	"context"

	"github.com/fairyhunter13/storefront/internal/model"
)

const userColumns = `id, name, email, password_hash, role, created_at`

func scanUser(row rowScanner) (model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	u.Role = model.Role(role)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return mapErr(s.pool.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash, string(u.Role)).Scan(&u.ID, &u.CreatedAt))
}

func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr(err)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	return u, mapErr(err)
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, u model.User) error {
	return affected(s.pool.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, role = $4 WHERE id = $1`,
		u.ID, u.Name, u.Email, string(u.Role)))
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}
