// Package account handles registration, login and user administration.
package account

import (
	"context"
	"errors"
	"strings"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/auth"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/obs"
	"github.com/fairyhunter13/storefront/internal/store"
)

const badCredentials = "invalid email or password"

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// Service owns user accounts and issues session tokens.
type Service struct {
	users  store.Users
	hasher auth.Hasher
	tokens *auth.Tokens
}

// NewService constructs a Service over users.
func NewService(users store.Users, hasher auth.Hasher, tokens *auth.Tokens) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateProfile(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("name", "is required")
	}
	if email == "" {
		return apperr.Validation("email", "is required")
	}
	if !strings.Contains(email, "@") {
		return apperr.Validation("email", "must be an e-mail address")
	}
	return nil
}

// Register creates a customer account.
func (s *Service) Register(ctx context.Context, name, email, password string) (model.User, error) {
	email = normalizeEmail(email)
	if err := validateProfile(name, email); err != nil {
		return model.User{}, err
	}
	if password == "" {
		return model.User{}, apperr.Validation("password", "is required")
	}
	return s.create(ctx, strings.TrimSpace(name), email, password, model.RoleCustomer)
}

func (s *Service) create(ctx context.Context, name, email, password string, role model.Role) (model.User, error) {
	if len(password) > maxPasswordBytes {
		return model.User{}, apperr.Validation("password", "must be at most %d bytes", maxPasswordBytes)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, apperr.Persistence("hash password", err)
	}
	u := model.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	err = s.users.CreateUser(ctx, &u)
	if errors.Is(err, store.ErrConflict) {
		return model.User{}, apperr.Conflict("email already registered")
	}
	if err != nil {
		return model.User{}, apperr.Persistence("create user", err)
	}
	obs.Logger.Infow("user_registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login checks credentials and returns a signed token. Unknown e-mail and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", model.User{}, apperr.Validation("", "email and password are required")
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", model.User{}, apperr.Unauthenticated(badCredentials)
	}
	if err != nil {
		return "", model.User{}, apperr.Persistence("get user", err)
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return "", model.User{}, apperr.Unauthenticated(badCredentials)
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", model.User{}, apperr.Persistence("issue token", err)
	}
	return token, u, nil
}

func (s *Service) List(ctx context.Context) ([]model.User, error) {
	out, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Persistence("list users", err)
	}
	return out, nil
}

// Update replaces name, e-mail and role of a user.
func (s *Service) Update(ctx context.Context, id int64, name, email string, role model.Role) (model.User, error) {
	email = normalizeEmail(email)
	if err := validateProfile(name, email); err != nil {
		return model.User{}, err
	}
	if !role.Valid() {
		return model.User{}, apperr.Validation("role", "must be %q or %q", model.RoleCustomer, model.RoleAdmin)
	}
	u := model.User{ID: id, Name: strings.TrimSpace(name), Email: email, Role: role}
	err := s.users.UpdateUser(ctx, u)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return model.User{}, apperr.NotFound("user", id)
	case errors.Is(err, store.ErrConflict):
		return model.User{}, apperr.Conflict("email already registered")
	case err != nil:
		return model.User{}, apperr.Persistence("update user", err)
	}
	out, err := s.users.GetUser(ctx, id)
	if err != nil {
		return model.User{}, apperr.Persistence("get user", err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.users.DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("user", id)
	}
	if err != nil {
		return apperr.Persistence("delete user", err)
	}
	obs.Logger.Infow("user_deleted", "user_id", id)
	return nil
}

// EnsureAdmin creates the bootstrap administrator, or promotes an existing
// account with that e-mail. The password of an existing account is kept.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (model.User, error) {
	email = normalizeEmail(email)
	if name == "" {
		name = "Administrator"
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		if err := validateProfile(name, email); err != nil {
			return model.User{}, err
		}
		return s.create(ctx, name, email, password, model.RoleAdmin)
	}
	if err != nil {
		return model.User{}, apperr.Persistence("get user", err)
	}
	if u.Role == model.RoleAdmin {
		return u, nil
	}
	u.Role = model.RoleAdmin
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return model.User{}, apperr.Persistence("promote admin", err)
	}
	obs.Logger.Infow("admin_promoted", "user_id", u.ID)
	return u, nil
}
