// Package store declares the storage ports used by the services and ships
// an in-memory backend. The relational backend lives in store/postgres.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairyhunter13/storefront/internal/model"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUserNotFound is returned when a write references a missing user.
	// It matches ErrNotFound under errors.Is.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("store: conflict")
)

// Catalog owns product records.
type Catalog interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	UpdateProduct(ctx context.Context, p model.Product) error
	// DeleteProduct removes the product and every cart line referencing it.
	DeleteProduct(ctx context.Context, id int64) error
}

// Carts owns per-user cart lines, unique per (user, product).
type Carts interface {
	// UpsertCartLine inserts the line or replaces the quantity of the
	// existing line for the same (user, product) pair.
	UpsertCartLine(ctx context.Context, userID, productID int64, quantity int) (model.CartLine, error)
	GetCartLine(ctx context.Context, id int64) (model.CartLine, error)
	DeleteCartLine(ctx context.Context, id int64) error
	// ListCartItems returns the user's lines joined with live product data,
	// newest-inserted first.
	ListCartItems(ctx context.Context, userID int64) ([]model.CartItem, error)
	CountCartItems(ctx context.Context, userID int64) (int, error)
	ClearCart(ctx context.Context, userID int64) (int, error)
}

// Orders reads committed orders. Orders are written only through Tx.
type Orders interface {
	GetOrderDetail(ctx context.Context, id int64) (model.OrderDetail, error)
	// ListOrderSummaries returns every order header, newest first.
	ListOrderSummaries(ctx context.Context) ([]model.OrderSummary, error)
}

// Users owns accounts. E-mail addresses are unique.
type Users interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, u model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// Blogs owns articles.
type Blogs interface {
	// ListBlogs returns articles newest first.
	ListBlogs(ctx context.Context) ([]model.Blog, error)
	GetBlog(ctx context.Context, id int64) (model.Blog, error)
	CreateBlog(ctx context.Context, b *model.Blog) error
}

// Contacts owns contact-form messages.
type Contacts interface {
	CreateContact(ctx context.Context, m *model.ContactMessage) error
}

// Tx is the atomic unit of work used for order placement.
type Tx interface {
	// LockProducts returns the listed products with their rows locked for
	// the rest of the transaction. Missing ids are absent from the map.
	LockProducts(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	// DecrementStock subtracts qty from the product's stock only when the
	// stock covers it. It reports false when it does not.
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
	InsertOrder(ctx context.Context, o *model.Order) error
	InsertOrderLine(ctx context.Context, l *model.OrderLine) error
}

// Store aggregates every repository of a backend.
type Store interface {
	Catalog
	Carts
	Orders
	Users
	Blogs
	Contacts

	// InTx runs fn in one transaction. A non-nil error from fn rolls back
	// every write made through the Tx and is returned unchanged.
	InTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
	Close()
}
