// Package model defines domain types used by the service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Role is an account role.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleCustomer || r == RoleAdmin }

// User is an account. PasswordHash never leaves the service.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Product is a catalog entry. Stock never goes negative.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
}

// CartLine is one (user, product) entry in a cart.
type CartLine struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CartItem is a cart line joined with live product data.
type CartItem struct {
	CartLineID int64           `json:"cartLineId"`
	ProductID  int64           `json:"productId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Quantity   int             `json:"quantity"`
	Images     []string        `json:"images"`
}

// Order is an immutable sale header. Total equals the sum of its line subtotals.
type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"date"`
	Lines     []OrderLine     `json:"lines,omitempty"`
}

// OrderLine captures quantity and subtotal at sale time.
type OrderLine struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDetail is an order joined with its customer and live product display data.
type OrderDetail struct {
	ID            int64             `json:"id"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	Date          time.Time         `json:"date"`
	Total         decimal.Decimal   `json:"total"`
	Lines         []OrderLineDetail `json:"lines"`
}

// OrderLineDetail is one line of an OrderDetail.
type OrderLineDetail struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Image     string          `json:"image"`
}

// OrderSummary is an order header joined with the owner's display name.
type OrderSummary struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"userId"`
	CustomerName string          `json:"customerName"`
	Total        decimal.Decimal `json:"total"`
	Date         time.Time       `json:"date"`
}

// Blog is a published article.
type Blog struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Image   string    `json:"image"`
	Content string    `json:"content"`
}

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
