// Package cart manages per-user cart lines ahead of checkout.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/obs"
	"github.com/fairyhunter13/storefront/internal/store"
)

// Service manages cart lines over a store.Store.
type Service struct {
	store store.Store
}

// NewService constructs a Service backed by st.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// ParseQuantity coerces a loosely typed quantity. Absent, zero or
// non-numeric values mean 1; negative or fractional numbers are rejected.
func ParseQuantity(v any) (int, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 1, nil
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 1, nil
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 1, nil
		}
		f = n
	default:
		return 1, nil
	}
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 1, nil
	case f == 0:
		return 1, nil
	case f < 0:
		return 0, apperr.Validation("quantity", "must be positive")
	case f != math.Trunc(f):
		return 0, apperr.Validation("quantity", "must be a whole number")
	case f > math.MaxInt32:
		return 0, apperr.Validation("quantity", "is too large")
	}
	return int(f), nil
}

// Upsert adds the product to the user's cart or replaces the quantity of
// the existing line. The quantity may not exceed current stock.
func (s *Service) Upsert(ctx context.Context, userID, productID int64, quantity any) (model.CartLine, error) {
	if productID <= 0 {
		return model.CartLine{}, apperr.Validation("productId", "must be positive")
	}
	qty, err := ParseQuantity(quantity)
	if err != nil {
		return model.CartLine{}, err
	}
	p, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return model.CartLine{}, apperr.NotFound("product", productID)
	}
	if err != nil {
		return model.CartLine{}, apperr.Persistence("get product", err)
	}
	if qty > p.Stock {
		return model.CartLine{}, apperr.Validation("quantity", "exceeds available stock (%d)", p.Stock)
	}

	line, err := s.store.UpsertCartLine(ctx, userID, productID, qty)
	if errors.Is(err, store.ErrUserNotFound) {
		return model.CartLine{}, apperr.NotFound("user", userID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return model.CartLine{}, apperr.NotFound("product", productID)
	}
	if err != nil {
		return model.CartLine{}, apperr.Persistence("upsert cart line", err)
	}
	obs.CartUpdates.Add(1)
	obs.Logger.Debugw("cart_line_upserted", "user_id", userID, "product_id", productID, "quantity", qty)
	return line, nil
}

// Remove deletes a line owned by userID. Lines of other users are refused
// with an authorization error and left in place.
func (s *Service) Remove(ctx context.Context, userID, lineID int64) error {
	line, err := s.store.GetCartLine(ctx, lineID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("cart line", lineID)
	}
	if err != nil {
		return apperr.Persistence("get cart line", err)
	}
	if line.UserID != userID {
		obs.Logger.Warnw("cart_line_not_owner", "user_id", userID, "line_id", lineID)
		return apperr.Forbidden("cart line belongs to another user")
	}
	if err := s.store.DeleteCartLine(ctx, lineID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("cart line", lineID)
		}
		return apperr.Persistence("delete cart line", err)
	}
	obs.CartUpdates.Add(1)
	return nil
}

// List returns the user's lines with live product data, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]model.CartItem, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("list cart", err)
	}
	return items, nil
}

// Count returns the sum of quantities in the user's cart.
func (s *Service) Count(ctx context.Context, userID int64) (int, error) {
	n, err := s.store.CountCartItems(ctx, userID)
	if err != nil {
		return 0, apperr.Persistence("count cart", err)
	}
	return n, nil
}

// Clear empties the user's cart and reports how many lines were removed.
func (s *Service) Clear(ctx context.Context, userID int64) (int, error) {
	n, err := s.store.ClearCart(ctx, userID)
	if err != nil {
		return 0, apperr.Persistence("clear cart", err)
	}
	if n > 0 {
		obs.CartUpdates.Add(1)
	}
	return n, nil
}
