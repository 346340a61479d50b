// Package order turns a checkout request into a priced, immutable order while
// decrementing catalog stock in the same unit of work.
package order

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/obs"
	"github.com/fairyhunter13/storefront/internal/store"
)

// LineRequest is one requested order line. UnitPrice is what the client
// believed the price to be; it is compared but never persisted.
type LineRequest struct {
	ProductID int64
	Quantity  int
	UnitPrice *decimal.Decimal
}

// maxQuantity bounds a line and a product's cumulative quantity to what the
// stock column holds.
const maxQuantity = math.MaxInt32

// Engine places and reads orders over a store.Store.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// NewEngine constructs an Engine backed by st.
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, now: func() time.Time { return time.Now().UTC() }}
}

type mismatch struct {
	productID int64
	claimed   decimal.Decimal
	actual    decimal.Decimal
}

// PlaceOrder validates lines against the catalog, persists the order with
// one line per request and decrements stock. Everything happens in one
// transaction; any failure leaves no trace. clientTotal is advisory.
func (e *Engine) PlaceOrder(ctx context.Context, userID int64, lines []LineRequest, clientTotal *decimal.Decimal) (int64, error) {
	if len(lines) == 0 {
		return 0, apperr.Validation("items", "must not be empty")
	}
	required := make(map[int64]int, len(lines))
	for i, l := range lines {
		if l.ProductID <= 0 {
			return 0, apperr.Validation("items", "line %d: productId must be positive", i)
		}
		if l.Quantity <= 0 {
			return 0, apperr.Validation("items", "line %d: quantity must be positive", i)
		}
		if l.Quantity > maxQuantity {
			return 0, apperr.Validation("items", "line %d: quantity is too large", i)
		}
		if required[l.ProductID] > maxQuantity-l.Quantity {
			return 0, apperr.Validation("items", "line %d: total quantity for product %d is too large", i, l.ProductID)
		}
		required[l.ProductID] += l.Quantity
	}
	ids := make([]int64, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var (
		order      model.Order
		mismatches []mismatch
	)
	err := e.store.InTx(ctx, func(tx store.Tx) error {
		products, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return err
		}

		// Every check runs before the first write.
		for _, l := range lines {
			if _, ok := products[l.ProductID]; !ok {
				return apperr.NotFound("product", l.ProductID)
			}
		}
		for _, id := range ids {
			if p := products[id]; required[id] > p.Stock {
				return &apperr.InsufficientStockError{ProductID: id, Requested: required[id], Available: p.Stock}
			}
		}

		order = model.Order{UserID: userID, Total: decimal.Zero, CreatedAt: e.now()}
		order.Lines = make([]model.OrderLine, 0, len(lines))
		for _, l := range lines {
			p := products[l.ProductID]
			if l.UnitPrice != nil && !l.UnitPrice.Equal(p.Price) {
				mismatches = append(mismatches, mismatch{productID: p.ID, claimed: *l.UnitPrice, actual: p.Price})
			}
			sub := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
			order.Lines = append(order.Lines, model.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, Subtotal: sub})
			order.Total = order.Total.Add(sub)
		}

		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.InsertOrderLine(ctx, &order.Lines[i]); err != nil {
				return err
			}
		}
		for _, id := range ids {
			ok, err := tx.DecrementStock(ctx, id, required[id])
			if err != nil {
				return err
			}
			if !ok {
				return &apperr.InsufficientStockError{ProductID: id, Requested: required[id], Available: products[id].Stock}
			}
		}
		return nil
	})
	if err != nil {
		var ise *apperr.InsufficientStockError
		if errors.As(err, &ise) {
			obs.OrdersRejectedStock.Add(1)
			obs.Logger.Infow("order_rejected_stock", "user_id", userID, "product_id", ise.ProductID,
				"requested", ise.Requested, "available", ise.Available)
		}
		return 0, apperr.Persistence("place order", err)
	}

	for _, m := range mismatches {
		obs.Logger.Warnw("order_price_mismatch", "order_id", order.ID, "product_id", m.productID,
			"claimed", m.claimed.String(), "actual", m.actual.String())
	}
	if clientTotal != nil && !clientTotal.Equal(order.Total) {
		obs.Logger.Warnw("order_total_mismatch", "order_id", order.ID,
			"claimed", clientTotal.String(), "actual", order.Total.String())
	}
	obs.OrdersPlaced.Add(1)
	obs.Logger.Infow("order_placed", "order_id", order.ID, "user_id", userID,
		"lines", len(order.Lines), "total", order.Total.String())
	return order.ID, nil
}

// GetOrder returns the order with live product display data. It performs no
// ownership check: receipts are public by order id.
func (e *Engine) GetOrder(ctx context.Context, id int64) (model.OrderDetail, error) {
	d, err := e.store.GetOrderDetail(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.OrderDetail{}, apperr.NotFound("order", id)
	}
	if err != nil {
		return model.OrderDetail{}, apperr.Persistence("get order", err)
	}
	return d, nil
}

// ListOrders returns every order header, newest first. Administrators only.
func (e *Engine) ListOrders(ctx context.Context, role model.Role) ([]model.OrderSummary, error) {
	if role != model.RoleAdmin {
		return nil, apperr.Forbidden("list orders requires admin")
	}
	out, err := e.store.ListOrderSummaries(ctx)
	if err != nil {
		return nil, apperr.Persistence("list orders", err)
	}
	return out, nil
}
