package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront/internal/idempotency"
	"github.com/fairyhunter13/storefront/internal/notify"
	"github.com/fairyhunter13/storefront/internal/obs"
	"github.com/fairyhunter13/storefront/internal/order"
)

const maxIdempotencyKeyLen = 255

type orderItemRequest struct {
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

type placeOrderRequest struct {
	Items []orderItemRequest `json:"items"`
	Total *decimal.Decimal   `json:"total"`
}

type orderCreatedResp struct {
	OrderID int64 `json:"orderId"`
}

func (a *App) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := identity(r)

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if len(key) > maxIdempotencyKeyLen {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "Idempotency-Key is too long")
		return
	}
	var scoped string
	if key != "" && a.Idem != nil {
		scoped = idempotency.Scope(id.UserID, key)
		res, err := a.Idem.Begin(r.Context(), scoped)
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch res.Status {
		case idempotency.StatusDone:
			w.Header().Set("Idempotent-Replay", "true")
			writeJSON(w, http.StatusCreated, orderCreatedResp{OrderID: res.OrderID})
			return
		case idempotency.StatusPending:
			WriteJSONError(w, http.StatusConflict, "conflict", "a request with this Idempotency-Key is in progress")
			return
		}
	}

	bg := context.WithoutCancel(r.Context())
	placed := false
	if scoped != "" {
		// Frees the key on errors and panics until an order exists. bg keeps
		// the release alive past a cancelled request.
		defer func() {
			if placed {
				return
			}
			if rerr := a.Idem.Release(bg, scoped); rerr != nil {
				obs.Logger.Warnw("idempotency_release_failed", "error", rerr,
					"request_id", RequestIDFromContext(r.Context()))
			}
		}()
	}

	lines := make([]order.LineRequest, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, order.LineRequest{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	orderID, err := a.Orders.PlaceOrder(r.Context(), id.UserID, lines, req.Total)
	if err != nil {
		writeError(w, r, err)
		return
	}
	placed = true

	if scoped != "" {
		if err := a.Idem.Complete(bg, scoped, orderID); err != nil {
			obs.Logger.Warnw("idempotency_complete_failed", "order_id", orderID, "error", err,
				"request_id", RequestIDFromContext(r.Context()))
		}
	}
	if _, err := a.Cart.Clear(bg, id.UserID); err != nil {
		obs.Logger.Warnw("cart_clear_failed", "user_id", id.UserID, "order_id", orderID, "error", err,
			"request_id", RequestIDFromContext(r.Context()))
	}
	a.notify(r, notify.OrderReceived(id.Email, orderID, a.Cfg.PublicBaseURL))
	writeJSON(w, http.StatusCreated, orderCreatedResp{OrderID: orderID})
}

func (a *App) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := a.Orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *App) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := a.Orders.ListOrders(r.Context(), identity(r).Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
