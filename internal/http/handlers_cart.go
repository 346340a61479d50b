package httpapi

import (
	"net/http"
)

type cartUpsertRequest struct {
	ProductID int64 `json:"productId"`
	// Quantity is loosely typed; see cart.ParseQuantity.
	Quantity any `json:"quantity"`
}

type cartUpsertResp struct {
	Status     string `json:"status"`
	CartLineID int64  `json:"cartLineId"`
	ProductID  int64  `json:"productId"`
	Quantity   int    `json:"quantity"`
}

type cartCountResp struct {
	TotalItems int `json:"totalItems"`
}

type cartClearResp struct {
	Removed int `json:"removed"`
}

func (a *App) listCartHandler(w http.ResponseWriter, r *http.Request) {
	items, err := a.Cart.List(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *App) upsertCartHandler(w http.ResponseWriter, r *http.Request) {
	var req cartUpsertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	line, err := a.Cart.Upsert(r.Context(), identity(r).UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartUpsertResp{
		Status:     "ok",
		CartLineID: line.ID,
		ProductID:  line.ProductID,
		Quantity:   line.Quantity,
	})
}

func (a *App) removeCartLineHandler(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathID(w, r, "lineId")
	if !ok {
		return
	}
	if err := a.Cart.Remove(r.Context(), identity(r).UserID, lineID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResp)
}

func (a *App) cartCountHandler(w http.ResponseWriter, r *http.Request) {
	n, err := a.Cart.Count(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartCountResp{TotalItems: n})
}

func (a *App) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	n, err := a.Cart.Clear(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartClearResp{Removed: n})
}
