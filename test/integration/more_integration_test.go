package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestIntegration_IdempotentCheckout(t *testing.T) {
	waitReady(t)
	admin := adminToken(t)
	pid := createProduct(t, admin, 3, 5)
	cust := registerCustomer(t)
	key := uniqueEmail("key")
	body := []byte(fmt.Sprintf(`{"items":[{"productId":%d,"quantity":2}]}`, pid))

	place := func() (int, string, int64) {
		r, _ := http.NewRequest(http.MethodPost, baseURL()+"/orders", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Authorization", "Bearer "+cust)
		r.Header.Set("Idempotency-Key", key)
		resp, err := http.DefaultClient.Do(r)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var out struct {
			OrderID int64 `json:"orderId"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, resp.Header.Get("Idempotent-Replay"), out.OrderID
	}
	st1, _, id1 := place()
	st2, replay, id2 := place()
	if st1 != http.StatusCreated || st2 != http.StatusCreated {
		t.Fatalf("expected 201 twice, got %d and %d", st1, st2)
	}
	if id1 != id2 || replay != "true" {
		t.Fatalf("expected replay of order %d, got %d (replay=%q)", id1, id2, replay)
	}
	if p := getProduct(t, pid); p.Stock != 3 {
		t.Fatalf("expected stock 3, got %d", p.Stock)
	}
}

func TestIntegration_CartOwnership(t *testing.T) {
	waitReady(t)
	admin := adminToken(t)
	pid := createProduct(t, admin, 2, 5)
	alice, bob := registerCustomer(t), registerCustomer(t)

	var line struct {
		CartLineID int64 `json:"cartLineId"`
	}
	resp := doJSON(t, http.MethodPost, "/cart", alice, map[string]any{"productId": pid, "quantity": 2}, &line)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("/cart/%d", line.CartLineID), bob, nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	var count struct {
		TotalItems int `json:"totalItems"`
	}
	doJSON(t, http.MethodGet, "/cart/count", alice, nil, &count)
	if count.TotalItems != 2 {
		t.Fatalf("expected 2 items, got %d", count.TotalItems)
	}
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("/cart/%d", line.CartLineID), alice, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIntegration_ContentTypeVariants(t *testing.T) {
	waitReady(t)
	variants := []string{
		"application/json",
		"application/json; charset=utf-8",
		"APPLICATION/JSON",
	}
	for _, ctype := range variants {
		r, _ := http.NewRequest(http.MethodPost, baseURL()+"/contact",
			bytes.NewBufferString(`{"name":"ct","email":"ct@it.test","comment":"variant"}`))
		r.Header.Set("Content-Type", ctype)
		resp, err := http.DefaultClient.Do(r)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("ctype %q expected 201, got %d", ctype, resp.StatusCode)
		}
	}
}
