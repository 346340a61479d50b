package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Many customers race for the last units of one product. Exactly the
// available stock is sold; everyone else gets 409.
func TestIntegration_ConcurrentCheckoutNeverOversells(t *testing.T) {
	waitReady(t)
	admin := adminToken(t)
	const stock = 10
	const buyers = 40
	pid := createProduct(t, admin, 1, stock)

	tokens := make([]string, buyers)
	for i := range tokens {
		tokens[i] = registerCustomer(t)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	body := []byte(fmt.Sprintf(`{"items":[{"productId":%d,"quantity":1}]}`, pid))
	var created, conflict atomic.Int32
	var wg sync.WaitGroup
	errCh := make(chan error, buyers)
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			r, _ := http.NewRequest(http.MethodPost, baseURL()+"/orders", bytes.NewReader(body))
			r.Header.Set("Content-Type", "application/json")
			r.Header.Set("Authorization", "Bearer "+tok)
			resp, err := client.Do(r)
			if err != nil {
				errCh <- err
				return
			}
			_ = resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflict.Add(1)
			default:
				errCh <- fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
		}(tok)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}
	if created.Load() != stock || conflict.Load() != buyers-stock {
		t.Fatalf("expected %d created and %d conflicts, got %d and %d", stock, buyers-stock, created.Load(), conflict.Load())
	}
	if p := getProduct(t, pid); p.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", p.Stock)
	}
}
