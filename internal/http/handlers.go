package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/storefront/internal/account"
	"github.com/fairyhunter13/storefront/internal/auth"
	"github.com/fairyhunter13/storefront/internal/blog"
	"github.com/fairyhunter13/storefront/internal/cart"
	"github.com/fairyhunter13/storefront/internal/catalog"
	"github.com/fairyhunter13/storefront/internal/config"
	"github.com/fairyhunter13/storefront/internal/contact"
	httpopenapi "github.com/fairyhunter13/storefront/internal/http/openapi"
	"github.com/fairyhunter13/storefront/internal/idempotency"
	"github.com/fairyhunter13/storefront/internal/notify"
	"github.com/fairyhunter13/storefront/internal/obs"
	"github.com/fairyhunter13/storefront/internal/order"
	"github.com/fairyhunter13/storefront/internal/queue"
	"github.com/fairyhunter13/storefront/internal/store"
)

type App struct {
	Cfg      config.Config
	Store    store.Store
	Orders   *order.Engine
	Cart     *cart.Service
	Catalog  *catalog.Service
	Accounts *account.Service
	Blogs    *blog.Service
	Contact  *contact.Service
	Tokens   *auth.Tokens
	Idem     idempotency.Store
	Notifier *queue.Manager[notify.Message]
	closing  atomic.Bool
	started  time.Time
}

// NewApp wires the services over st. notifier may be nil, in which case no
// mail is queued.
func NewApp(cfg config.Config, st store.Store, tokens *auth.Tokens, idem idempotency.Store, notifier *queue.Manager[notify.Message]) *App {
	var enq notify.Enqueuer
	if notifier != nil {
		enq = notifier
	}
	return &App{
		Cfg:      cfg,
		Store:    st,
		Orders:   order.NewEngine(st),
		Cart:     cart.NewService(st),
		Catalog:  catalog.NewService(st),
		Accounts: account.NewService(st, auth.NewHasher(), tokens),
		Blogs:    blog.NewService(st),
		Contact:  contact.NewService(st, enq, cfg.ContactNotifyTo),
		Tokens:   tokens,
		Idem:     idem,
		Notifier: notifier,
		started:  time.Now(),
	}
}

// StartShutdown fails health checks and stops accepting notifications.
func (a *App) StartShutdown() {
	a.closing.Store(true)
	if a.Notifier != nil {
		a.Notifier.CloseIntake()
	}
}

// notify queues msg; a rejected message is logged and dropped.
func (a *App) notify(r *http.Request, msg notify.Message) {
	if a.Notifier == nil || msg.To == "" {
		return
	}
	if !a.Notifier.Enqueue(msg) {
		obs.Logger.Warnw("notification_dropped", "to", msg.To, "subject", msg.Subject,
			"request_id", RequestIDFromContext(r.Context()))
	}
}

// decodeJSON enforces the JSON content type and strict decoding. It writes
// the error response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteJSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "")
			return false
		}
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// identity is only called behind RequireAuth.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

type statusResp struct {
	Status string `json:"status"`
}

type createdResp struct {
	ID int64 `json:"id"`
}

var okResp = statusResp{Status: "ok"}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() {
		writeJSON(w, http.StatusServiceUnavailable, statusResp{Status: "shutting_down"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.Store.Ping(ctx); err != nil {
		obs.Logger.Warnw("health_ping_failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, statusResp{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, okResp)
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{
		"uptime_sec": time.Since(a.started).Seconds(),
	}
	for k, v := range obs.Snapshot() {
		m[k] = v
	}
	if a.Notifier != nil {
		m["notifications_queue"] = a.Notifier.Metrics()
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Storefront API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
