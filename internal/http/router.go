package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging, middleware.Recoverer, WithBodyLimit)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})

	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)

	r.Post("/auth/register", app.registerHandler)
	r.Post("/auth/login", app.loginHandler)
	r.Get("/products", app.listProductsHandler)
	r.Get("/products/{id}", app.getProductHandler)
	r.Get("/blogs", app.listBlogsHandler)
	r.Get("/blogs/{id}", app.getBlogHandler)
	r.Post("/contact", app.contactHandler)
	// Receipts are looked up by id without a session.
	r.Get("/orders/{id}", app.getOrderHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.RequireAuth)
		r.Post("/orders", app.placeOrderHandler)
		r.Get("/orders", app.listOrdersHandler)
		r.Get("/cart", app.listCartHandler)
		r.Post("/cart", app.upsertCartHandler)
		r.Delete("/cart", app.clearCartHandler)
		r.Get("/cart/count", app.cartCountHandler)
		r.Delete("/cart/{lineId}", app.removeCartLineHandler)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/products", app.createProductHandler)
			r.Put("/products/{id}", app.updateProductHandler)
			r.Delete("/products/{id}", app.deleteProductHandler)
			r.Get("/users", app.listUsersHandler)
			r.Put("/users/{id}", app.updateUserHandler)
			r.Delete("/users/{id}", app.deleteUserHandler)
			r.Post("/blogs", app.createBlogHandler)
		})
	})
	return r
}
