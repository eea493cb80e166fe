package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Session  SessionState
	Account  *AccountHandler
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Admin    *AdminHandler
}

// NewRouter mounts the storefront API under /api/v1. requestTimeout bounds every request.
func NewRouter(hs Handlers, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDHeader)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(hs.Session))

		r.Get("/session", hs.Account.GetSession)
		r.Post("/login", hs.Account.Login)
		r.Post("/signup", hs.Account.SignUp)
		r.Post("/logout", hs.Account.Logout)
		r.Get("/counties", Counties)
		r.Get("/products", hs.Products.ListProducts)

		r.Group(func(r chi.Router) {
			r.Use(RequireLogin)

			r.Get("/account", hs.Account.Profile)
			r.Get("/account/orders", hs.Account.Orders)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", hs.Cart.GetCart)
				r.Post("/items", hs.Cart.AddItem)
				r.Put("/items/{product_id}", hs.Cart.UpdateQuantity)
				r.Delete("/items/{product_id}", hs.Cart.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", hs.Checkout.GetCheckout)
				r.Post("/", hs.Checkout.Submit)
				r.Post("/reset", hs.Checkout.Reset)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", hs.Account.AdminLogin)

			// roles are enforced by the API; a refusal surfaces as 403 permission_denied
			r.Group(func(r chi.Router) {
				r.Use(RequireLogin)

				r.Get("/overview", hs.Admin.Overview)
				r.Get("/products", hs.Admin.ListProducts)
				r.Post("/products", hs.Admin.CreateProduct)
				r.Patch("/products/{id}", hs.Admin.UpdateProduct)
				r.Delete("/products/{id}", hs.Admin.DeleteProduct)

				r.Get("/orders", hs.Admin.ListOrders)
				r.Patch("/orders/{id}/status", hs.Admin.UpdateOrderStatus)

				r.Get("/users", hs.Admin.ListUsers)
				r.Patch("/users/{id}/role", hs.Admin.UpdateUserRole)
				r.Delete("/users/{id}", hs.Admin.DeleteUser)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
