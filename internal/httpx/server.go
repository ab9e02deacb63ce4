package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/carts"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/fulfillment"
	"github.com/ariefcatur/go-marketplace/internal/metrics"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Users interface {
	Register(ctx context.Context, reg users.Registration) (users.User, error)
	Authenticate(ctx context.Context, username, password string) (users.User, error)
	Get(ctx context.Context, id int64) (users.User, error)
	Update(ctx context.Context, id int64, c users.Changes) (users.User, error)
	Delete(ctx context.Context, id int64) (users.User, error)
}

type Catalog interface {
	Create(ctx context.Context, ownerID int64, np catalog.NewProduct) (catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	List(ctx context.Context, q catalog.ListQuery) ([]catalog.Product, error)
	Update(ctx context.Context, ownerID, id int64, c catalog.Changes) (catalog.Product, error)
	Delete(ctx context.Context, ownerID, id int64) (catalog.Product, error)
}

type Carts interface {
	Get(ctx context.Context, userID int64) ([]carts.Item, error)
	Add(ctx context.Context, userID, productID int64, qty int) ([]carts.Item, error)
	Update(ctx context.Context, userID, productID int64, qty int) ([]carts.Item, error)
	Remove(ctx context.Context, userID, productID int64) ([]carts.Item, error)
	Clear(ctx context.Context, userID int64) error
}

type Orders interface {
	CreateFromCart(ctx context.Context, buyerID int64) (orders.Detail, error)
	CreateFromProduct(ctx context.Context, buyerID, productID int64, quantity int) (orders.Detail, error)
	GetOrder(ctx context.Context, buyerID, orderID int64) (orders.Detail, error)
	ListOrders(ctx context.Context, buyerID int64) ([]orders.Order, error)
	CancelOrder(ctx context.Context, buyerID, orderID int64) (orders.Detail, error)
	CancelOrderProduct(ctx context.Context, buyerID, orderID, productID int64) (orders.Line, error)
	ShipOrder(ctx context.Context, vendorID, orderID int64) (orders.Detail, error)
	DisputeOrder(ctx context.Context, vendorID, orderID int64) (orders.Detail, error)
	ShipOrderProduct(ctx context.Context, vendorID, orderID, productID int64) (orders.LineView, error)
	DisputeOrderProduct(ctx context.Context, vendorID, orderID, productID int64) (orders.LineView, error)
}

type Fulfillment interface {
	Pending(ctx context.Context, vendorID int64) ([]fulfillment.Entry, error)
}

// Handler carries the services behind the HTTP surface. Fulfillment and
// Metrics are optional.
type Handler struct {
	Users       Users
	Catalog     Catalog
	Carts       Carts
	Orders      Orders
	Fulfillment Fulfillment
	Sessions    auth.SessionStore
	Metrics     *metrics.Metrics
	Log         zerolog.Logger
}

func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(recoverer(h.Log))
	r.Use(auth.Middleware(h.Sessions, h.Log))
	r.Use(accessLog(h.Log, h.Metrics))
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAnonymous)
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})
	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		writeInfo(w, http.StatusOK, "Login with POST")
	})

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Post("/logout", h.logout)
		r.Get("/profile", h.getProfile)
		r.Put("/profile", h.updateProfile)
		r.Delete("/profile", h.deleteProfile)

		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Post("/", h.addToCart)
			r.Put("/", h.updateCart)
			r.Delete("/", h.removeFromCart)
			r.Post("/clear", h.clearCart)
		})

		r.Post("/checkout", h.checkoutCart)
		r.Post("/checkout/{product_id}", h.checkoutProduct)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Get("/{order_id}", h.getOrder)
			r.Put("/{order_id}", h.setOrderStatus)
			r.Delete("/{order_id}", h.cancelOrder)
			r.Put("/{order_id}/{product_id}", h.setLineStatus)
			r.Delete("/{order_id}/{product_id}", h.cancelOrderProduct)
		})

		if h.Fulfillment != nil {
			r.Get("/fulfillment", h.pendingFulfillment)
		}
	})
	return r
}
