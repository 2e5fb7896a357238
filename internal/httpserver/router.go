package httpserver

import (
	"context"
	"errors"
	"time"

	"storefront/internal/auth"
	"storefront/internal/backend"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/payment"
	"storefront/internal/service/checkout"
	"storefront/internal/service/orders"
	"storefront/internal/service/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type catalogService interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput, image *backend.Image) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput, image *backend.Image) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type storeService interface {
	GetCart(ctx context.Context, session string) ([]domain.CartItem, error)
	SetCart(ctx context.Context, session string, items []domain.CartItem) error
	GetWishlist(ctx context.Context, session string) ([]domain.WishlistItem, error)
	Clear(ctx context.Context, session string, which store.Collection) error
	AddToCart(ctx context.Context, session string, product domain.Product) ([]domain.CartItem, error)
	RemoveFromCart(ctx context.Context, session, productID string) ([]domain.CartItem, error)
	RemoveOne(ctx context.Context, session, productID string) ([]domain.CartItem, error)
	UpdateQuantity(ctx context.Context, session, productID string, delta int) ([]domain.CartItem, error)
	AddToWishlist(ctx context.Context, session string, product domain.Product) ([]domain.WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, session, productID string) ([]domain.WishlistItem, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (checkout.Result, error)
	Begin(ctx context.Context, req checkout.Request) (payment.Intent, error)
	Status(intentID, userID string) (checkout.Attempt, error)
	Resolve(intentID, userID string, out payment.Outcome) error
}

type ordersService interface {
	FetchOrders(ctx context.Context, scope orders.Scope) ([]domain.Order, error)
	Report(ctx context.Context, scope orders.Scope) (orders.Report, error)
}

// Deps are the services behind the API.
type Deps struct {
	Catalog     catalogService
	Store       storeService
	Checkout    checkoutService
	Orders      ordersService
	Authorizer  *auth.Authorizer
	CORSOrigins []string
	// CheckoutPerMinute caps checkout calls per user; zero disables the limit.
	CheckoutPerMinute int
	Readiness         map[string]ReadinessCheck
}

// buildRouter wires routes for the API.
func buildRouter(logger *logrus.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Catalog == nil || deps.Store == nil || deps.Checkout == nil || deps.Orders == nil {
		return nil, errors.New("catalog, store, checkout and orders services are required")
	}
	if deps.Authorizer == nil {
		return nil, errors.New("authorizer is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), metrics.Middleware())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h := &handlers{
		catalog:  deps.Catalog,
		store:    deps.Store,
		checkout: deps.Checkout,
		orders:   deps.Orders,
		logger:   logger.WithField("component", "http"),
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Readiness))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/categories", h.listCategories)

	limit := noLimit
	if deps.CheckoutPerMinute > 0 {
		limit = newUserLimiter(deps.CheckoutPerMinute, time.Minute).middleware()
	}

	me := router.Group("/me", auth.Middleware(deps.Authorizer), auth.RequireRole(domain.RoleCustomer))
	{
		me.GET("/cart", h.getCart)
		me.PUT("/cart", h.replaceCart)
		me.DELETE("/cart", h.clearCollection(store.CollectionCart))
		me.POST("/cart/items", h.addCartItem)
		me.PATCH("/cart/items/:id", h.updateCartItem)
		me.DELETE("/cart/items/:id", h.removeCartItem)
		me.POST("/cart/items/:id/remove-one", h.removeOneCartItem)

		me.GET("/wishlist", h.getWishlist)
		me.DELETE("/wishlist", h.clearCollection(store.CollectionWishlist))
		me.POST("/wishlist/items", h.addWishlistItem)
		me.DELETE("/wishlist/items/:id", h.removeWishlistItem)

		me.POST("/checkout", limit, h.startCheckout)
		me.GET("/checkout/:intentId", h.checkoutStatus)
		me.POST("/checkout/:intentId/callback", limit, h.checkoutCallback)

		me.GET("/orders", h.myOrders)
		me.GET("/orders/report", h.myReport)
	}

	admin := router.Group("/admin", auth.Middleware(deps.Authorizer), auth.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/orders", h.allOrders)
		admin.GET("/orders/report", h.allReport)
		admin.POST("/products", h.createProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
	}

	return router, nil
}

type handlers struct {
	catalog  catalogService
	store    storeService
	checkout checkoutService
	orders   ordersService
	logger   logrus.FieldLogger
}

func principal(c *gin.Context) domain.Principal {
	p, _ := auth.PrincipalFrom(c.Request.Context())
	return p
}
