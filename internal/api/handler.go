package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports backend readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the application services served over HTTP
type Services struct {
	Catalog   *service.CatalogService
	Carts     *service.CartService
	Addresses *service.AddressService
	Orders    *service.OrderService
	Reviews   *service.ReviewService
	Auth      *service.AuthService
}

// Handler contains HTTP handlers
type Handler struct {
	catalog        *service.CatalogService
	carts          *service.CartService
	addresses      *service.AddressService
	orders         *service.OrderService
	reviews        *service.ReviewService
	auth           *service.AuthService
	orderFeed      http.Handler
	readiness      []Pinger
	allowedOrigins []string
}

// NewHandler creates a new HTTP handler; orderFeed serves the admin websocket
func NewHandler(services Services, orderFeed http.Handler, allowedOrigins []string, readiness ...Pinger) *Handler {
	return &Handler{
		catalog:        services.Catalog,
		carts:          services.Carts,
		addresses:      services.Addresses,
		orders:         services.Orders,
		reviews:        services.Reviews,
		auth:           services.Auth,
		orderFeed:      orderFeed,
		readiness:      readiness,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.CustomRecovery(recoverWithEnvelope))
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     h.allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Cache-Control", "Expires", "Pragma", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.NoRoute(func(c *gin.Context) {
		respondMessage(c, http.StatusNotFound, false, "Route not found")
	})

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth", h.authAction)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/search/:keyword", h.searchProducts)
		v1.GET("/catalog/categories", h.listCategories)
		v1.GET("/catalog/brands", h.listBrands)
		v1.GET("/reviews/:productId", h.listReviews)
	}

	user := v1.Group("", h.requireAuth())
	{
		user.POST("/cart/add", h.addToCart)
		user.PUT("/cart/update-cart", h.updateCartItem)
		user.GET("/cart/:userId", h.ownerParam("userId"), h.getCart)
		user.DELETE("/cart/:userId/:productId", h.ownerParam("userId"), h.removeCartItem)

		user.POST("/addresses/add", h.addAddress)
		user.GET("/addresses/:userId", h.ownerParam("userId"), h.listAddresses)
		user.PUT("/addresses/:userId/:addressId", h.ownerParam("userId"), h.updateAddress)
		user.DELETE("/addresses/:userId/:addressId", h.ownerParam("userId"), h.deleteAddress)

		user.POST("/orders/create", h.createOrder)
		user.GET("/orders/list/:userId", h.ownerParam("userId"), h.listOrders)
		user.GET("/orders/details/:orderId", h.getOrderDetail)

		user.POST("/reviews/add", h.addReview)
	}

	admin := v1.Group("", h.requireAuth(), h.requireAdmin())
	{
		admin.POST("/products", h.createProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)

		admin.GET("/orders", h.listAllOrders)
		admin.PUT("/orders/:orderId", h.updateOrderStatus)

		admin.GET("/admin/products/export", h.exportProducts)
	}

	v1.GET("/admin/orders/ws", h.requireAuthWithQueryToken(), h.requireAdmin(), h.orderFeedSocket)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	}, "")
}

// readinessCheck pings every backend the service depends on
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for _, p := range h.readiness {
		if err := p.Ping(ctx); err != nil {
			util.GetLogger().Warn("Readiness check failed", zap.Error(err))
			respondMessage(c, http.StatusServiceUnavailable, false, "Service not ready")
			return
		}
	}

	respondOK(c, http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	}, "")
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()
	}
}
