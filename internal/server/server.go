package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"storefront-backend/internal/handler"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
)

type Server struct {
	echo            *echo.Echo
	productHandler  *handler.ProductHandler
	cartHandler     *handler.CartHandler
	checkoutHandler *handler.CheckoutHandler
	orderHandler    *handler.OrderHandler
	webhookHandler  *handler.WebhookHandler
	userHandler     *handler.UserHandler
	shippingHandler *handler.ShippingHandler
}

type Services struct {
	Catalog  service.CatalogService
	Cart     service.CartService
	Checkout service.CheckoutService
	Order    service.OrderService
	Webhook  service.WebhookService
	Profile  service.ProfileService
	Shipping service.ShippingService
}

func NewServer(services *Services, auth *middleware.ClerkAuth, serverMetrics *metrics.ServerMetrics) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(auth.Middleware())
	e.Use(serverMetrics.Middleware())

	s := &Server{
		echo:            e,
		productHandler:  handler.NewProductHandler(services.Catalog),
		cartHandler:     handler.NewCartHandler(services.Cart),
		checkoutHandler: handler.NewCheckoutHandler(services.Checkout),
		orderHandler:    handler.NewOrderHandler(services.Order),
		webhookHandler:  handler.NewWebhookHandler(services.Webhook),
		userHandler:     handler.NewUserHandler(services.Profile),
		shippingHandler: handler.NewShippingHandler(services.Shipping),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- catalog --------
	api.GET("/products", s.productHandler.GetProducts)
	api.GET("/products/:productID", s.productHandler.GetProduct)
	api.GET("/categories", s.productHandler.GetCategories)

	// -------- cart --------
	api.GET("/cart", s.cartHandler.GetCart)
	api.POST("/cart-items", s.cartHandler.AddItem)
	api.PUT("/cart-items/:itemID", s.cartHandler.UpdateItem)
	api.DELETE("/cart-items/:itemID", s.cartHandler.RemoveItem)
	api.POST("/clean-cart-stock", s.cartHandler.CleanCartStock)

	// -------- checkout / orders --------
	api.POST("/create-checkout-session", s.checkoutHandler.CreateSession)
	api.GET("/orders", s.orderHandler.GetOrders)
	api.GET("/orders/:orderID", s.orderHandler.GetOrder)

	// -------- webhooks --------
	api.POST("/stripe-webhook", s.webhookHandler.StripeWebhook)
	api.POST("/clerk-user-created", s.webhookHandler.ClerkUserCreated)

	// -------- users --------
	api.GET("/user-profile/:userID", s.userHandler.GetProfile)
	api.POST("/user-profile", s.userHandler.SaveProfile)

	// -------- fulfillment (store admin) --------
	admin := api.Group("/admin")
	admin.POST("/orders/:orderID/rates", s.shippingHandler.PreviewRates)
	admin.POST("/orders/:orderID/generate-label", s.shippingHandler.GenerateLabel)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
