package server

import (
	"net/http"
	"razorpay-billing-service/internal/handler"
	"razorpay-billing-service/internal/poller"
	"razorpay-billing-service/internal/service"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	billingHandler *handler.BillingHandler
	gatewayReady   bool
}

func NewServer(billingService service.BillingService, paymentPoller *poller.Poller, gatewayReady bool) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	billingHandler := handler.NewBillingHandler(billingService, paymentPoller)

	s := &Server{
		echo:           e,
		billingHandler: billingHandler,
		gatewayReady:   gatewayReady,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":             "ok",
			"timestamp":          time.Now().UTC().Format(time.RFC3339),
			"gatewayInitialized": s.gatewayReady,
		})
	})

	api := s.echo.Group("/api")

	// -------- one-time payments --------
	api.POST("/razorpay-order", s.billingHandler.CreateOrder)
	api.POST("/razorpay-verify", s.billingHandler.VerifyPayment)
	api.GET("/payment-status/:orderID", s.billingHandler.PaymentStatus)
	api.GET("/await-payment/:orderID", s.billingHandler.AwaitPayment)

	// -------- subscriptions --------
	api.POST("/create-subscription", s.billingHandler.CreateSubscription)
	api.POST("/verify-subscription", s.billingHandler.VerifySubscription)
	api.POST("/cancel-subscription", s.billingHandler.CancelSubscription)

	// -------- users --------
	api.GET("/users/:userID", s.billingHandler.GetUser)

	// -------- gateway webhooks --------
	api.POST("/webhooks/razorpay", s.billingHandler.RazorpayWebhook)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
