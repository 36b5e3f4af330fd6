package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rental/internal/handler"
	"rental/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	VehicleHandler *handler.VehicleHandler
	BookingHandler *handler.BookingHandler
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Vehicle catalog routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", deps.VehicleHandler.ListVehicles)
			vehicles.GET("/:id", deps.VehicleHandler.GetVehicle)
			vehicles.POST("", deps.VehicleHandler.AddVehicle)
			vehicles.POST("/:id/active", deps.VehicleHandler.SetActive)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.RequestBooking)
			bookings.GET("", deps.BookingHandler.ListBookings)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.POST("/:id/cancel", deps.BookingHandler.CancelBooking)
		}

		// Administrative booking transitions share the same state machine
		// as the user-facing paths.
		admin := v1.Group("/admin")
		{
			admin.POST("/bookings/:id/status", deps.BookingHandler.UpdateStatus)
		}

		// Payment routes: checkout initiation and the provider webhook.
		payments := v1.Group("/payments")
		{
			payments.POST("/checkout", deps.PaymentHandler.CreateCheckout)
			payments.POST("/webhook", deps.PaymentHandler.Webhook)
		}
	}

	return router
}
