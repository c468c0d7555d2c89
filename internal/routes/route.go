package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/parkseva/api/internal/container"
	"github.com/parkseva/api/internal/handlers"
	"github.com/parkseva/api/internal/middleware"
	"github.com/parkseva/api/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.Recovery(container.Logger))
	r.Use(middleware.Timeout(container.Config.RequestTimeout))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"service":     "parkseva-api",
			"environment": container.Config.Environment,
		}, "ParkSeva API is running"))
	})

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		database := "connected"
		status := http.StatusOK
		if container.Health == nil || container.Health.Ping(ctx) != nil {
			database = "disconnected"
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, models.ApiResponse{
			Success: status == http.StatusOK,
			Data: gin.H{
				"status":    http.StatusText(status),
				"database":  database,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(container.UserService))
		auth.POST("/login", handlers.Login(container.UserService))
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(container.UserService, container.Logger))
	{
		protected.GET("/auth/profile", handlers.GetProfile(container.UserService))
		protected.PUT("/auth/profile", handlers.UpdateProfile(container.UserService))

		protected.GET("/parking/search", handlers.SearchSpots(container.ParkingService))

		bookingRoutes := protected.Group("/bookings")
		bookingRoutes.POST("", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("/my", handlers.MyBookings(container.BookingService))
		bookingRoutes.DELETE("/:id", handlers.CancelBooking(container.BookingService))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse("Route not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse("Method not allowed"))
	})

	return r
}
