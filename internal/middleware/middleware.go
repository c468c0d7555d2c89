package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/parkseva/api/internal/helpers"
	"github.com/parkseva/api/internal/models"
	"github.com/parkseva/api/internal/services"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// ErrorHandler logs errors handlers attached to the context. Details never
// reach the client; a generic envelope is written only if the handler wrote
// nothing itself.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID, _ := c.Get("request_id")
		for _, err := range c.Errors {
			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse("Internal server error"))
		}
	}
}

// Recovery turns a panic into a logged 500 envelope.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		requestID, _ := c.Get("request_id")
		logger.Error("Panic recovered",
			"request_id", requestID,
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse("Internal server error"))
	})
}

// Timeout bounds the request context; repository calls observe the deadline.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthMiddleware resolves the Authorization header to a Session. Missing and
// invalid credentials both end the request with the same 401 envelope.
func AuthMiddleware(userService *services.UserService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helpers.ExtractToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(helpers.UnauthorizedMessage))
			return
		}

		session, err := userService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, helpers.ErrTokenInvalid) || errors.Is(err, helpers.ErrTokenMissing) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(helpers.UnauthorizedMessage))
				return
			}
			requestID, _ := c.Get("request_id")
			logger.Error("Session lookup failed", "request_id", requestID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse("Internal server error"))
			return
		}

		c.Set(helpers.SessionKey, session)
		c.Next()
	}
}
