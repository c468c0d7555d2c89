package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkseva/api/internal/models"
	"github.com/parkseva/api/internal/services"
)

func Register(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		res, err := u.Register(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, "User not found", "Server error during registration")
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(res, "User registered successfully"))
	}
}

func Login(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		res, err := u.Login(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, "User not found", "Server error during login")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(res, "Login successful"))
	}
}
