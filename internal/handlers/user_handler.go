package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkseva/api/internal/models"
	"github.com/parkseva/api/internal/services"
)

func GetProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session(c)
		if !ok {
			return
		}

		user, err := u.GetProfile(c.Request.Context(), s.UserID)
		if err != nil {
			respondError(c, err, "User not found", "Server error retrieving profile")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"user": user}, "Profile retrieved successfully"))
	}
}

func UpdateProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session(c)
		if !ok {
			return
		}

		var req services.UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		user, err := u.UpdateProfile(c.Request.Context(), s.UserID, req)
		if err != nil {
			respondError(c, err, "User not found", "Server error updating profile")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"user": user}, "Profile updated successfully"))
	}
}
