package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkseva/api/internal/models"
	"github.com/parkseva/api/internal/services"
)

func SearchSpots(p *services.ParkingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.SearchSpotsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondBindError(c, err)
			return
		}

		res, err := p.Search(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, "Parking spot not found", "Failed to search parking spots")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(res, ""))
	}
}
