package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkseva/api/internal/models"
	"github.com/parkseva/api/internal/services"
)

func CreateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session(c)
		if !ok {
			return
		}

		var req services.CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		booking, err := b.CreateBooking(c.Request.Context(), s.UserID, req)
		if err != nil {
			respondError(c, err, "Parking spot not found", "Failed to create booking")
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(gin.H{"bookingId": booking.ID}, ""))
	}
}

func MyBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session(c)
		if !ok {
			return
		}

		var req services.MyBookingsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondBindError(c, err)
			return
		}

		list, err := b.MyBookings(c.Request.Context(), s.UserID, req)
		if err != nil {
			respondError(c, err, "Booking not found", "Failed to load bookings")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(list, ""))
	}
}

func CancelBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session(c)
		if !ok {
			return
		}

		if err := b.CancelBooking(c.Request.Context(), s, c.Param("id")); err != nil {
			respondError(c, err, "Booking not found", "Failed to cancel booking")
			return
		}

		c.JSON(http.StatusOK, models.ApiResponse{Success: true})
	}
}
