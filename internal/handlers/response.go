package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkseva/api/internal/helpers"
	"github.com/parkseva/api/internal/models"
)

const msgInvalidPayload = "Invalid request payload"

// respondError writes the envelope for err. Unexpected errors are attached
// to the context for the error middleware to log, and the client only sees
// internalMsg.
func respondError(c *gin.Context, err error, notFoundMsg, internalMsg string) {
	if msgs := helpers.ValidationMessages(err); msgs != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("Validation failed", msgs...))
		return
	}

	switch {
	case errors.Is(err, models.ErrInvalidTimeWindow):
		c.JSON(http.StatusBadRequest, models.ErrorResponse("Validation failed", err.Error()))
	case errors.Is(err, helpers.ErrTokenMissing), errors.Is(err, helpers.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(helpers.UnauthorizedMessage))
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("Invalid email or password"))
	case errors.Is(err, models.ErrUserExists):
		c.JSON(http.StatusBadRequest, models.ErrorResponse("User already exists with this email or phone number"))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse(notFoundMsg))
	case errors.Is(err, models.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, models.ErrorResponse("Spot not available for the given time range"))
	case errors.Is(err, models.ErrDuplicateBooking):
		c.JSON(http.StatusConflict, models.ErrorResponse("A similar booking already exists"))
	case errors.Is(err, models.ErrLockTimeout):
		c.JSON(http.StatusConflict, models.ErrorResponse("Spot is busy, please retry"))
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, models.ErrorResponse("This booking cannot be cancelled"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(internalMsg))
	}
}

func respondBindError(c *gin.Context, err error) {
	if msgs := helpers.ValidationMessages(err); msgs != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("Validation failed", msgs...))
		return
	}
	c.JSON(http.StatusBadRequest, models.ErrorResponse(msgInvalidPayload))
}

// session returns the authenticated caller or writes a 401.
func session(c *gin.Context) (*helpers.Session, bool) {
	s, ok := helpers.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(helpers.UnauthorizedMessage))
		return nil, false
	}
	return s, true
}
