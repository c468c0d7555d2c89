package services

import (
	"context"
	"log/slog"

	"github.com/parkseva/api/internal/helpers"
	"github.com/parkseva/api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateBookingRequest struct {
	SpotID    string `json:"spotId" validate:"required,mongodb"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
	Notes     string `json:"notes" validate:"max=500"`
}

type MyBookingsRequest struct {
	Page  int `form:"page" validate:"max=100000"`
	Limit int `form:"limit"`
}

type BookingList struct {
	Bookings []*models.BookingView `json:"bookings"`
	models.Page
}

type BookingService struct {
	spotsRepo    models.SpotsRepo
	bookingsRepo models.BookingsRepo
	availability *AvailabilityChecker
	locker       models.SlotLocker
	logger       *slog.Logger
}

func NewBookingService(
	spotsRepo models.SpotsRepo,
	bookingsRepo models.BookingsRepo,
	availability *AvailabilityChecker,
	locker models.SlotLocker,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		spotsRepo:    spotsRepo,
		bookingsRepo: bookingsRepo,
		availability: availability,
		locker:       locker,
		logger:       logger,
	}
}

// CreateBooking reserves one unit of a spot's capacity. The overlap count and
// the insert run under the (spot, date) slot lock, so concurrent requests
// cannot jointly exceed capacity.
func (bs *BookingService) CreateBooking(ctx context.Context, userID primitive.ObjectID, req CreateBookingRequest) (*models.Booking, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, err
	}

	spotID, err := primitive.ObjectIDFromHex(req.SpotID)
	if err != nil {
		return nil, models.ErrNotFound
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	window, err := models.ParseTimeWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	spot, err := bs.spotsRepo.GetSpotByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if !spot.IsActive {
		return nil, models.ErrNotFound
	}

	release, err := bs.locker.Acquire(ctx, models.SlotKey(spot.ID, date))
	if err != nil {
		return nil, err
	}
	defer release()

	ok, err := bs.availability.IsAvailable(ctx, spot, date, window)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrCapacityExceeded
	}

	booking, err := bs.bookingsRepo.CreateBooking(ctx, &models.Booking{
		UserID:    userID,
		SpotID:    spot.ID,
		Date:      date,
		StartTime: window.StartClock(),
		EndTime:   window.EndClock(),
		Price:     models.BookingPrice(spot.PricePerHour, window),
		Status:    models.StatusConfirmed,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}

	bs.logger.Info("booking created",
		"booking_id", booking.ID.Hex(),
		"spot_id", spot.ID.Hex(),
		"date", date,
		"window", window.StartClock()+"-"+window.EndClock(),
	)
	return booking, nil
}

// CancelBooking cancels one of the caller's bookings. Bookings owned by
// someone else are reported as missing.
func (bs *BookingService) CancelBooking(ctx context.Context, caller *helpers.Session, bookingID string) error {
	id, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		return models.ErrNotFound
	}

	booking, err := bs.bookingsRepo.GetBookingForUser(ctx, id, caller.UserID)
	if err != nil {
		return err
	}
	if !caller.Owns(booking.UserID) {
		return models.ErrNotFound
	}
	if !booking.Status.CanTransitionTo(models.StatusCancelled) {
		return models.ErrInvalidTransition
	}

	_, err = bs.bookingsRepo.UpdateBookingStatus(ctx, id, caller.UserID, models.CancellableStatuses, models.StatusCancelled)
	return err
}

func (bs *BookingService) MyBookings(ctx context.Context, userID primitive.ObjectID, req MyBookingsRequest) (*BookingList, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, err
	}
	page, limit := normalizePage(req.Page, req.Limit)

	bookings, total, err := bs.bookingsRepo.ListBookingsByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	return &BookingList{
		Bookings: bookings,
		Page: models.Page{
			TotalPages: models.TotalPages(total, limit),
			Total:      total,
		},
	}, nil
}
