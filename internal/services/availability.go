package services

import (
	"context"

	"github.com/parkseva/api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AvailabilityChecker decides whether a spot has capacity left for a window.
// Booking creation and search both go through it.
type AvailabilityChecker struct {
	bookingsRepo models.BookingsRepo
}

func NewAvailabilityChecker(bookingsRepo models.BookingsRepo) *AvailabilityChecker {
	return &AvailabilityChecker{bookingsRepo: bookingsRepo}
}

func (ac *AvailabilityChecker) IsAvailable(ctx context.Context, spot *models.Spot, date string, window models.TimeWindow) (bool, error) {
	available, err := ac.Annotate(ctx, []*models.Spot{spot}, date, window)
	if err != nil {
		return false, err
	}
	return available[spot.ID], nil
}

// Annotate evaluates every spot with one ledger query.
func (ac *AvailabilityChecker) Annotate(ctx context.Context, spots []*models.Spot, date string, window models.TimeWindow) (map[primitive.ObjectID]bool, error) {
	ids := make([]primitive.ObjectID, 0, len(spots))
	for _, s := range spots {
		ids = append(ids, s.ID)
	}

	counts, err := ac.bookingsRepo.CountOverlapping(ctx, ids, date, window)
	if err != nil {
		return nil, err
	}

	available := make(map[primitive.ObjectID]bool, len(spots))
	for _, s := range spots {
		available[s.ID] = models.HasCapacity(counts[s.ID], s.EffectiveCapacity())
	}
	return available, nil
}
