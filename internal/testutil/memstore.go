// Package testutil provides an in-memory store satisfying the repository
// interfaces, for service and handler tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/parkseva/api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	spots    map[primitive.ObjectID]*models.Spot
	bookings map[primitive.ObjectID]*models.Booking

	// CountDelay widens the gap between the overlap count and the insert.
	CountDelay time.Duration
}

func NewStore() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]*models.User),
		spots:    make(map[primitive.ObjectID]*models.Spot),
		bookings: make(map[primitive.ObjectID]*models.Booking),
	}
}

func (s *Store) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Phone == user.Phone {
			return nil, models.ErrUserExists
		}
	}
	user.BeforeCreate()
	cp := *user
	s.users[user.ID] = &cp
	return user, nil
}

func (s *Store) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) ExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email || u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if update.Phone != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Phone == *update.Phone {
				return nil, models.ErrUserExists
			}
		}
		u.Phone = *update.Phone
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Address != nil {
		u.Address = update.Address
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (s *Store) FirstUser(_ context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first *models.User
	for _, u := range s.users {
		if first == nil || u.CreatedAt.Before(first.CreatedAt) {
			first = u
		}
	}
	if first == nil {
		return nil, models.ErrNotFound
	}
	cp := *first
	return &cp, nil
}

func (s *Store) CreateSpot(_ context.Context, spot *models.Spot) (*models.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spot.BeforeCreate()
	cp := *spot
	s.spots[spot.ID] = &cp
	return spot, nil
}

func (s *Store) GetSpotByID(_ context.Context, id primitive.ObjectID) (*models.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spot, ok := s.spots[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *spot
	return &cp, nil
}

func (s *Store) SearchSpots(_ context.Context, search models.SpotSearch) ([]*models.Spot, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := strings.ToLower(search.Query)
	var matched []*models.Spot
	for _, spot := range s.spots {
		if !spot.IsActive {
			continue
		}
		if search.MaxPrice != nil && spot.PricePerHour > *search.MaxPrice {
			continue
		}
		if query != "" && !spotMatches(spot, query) {
			continue
		}
		cp := *spot
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch models.NormalizeSort(search.Sort) {
		case models.SortPriceDesc:
			if a.PricePerHour != b.PricePerHour {
				return a.PricePerHour > b.PricePerHour
			}
		case models.SortRatingDesc:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		case models.SortPriceAsc:
			if a.PricePerHour != b.PricePerHour {
				return a.PricePerHour < b.PricePerHour
			}
		}
		return a.ID.Hex() < b.ID.Hex()
	})

	total := int64(len(matched))
	if search.Offset >= len(matched) {
		return []*models.Spot{}, total, nil
	}
	end := search.Offset + search.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[search.Offset:end], total, nil
}

func spotMatches(spot *models.Spot, query string) bool {
	for _, field := range []string{spot.Title, spot.Address, spot.City, spot.Landmark} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func (s *Store) CreateBooking(_ context.Context, booking *models.Booking) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.UserID == booking.UserID && b.SpotID == booking.SpotID && b.Date == booking.Date &&
			b.StartTime == booking.StartTime && b.EndTime == booking.EndTime {
			return nil, models.ErrDuplicateBooking
		}
	}
	booking.BeforeCreate()
	cp := *booking
	s.bookings[booking.ID] = &cp
	return booking, nil
}

// PutBooking stores a booking as is, bypassing uniqueness checks.
func (s *Store) PutBooking(booking *models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	cp := *booking
	s.bookings[booking.ID] = &cp
}

func (s *Store) GetBookingForUser(_ context.Context, id, userID primitive.ObjectID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) UpdateBookingStatus(_ context.Context, id, userID primitive.ObjectID, from []models.BookingStatus, to models.BookingStatus) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.UserID != userID {
		return nil, models.ErrNotFound
	}
	for _, status := range from {
		if b.Status == status {
			b.Status = to
			b.UpdatedAt = time.Now()
			cp := *b
			return &cp, nil
		}
	}
	return nil, models.ErrInvalidTransition
}

func (s *Store) ListBookingsByUser(_ context.Context, userID primitive.ObjectID, offset, limit int) ([]*models.BookingView, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mine []*models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			mine = append(mine, b)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID.Hex() > mine[j].ID.Hex()
	})

	total := int64(len(mine))
	views := make([]*models.BookingView, 0, limit)
	for i := offset; i < len(mine) && i < offset+limit; i++ {
		b := mine[i]
		view := &models.BookingView{
			ID:        b.ID,
			UserID:    b.UserID,
			Date:      b.Date,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Price:     b.Price,
			Status:    b.Status,
			Notes:     b.Notes,
			CreatedAt: b.CreatedAt,
			UpdatedAt: b.UpdatedAt,
		}
		if spot, ok := s.spots[b.SpotID]; ok {
			view.Spot = &models.SpotSummary{
				ID:           spot.ID,
				Title:        spot.Title,
				Address:      spot.Address,
				PricePerHour: spot.PricePerHour,
			}
		}
		views = append(views, view)
	}
	return views, total, nil
}

func (s *Store) CountOverlapping(_ context.Context, spotIDs []primitive.ObjectID, date string, window models.TimeWindow) (map[primitive.ObjectID]int64, error) {
	s.mu.Lock()
	counts := make(map[primitive.ObjectID]int64, len(spotIDs))
	for _, b := range s.bookings {
		if b.Date != date || b.Status == models.StatusCancelled {
			continue
		}
		w, err := b.Window()
		if err != nil || !w.Overlaps(window) {
			continue
		}
		for _, id := range spotIDs {
			if b.SpotID == id {
				counts[id]++
			}
		}
	}
	s.mu.Unlock()

	if s.CountDelay > 0 {
		time.Sleep(s.CountDelay)
	}
	return counts, nil
}

// ActiveOverlapping counts non-cancelled bookings on spot and date that
// overlap window.
func (s *Store) ActiveOverlapping(spotID primitive.ObjectID, date string, window models.TimeWindow) int {
	counts, _ := s.CountOverlapping(context.Background(), []primitive.ObjectID{spotID}, date, window)
	return int(counts[spotID])
}

func (s *Store) Booking(id primitive.ObjectID) (*models.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	cp := *b
	return &cp, true
}
