package models

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusActive    BookingStatus = "active"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// CancellableStatuses are the states a user may still cancel from.
var CancellableStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusActive}

var statusRank = map[BookingStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusActive:    2,
	StatusCompleted: 3,
}

func (s BookingStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusCancelled
}

func (s BookingStatus) Cancellable() bool {
	for _, c := range CancellableStatuses {
		if s == c {
			return true
		}
	}
	return false
}

// CanTransitionTo allows forward moves along pending, confirmed, active,
// completed, and a move to cancelled from any cancellable state.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if next == StatusCancelled {
		return s.Cancellable()
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	return ok && to > from
}

// TimeWindow is a half-open [Start, End) range in minutes since midnight.
type TimeWindow struct {
	Start int
	End   int
}

func parseClock(value string) (int, error) {
	t, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseTimeWindow parses two HH:mm clocks and rejects windows whose end is
// not strictly after the start.
func ParseTimeWindow(start, end string) (TimeWindow, error) {
	s, err := parseClock(start)
	if err != nil {
		return TimeWindow{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return TimeWindow{}, err
	}
	if e <= s {
		return TimeWindow{}, ErrInvalidTimeWindow
	}
	return TimeWindow{Start: s, End: e}, nil
}

// Overlaps reports whether the windows share any instant. Adjacent windows
// such as [09:00,11:00) and [11:00,13:00) do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && w.End > other.Start
}

func (w TimeWindow) Minutes() int {
	return w.End - w.Start
}

func (w TimeWindow) StartClock() string {
	return formatClock(w.Start)
}

func (w TimeWindow) EndClock() string {
	return formatClock(w.End)
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate validates a calendar day and returns it in canonical form.
func ParseDate(value string) (string, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", value, err)
	}
	return d.Format(DateLayout), nil
}

// BookingPrice charges whole hours, rounded up, with a one hour minimum.
func BookingPrice(pricePerHour float64, window TimeWindow) float64 {
	hours := math.Ceil(float64(window.Minutes()) / 60)
	if hours < 1 {
		hours = 1
	}
	return hours * pricePerHour
}

// HasCapacity reports whether one more booking fits alongside overlapping.
func HasCapacity(overlapping int64, capacity int) bool {
	if capacity < 1 {
		capacity = 1
	}
	return overlapping < int64(capacity)
}

type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	SpotID    primitive.ObjectID `bson:"spot" json:"spot"`
	Date      string             `bson:"date" json:"date"`
	StartTime string             `bson:"startTime" json:"startTime"`
	EndTime   string             `bson:"endTime" json:"endTime"`
	Price     float64            `bson:"price" json:"price"`
	Status    BookingStatus      `bson:"status" json:"status"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BookingView is a booking as listed to its owner, with the spot summary
// in place of the bare spot id.
type BookingView struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Spot      *SpotSummary       `bson:"spot" json:"spot"`
	Date      string             `bson:"date" json:"date"`
	StartTime string             `bson:"startTime" json:"startTime"`
	EndTime   string             `bson:"endTime" json:"endTime"`
	Price     float64            `bson:"price" json:"price"`
	Status    BookingStatus      `bson:"status" json:"status"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (b *Booking) BeforeCreate() {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.Status == "" {
		b.Status = StatusConfirmed
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Window reparses the stored clocks.
func (b *Booking) Window() (TimeWindow, error) {
	return ParseTimeWindow(b.StartTime, b.EndTime)
}

type BookingsRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingForUser(ctx context.Context, id, userID primitive.ObjectID) (*Booking, error)
	UpdateBookingStatus(ctx context.Context, id, userID primitive.ObjectID, from []BookingStatus, to BookingStatus) (*Booking, error)
	ListBookingsByUser(ctx context.Context, userID primitive.ObjectID, offset, limit int) ([]*BookingView, int64, error)
	// CountOverlapping returns, per spot, the non-cancelled bookings on date
	// whose window overlaps window. Spots with none are absent from the map.
	CountOverlapping(ctx context.Context, spotIDs []primitive.ObjectID, date string, window TimeWindow) (map[primitive.ObjectID]int64, error)
}
