package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustWindow(t *testing.T, start, end string) TimeWindow {
	t.Helper()
	w, err := ParseTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func TestParseTimeWindow(t *testing.T) {
	w := mustWindow(t, "09:00", "11:30")
	assert.Equal(t, 540, w.Start)
	assert.Equal(t, 690, w.End)
	assert.Equal(t, 150, w.Minutes())
	assert.Equal(t, "09:00", w.StartClock())
	assert.Equal(t, "11:30", w.EndClock())

	// single digit hours are accepted and normalized
	w = mustWindow(t, "9:05", "10:00")
	assert.Equal(t, "09:05", w.StartClock())

	_, err := ParseTimeWindow("11:00", "11:00")
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)

	_, err = ParseTimeWindow("12:00", "10:00")
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)

	_, err = ParseTimeWindow("25:00", "26:00")
	assert.Error(t, err)

	_, err = ParseTimeWindow("nine", "10:00")
	assert.Error(t, err)
}

func TestTimeWindowOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     [2]string
		overlaps bool
	}{
		{"adjacent windows", [2]string{"09:00", "11:00"}, [2]string{"11:00", "13:00"}, false},
		{"one minute overlap", [2]string{"09:00", "11:00"}, [2]string{"10:59", "12:00"}, true},
		{"contained", [2]string{"08:00", "18:00"}, [2]string{"12:00", "13:00"}, true},
		{"identical", [2]string{"10:00", "11:00"}, [2]string{"10:00", "11:00"}, true},
		{"disjoint", [2]string{"06:00", "07:00"}, [2]string{"19:00", "20:00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustWindow(t, tt.a[0], tt.a[1])
			b := mustWindow(t, tt.b[0], tt.b[1])
			assert.Equal(t, tt.overlaps, a.Overlaps(b))
			assert.Equal(t, tt.overlaps, b.Overlaps(a))
		})
	}
}

func TestBookingPrice(t *testing.T) {
	assert.Equal(t, 120.0, BookingPrice(60, mustWindow(t, "09:00", "11:00")))
	assert.Equal(t, 60.0, BookingPrice(60, mustWindow(t, "09:00", "09:30")))
	assert.Equal(t, 180.0, BookingPrice(60, mustWindow(t, "09:00", "11:01")))
	assert.Equal(t, 0.0, BookingPrice(0, mustWindow(t, "09:00", "10:00")))
}

func TestHasCapacity(t *testing.T) {
	assert.True(t, HasCapacity(0, 1))
	assert.False(t, HasCapacity(1, 1))
	assert.True(t, HasCapacity(11, 12))
	assert.False(t, HasCapacity(12, 12))
	assert.False(t, HasCapacity(1, 0), "zero capacity behaves as one")
}

func TestBookingStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusActive))
	assert.True(t, StatusActive.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusActive.CanTransitionTo(StatusPending))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusActive))

	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusActive} {
		assert.True(t, s.CanTransitionTo(StatusCancelled), s)
	}
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))

	assert.True(t, StatusCancelled.Valid())
	assert.False(t, BookingStatus("refunded").Valid())
	assert.False(t, StatusPending.CanTransitionTo("refunded"))
	assert.False(t, BookingStatus("refunded").CanTransitionTo(StatusCancelled))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", d)

	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)
	_, err = ParseDate("09/03/2025")
	assert.Error(t, err)
}

func TestOverlapFilter(t *testing.T) {
	spot := primitive.NewObjectID()
	filter := overlapFilter([]primitive.ObjectID{spot}, "2025-03-09", mustWindow(t, "09:00", "11:00"))

	assert.Equal(t, bson.M{"$lt": "11:00"}, filter["startTime"])
	assert.Equal(t, bson.M{"$gt": "09:00"}, filter["endTime"])
	assert.Equal(t, bson.M{"$ne": StatusCancelled}, filter["status"])
	assert.Equal(t, "2025-03-09", filter["date"])
}

func TestSpotSearchFilter(t *testing.T) {
	maxPrice := 50.0
	filter := spotSearchFilter(SpotSearch{Query: "mg.road (east)", MaxPrice: &maxPrice})

	assert.Equal(t, true, filter["isActive"])
	assert.Equal(t, bson.M{"$lte": 50.0}, filter["pricePerHour"])

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, len(searchableSpotFields))
	assert.Equal(t,
		bson.M{"title": primitive.Regex{Pattern: `mg\.road \(east\)`, Options: "i"}},
		or[0])

	filter = spotSearchFilter(SpotSearch{})
	assert.NotContains(t, filter, "$or")
	assert.NotContains(t, filter, "pricePerHour")
}

func TestSpotSortSpec(t *testing.T) {
	assert.Equal(t, SortPriceAsc, NormalizeSort("nearest"))
	assert.Equal(t, SortRatingDesc, NormalizeSort(SortRatingDesc))

	for _, sort := range []string{"", SortPriceAsc, SortPriceDesc, SortRatingDesc, SortDistanceAsc} {
		spec := spotSortSpec(sort)
		assert.Equal(t, "_id", spec[len(spec)-1].Key, "sort %q must tie-break on _id", sort)
	}
	assert.Equal(t, "pricePerHour", spotSortSpec("bogus")[0].Key)
	assert.Equal(t, -1, spotSortSpec(SortPriceDesc)[0].Value)
}
