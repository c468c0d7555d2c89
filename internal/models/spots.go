package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortRatingDesc  = "rating_desc"
	SortDistanceAsc = "distance_asc" // placeholder until spots are geo-indexed
)

const DefaultSpotRating = 4.5

type Coords struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

type Spot struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID `bson:"owner" json:"owner" validate:"required"`
	Title        string             `bson:"title" json:"title" validate:"required,max=120"`
	Address      string             `bson:"address" json:"address" validate:"required"`
	City         string             `bson:"city" json:"city" validate:"required"`
	Landmark     string             `bson:"landmark,omitempty" json:"landmark,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	PricePerHour float64            `bson:"pricePerHour" json:"pricePerHour" validate:"gte=0"`
	Capacity     int                `bson:"capacity" json:"capacity" validate:"gte=1"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	Rating       float64            `bson:"rating" json:"rating" validate:"gte=0,lte=5"`
	Coords       *Coords            `bson:"coords,omitempty" json:"coords,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SpotSummary is the slice of a spot embedded in booking listings.
type SpotSummary struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Address      string             `bson:"address" json:"address"`
	PricePerHour float64            `bson:"pricePerHour" json:"pricePerHour"`
}

// SpotSearch filters active spots. Offset and Limit page the sorted set.
type SpotSearch struct {
	Query    string
	MaxPrice *float64
	Sort     string
	Offset   int
	Limit    int
}

type SpotsRepo interface {
	CreateSpot(ctx context.Context, spot *Spot) (*Spot, error)
	GetSpotByID(ctx context.Context, id primitive.ObjectID) (*Spot, error)
	SearchSpots(ctx context.Context, search SpotSearch) ([]*Spot, int64, error)
}

func (s *Spot) BeforeCreate() {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.Capacity == 0 {
		s.Capacity = 1
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
}

// NormalizeSort maps unknown sort keys to price ascending.
func NormalizeSort(sort string) string {
	switch sort {
	case SortPriceAsc, SortPriceDesc, SortRatingDesc, SortDistanceAsc:
		return sort
	default:
		return SortPriceAsc
	}
}

// EffectiveCapacity treats a missing or invalid capacity as a single slot.
func (s *Spot) EffectiveCapacity() int {
	if s.Capacity < 1 {
		return 1
	}
	return s.Capacity
}
