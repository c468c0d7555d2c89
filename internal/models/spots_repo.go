package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var searchableSpotFields = []string{"title", "address", "city", "landmark"}

func (mdb *MongodbRepo) CreateSpot(ctx context.Context, spot *Spot) (*Spot, error) {
	col, err := mdb.GetCollection(ctx, SpotsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	spot.BeforeCreate()
	if _, err := col.InsertOne(ctx, spot); err != nil {
		return nil, fmt.Errorf("failed to insert spot: %w", err)
	}
	return spot, nil
}

func (mdb *MongodbRepo) GetSpotByID(ctx context.Context, id primitive.ObjectID) (*Spot, error) {
	col, err := mdb.GetCollection(ctx, SpotsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var spot Spot
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&spot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find spot: %w", err)
	}
	return &spot, nil
}

func spotSearchFilter(search SpotSearch) bson.M {
	filter := bson.M{"isActive": true}
	if search.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search.Query), Options: "i"}
		or := make(bson.A, 0, len(searchableSpotFields))
		for _, field := range searchableSpotFields {
			or = append(or, bson.M{field: pattern})
		}
		filter["$or"] = or
	}
	if search.MaxPrice != nil {
		filter["pricePerHour"] = bson.M{"$lte": *search.MaxPrice}
	}
	return filter
}

// spotSortSpec always ends with _id so equal keys page deterministically.
func spotSortSpec(sort string) bson.D {
	switch NormalizeSort(sort) {
	case SortPriceDesc:
		return bson.D{{Key: "pricePerHour", Value: -1}, {Key: "_id", Value: 1}}
	case SortRatingDesc:
		return bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}
	case SortDistanceAsc:
		return bson.D{{Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "pricePerHour", Value: 1}, {Key: "_id", Value: 1}}
	}
}

func (mdb *MongodbRepo) SearchSpots(ctx context.Context, search SpotSearch) ([]*Spot, int64, error) {
	col, err := mdb.GetCollection(ctx, SpotsColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %w", err)
	}

	filter := spotSearchFilter(search)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count spots: %w", err)
	}

	opts := options.Find().
		SetSort(spotSortSpec(search.Sort)).
		SetSkip(int64(search.Offset)).
		SetLimit(int64(search.Limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search spots: %w", err)
	}
	defer cursor.Close(ctx)

	spots := make([]*Spot, 0, search.Limit)
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, 0, fmt.Errorf("error decoding spots: %w", err)
	}

	return spots, total, nil
}
