package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	booking.BeforeCreate()
	if _, err := col.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) GetBookingForUser(ctx context.Context, id, userID primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var booking Booking
	if err := col.FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

// UpdateBookingStatus moves the booking to status only while its current
// status is one of from. A booking that exists but has already moved on
// yields ErrInvalidTransition.
func (mdb *MongodbRepo) UpdateBookingStatus(ctx context.Context, id, userID primitive.ObjectID, from []BookingStatus, to BookingStatus) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{
		"_id":    id,
		"user":   userID,
		"status": bson.M{"$in": from},
	}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if _, err := mdb.GetBookingForUser(ctx, id, userID); err != nil {
		return nil, err
	}
	return nil, ErrInvalidTransition
}

func (mdb *MongodbRepo) ListBookingsByUser(ctx context.Context, userID primitive.ObjectID, offset, limit int) ([]*BookingView, int64, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %w", err)
	}

	match := bson.M{"user": userID}
	total, err := col.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: int64(offset)}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         SpotsColName,
			"localField":   "spot",
			"foreignField": "_id",
			"as":           "spot",
			"pipeline": bson.A{
				bson.M{"$project": bson.M{"title": 1, "address": 1, "pricePerHour": 1}},
			},
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$spot", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*BookingView, 0, limit)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, total, nil
}

// overlapFilter relies on zero padded HH:mm strings, whose lexical order is
// their time order.
func overlapFilter(spotIDs []primitive.ObjectID, date string, window TimeWindow) bson.M {
	return bson.M{
		"spot":      bson.M{"$in": spotIDs},
		"date":      date,
		"status":    bson.M{"$ne": StatusCancelled},
		"startTime": bson.M{"$lt": window.EndClock()},
		"endTime":   bson.M{"$gt": window.StartClock()},
	}
}

func (mdb *MongodbRepo) CountOverlapping(ctx context.Context, spotIDs []primitive.ObjectID, date string, window TimeWindow) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(spotIDs))
	if len(spotIDs) == 0 {
		return counts, nil
	}

	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: overlapFilter(spotIDs, date, window)}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$spot",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		SpotID primitive.ObjectID `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding overlap counts: %w", err)
	}
	for _, row := range rows {
		counts[row.SpotID] = row.Count
	}
	return counts, nil
}
