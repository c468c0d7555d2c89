package models

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Validate = newValidator()

// newValidator reports fields by their json or form name so messages match
// what clients sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

const (
	UsersColName    = "users"
	SpotsColName    = "parkingspots"
	BookingsColName = "bookings"
	LocksColName    = "booking_locks"
)

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

// Ping reports whether the database is reachable; used by the health endpoint.
func (mdb *MongodbRepo) Ping(ctx context.Context) error {
	if mdb.mongodbClient == nil {
		return fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Ping(ctx, nil)
}

// EnsureIndexes creates the unique constraints the services rely on, plus
// the search and TTL indexes.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersColName: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
			{
				Keys:    bson.D{{Key: "phone", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("phone_unique"),
			},
		},
		SpotsColName: {
			{
				Keys:    bson.D{{Key: "city", Value: 1}},
				Options: options.Index().SetName("city_idx"),
			},
			{
				Keys: bson.D{
					{Key: "isActive", Value: 1},
					{Key: "pricePerHour", Value: 1},
				},
				Options: options.Index().SetName("active_price_idx"),
			},
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "address", Value: "text"},
					{Key: "city", Value: "text"},
					{Key: "landmark", Value: "text"},
					{Key: "description", Value: "text"},
				},
				Options: options.Index().SetName("spot_text_idx"),
			},
		},
		BookingsColName: {
			// Backstop against the same user booking the identical slot twice.
			{
				Keys: bson.D{
					{Key: "user", Value: 1},
					{Key: "spot", Value: 1},
					{Key: "date", Value: 1},
					{Key: "startTime", Value: 1},
					{Key: "endTime", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("booking_slot_unique"),
			},
			{
				Keys: bson.D{
					{Key: "spot", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("spot_date_idx"),
			},
			{
				Keys: bson.D{
					{Key: "user", Value: 1},
					{Key: "createdAt", Value: -1},
				},
				Options: options.Index().SetName("user_created_idx"),
			},
		},
		LocksColName: {
			{
				Keys: bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().
					SetExpireAfterSeconds(0).
					SetName("expires_at_ttl"),
			},
		},
	}

	for colName, idx := range indexes {
		col, err := mdb.GetCollection(ctx, colName)
		if err != nil {
			return fmt.Errorf("error getting collection: %w", err)
		}
		if _, err := col.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("error creating indexes on %s: %w", colName, err)
		}
	}

	return nil
}
