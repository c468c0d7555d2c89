// Command seed inserts a few demo parking spots owned by the oldest user.
// Register at least one account through the API before running it.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/parkseva/api/internal/config"
	"github.com/parkseva/api/internal/connect"
	"github.com/parkseva/api/internal/models"
)

var demoSpots = []models.Spot{
	{Title: "Basement Parking A", Address: "MG Road", City: "Bengaluru", Landmark: "Metro Gate 2", PricePerHour: 60, Capacity: 12},
	{Title: "Covered Slot - B1", Address: "Andheri West", City: "Mumbai", Landmark: "Infinity Mall", PricePerHour: 80, Capacity: 5},
	{Title: "Open Lot", Address: "Connaught Place", City: "Delhi", Landmark: "Block A", PricePerHour: 40, Capacity: 20},
}

func main() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	client, err := connect.MongoDBConnect(cfg)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := connect.MongoDBDisconnect(); err != nil {
			logger.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seed(ctx, models.MongodbNewRepo(client, cfg.MongoDBName), logger); err != nil {
		logger.Error("Seeding failed", "error", err)
		cancel()
		_ = connect.MongoDBDisconnect()
		os.Exit(1)
	}
}

type seedRepo interface {
	EnsureIndexes(ctx context.Context) error
	FirstUser(ctx context.Context) (*models.User, error)
	CreateSpot(ctx context.Context, spot *models.Spot) (*models.Spot, error)
}

func seed(ctx context.Context, repo seedRepo, logger *slog.Logger) error {
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	owner, err := repo.FirstUser(ctx)
	if errors.Is(err, models.ErrNotFound) {
		return errors.New("no users found, register one through the API first")
	}
	if err != nil {
		return err
	}

	for _, tmpl := range demoSpots {
		spot := tmpl
		spot.OwnerID = owner.ID
		spot.IsActive = true
		spot.Rating = models.DefaultSpotRating
		if _, err := repo.CreateSpot(ctx, &spot); err != nil {
			return err
		}
		logger.Info("Seeded parking spot", "id", spot.ID.Hex(), "title", spot.Title, "city", spot.City)
	}

	logger.Info("Seeding complete", "owner", owner.Email, "spots", len(demoSpots))
	return nil
}
