package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parkseva/api/internal/config"
	"github.com/parkseva/api/internal/helpers"
	"github.com/parkseva/api/internal/models"
	"github.com/parkseva/api/internal/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Repositories groups the storage the services are built on.
type Repositories struct {
	Users    models.UserRepo
	Spots    models.SpotsRepo
	Bookings models.BookingsRepo
	Health   Pinger
}

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Health Pinger

	UserService    *services.UserService
	ParkingService *services.ParkingService
	BookingService *services.BookingService
}

// NewContainer wires the MongoDB repositories and the configured slot locker.
// redisClient may be nil unless the redis lock backend is selected.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
) (*Container, error) {
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBName)

	locker, err := NewSlotLocker(cfg, repo, redisClient)
	if err != nil {
		return nil, err
	}

	return NewContainerWithRepos(cfg, logger, Repositories{
		Users:    repo,
		Spots:    repo,
		Bookings: repo,
		Health:   repo,
	}, locker), nil
}

func NewContainerWithRepos(cfg *config.Config, logger *slog.Logger, repos Repositories, locker models.SlotLocker) *Container {
	tokens := helpers.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	availability := services.NewAvailabilityChecker(repos.Bookings)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Health:         repos.Health,
		UserService:    services.NewUserService(repos.Users, tokens),
		ParkingService: services.NewParkingService(repos.Spots, availability),
		BookingService: services.NewBookingService(repos.Spots, repos.Bookings, availability, locker, logger),
	}
}

func NewSlotLocker(cfg *config.Config, repo *models.MongodbRepo, redisClient *redis.Client) (models.SlotLocker, error) {
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis lock backend selected but no redis client configured")
		}
		return models.NewRedisLocker(redisClient, cfg.LockTTL, cfg.LockWait), nil
	case config.LockBackendMemory:
		return models.NewLocalLocker(cfg.LockWait), nil
	default:
		return models.NewMongoLocker(repo, cfg.LockTTL, cfg.LockWait), nil
	}
}
