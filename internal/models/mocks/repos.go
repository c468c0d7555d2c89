// Package mocks holds testify mocks for the repository and locker interfaces.
package mocks

import (
	"context"

	"github.com/parkseva/api/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type UserRepo struct {
	mock.Mock
}

func NewUserRepo(t testingT) *UserRepo {
	m := &UserRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *UserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if fn, ok := args.Get(0).(func(context.Context, *models.User) *models.User); ok {
		return fn(ctx, user), args.Error(1)
	}
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepo) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	args := m.Called(ctx, email, phone)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, id, update)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepo) FirstUser(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type SpotsRepo struct {
	mock.Mock
}

func NewSpotsRepo(t testingT) *SpotsRepo {
	m := &SpotsRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SpotsRepo) CreateSpot(ctx context.Context, spot *models.Spot) (*models.Spot, error) {
	args := m.Called(ctx, spot)
	if fn, ok := args.Get(0).(func(context.Context, *models.Spot) *models.Spot); ok {
		return fn(ctx, spot), args.Error(1)
	}
	s, _ := args.Get(0).(*models.Spot)
	return s, args.Error(1)
}

func (m *SpotsRepo) GetSpotByID(ctx context.Context, id primitive.ObjectID) (*models.Spot, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Spot)
	return s, args.Error(1)
}

func (m *SpotsRepo) SearchSpots(ctx context.Context, search models.SpotSearch) ([]*models.Spot, int64, error) {
	args := m.Called(ctx, search)
	s, _ := args.Get(0).([]*models.Spot)
	return s, args.Get(1).(int64), args.Error(2)
}

type BookingsRepo struct {
	mock.Mock
}

func NewBookingsRepo(t testingT) *BookingsRepo {
	m := &BookingsRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BookingsRepo) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	args := m.Called(ctx, booking)
	if fn, ok := args.Get(0).(func(context.Context, *models.Booking) *models.Booking); ok {
		return fn(ctx, booking), args.Error(1)
	}
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *BookingsRepo) GetBookingForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Booking, error) {
	args := m.Called(ctx, id, userID)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *BookingsRepo) UpdateBookingStatus(ctx context.Context, id, userID primitive.ObjectID, from []models.BookingStatus, to models.BookingStatus) (*models.Booking, error) {
	args := m.Called(ctx, id, userID, from, to)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *BookingsRepo) ListBookingsByUser(ctx context.Context, userID primitive.ObjectID, offset, limit int) ([]*models.BookingView, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	b, _ := args.Get(0).([]*models.BookingView)
	return b, args.Get(1).(int64), args.Error(2)
}

func (m *BookingsRepo) CountOverlapping(ctx context.Context, spotIDs []primitive.ObjectID, date string, window models.TimeWindow) (map[primitive.ObjectID]int64, error) {
	args := m.Called(ctx, spotIDs, date, window)
	c, _ := args.Get(0).(map[primitive.ObjectID]int64)
	return c, args.Error(1)
}

type SlotLocker struct {
	mock.Mock
}

func NewSlotLocker(t testingT) *SlotLocker {
	m := &SlotLocker{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SlotLocker) Acquire(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	release, _ := args.Get(0).(func())
	return release, args.Error(1)
}
