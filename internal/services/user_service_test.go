package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/parkseva/api/internal/helpers"
	"github.com/parkseva/api/internal/models"
	"github.com/parkseva/api/internal/models/mocks"
	"github.com/parkseva/api/internal/services"
	"github.com/parkseva/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUserService(repo models.UserRepo) (*services.UserService, *helpers.TokenManager) {
	tokens := helpers.NewTokenManager("test-secret", time.Hour)
	return services.NewUserService(repo, tokens), tokens
}

func registerRequest() services.RegisterRequest {
	return services.RegisterRequest{
		Name:     "Asha Rao",
		Email:    "  Asha@Example.com ",
		Password: "secret1",
		Phone:    "9876543210",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	store := testutil.NewStore()
	service, tokens := newUserService(store)
	ctx := context.Background()

	res, err := service.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.NotEqual(t, "secret1", res.User.Password)

	userID, err := tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.Hex(), userID)

	login, err := service.Login(ctx, services.LoginRequest{Email: "ASHA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = service.Login(ctx, services.LoginRequest{Email: "asha@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = service.Login(ctx, services.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestRegister_Duplicate(t *testing.T) {
	store := testutil.NewStore()
	service, _ := newUserService(store)
	ctx := context.Background()

	_, err := service.Register(ctx, registerRequest())
	require.NoError(t, err)

	samePhone := registerRequest()
	samePhone.Email = "other@example.com"
	_, err = service.Register(ctx, samePhone)
	assert.ErrorIs(t, err, models.ErrUserExists)
}

func TestRegister_InsertRaceMapsToUserExists(t *testing.T) {
	repo := mocks.NewUserRepo(t)
	service, _ := newUserService(repo)

	repo.On("ExistsByEmailOrPhone", mock.Anything, "asha@example.com", "9876543210").Return(false, nil)
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil, models.ErrUserExists)

	_, err := service.Register(context.Background(), registerRequest())
	assert.ErrorIs(t, err, models.ErrUserExists)
}

func TestRegister_Validation(t *testing.T) {
	service, _ := newUserService(mocks.NewUserRepo(t))

	req := registerRequest()
	req.Phone = "12345"
	req.Password = "123"
	req.Role = "admin"
	_, err := service.Register(context.Background(), req)
	require.Error(t, err)
	assert.ElementsMatch(t, []string{
		"password must be at least 6 characters",
		"phone must be exactly 10 characters",
		"role must be one of [user owner]",
	}, helpers.ValidationMessages(err))
}

func TestAuthenticate(t *testing.T) {
	store := testutil.NewStore()
	service, tokens := newUserService(store)
	ctx := context.Background()

	res, err := service.Register(ctx, registerRequest())
	require.NoError(t, err)

	session, err := service.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, session.UserID)
	assert.Equal(t, "user", session.Role)

	ghost, err := tokens.Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)
	_, err = service.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, helpers.ErrTokenInvalid)

	notAnID, err := tokens.Issue("user-1")
	require.NoError(t, err)
	_, err = service.Authenticate(ctx, notAnID)
	assert.ErrorIs(t, err, helpers.ErrTokenInvalid)

	_, err = service.Authenticate(ctx, "")
	assert.ErrorIs(t, err, helpers.ErrTokenMissing)
}

func TestUpdateProfile(t *testing.T) {
	store := testutil.NewStore()
	service, _ := newUserService(store)
	ctx := context.Background()

	asha, err := service.Register(ctx, registerRequest())
	require.NoError(t, err)
	other := registerRequest()
	other.Email = "ravi@example.com"
	other.Phone = "9123456780"
	_, err = service.Register(ctx, other)
	require.NoError(t, err)

	name := " Asha R "
	updated, err := service.UpdateProfile(ctx, asha.User.ID, services.UpdateProfileRequest{
		Name:    &name,
		Address: &models.Address{City: "Pune"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha R", updated.Name)
	assert.Equal(t, "9876543210", updated.Phone)
	assert.Equal(t, "Pune", updated.Address.City)

	taken := "9123456780"
	_, err = service.UpdateProfile(ctx, asha.User.ID, services.UpdateProfileRequest{Phone: &taken})
	assert.ErrorIs(t, err, models.ErrUserExists)

	bad := "12"
	_, err = service.UpdateProfile(ctx, asha.User.ID, services.UpdateProfileRequest{Phone: &bad})
	assert.NotEmpty(t, helpers.ValidationMessages(err))

	_, err = service.GetProfile(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
