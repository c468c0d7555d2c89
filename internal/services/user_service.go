package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/parkseva/api/internal/helpers"
	"github.com/parkseva/api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Role     string `json:"role" validate:"omitempty,oneof=user owner"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name    *string         `json:"name" validate:"omitempty,min=2,max=50"`
	Phone   *string         `json:"phone" validate:"omitempty,len=10,numeric"`
	Address *models.Address `json:"address"`
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type UserService struct {
	userRepo models.UserRepo
	tokens   *helpers.TokenManager
}

func NewUserService(userRepo models.UserRepo, tokens *helpers.TokenManager) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (us *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := models.Validate.Struct(req); err != nil {
		return nil, err
	}

	exists, err := us.userRepo.ExistsByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrUserExists
	}

	hash, err := helpers.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: hash,
		Role:     models.Role(req.Role),
	}
	created, err := us.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return us.authResult(created)
}

func (us *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := models.Validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := us.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CheckPassword(user.Password, req.Password) {
		return nil, models.ErrInvalidCredentials
	}

	return us.authResult(user)
}

func (us *UserService) authResult(user *models.User) (*AuthResult, error) {
	token, err := us.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to the session of an existing user.
func (us *UserService) Authenticate(ctx context.Context, token string) (*helpers.Session, error) {
	subject, err := us.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	userID, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return nil, helpers.ErrTokenInvalid
	}

	user, err := us.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, helpers.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return &helpers.Session{
		UserID: user.ID,
		Role:   string(user.Role),
		Email:  user.Email,
		Name:   user.Name,
	}, nil
}

func (us *UserService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return us.userRepo.GetUserByID(ctx, userID)
}

func (us *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req UpdateProfileRequest) (*models.User, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		req.Phone = &phone
	}
	if err := models.Validate.Struct(req); err != nil {
		return nil, err
	}

	return us.userRepo.UpdateProfile(ctx, userID, models.ProfileUpdate{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
}
