package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

type Address struct {
	Street      string    `bson:"street,omitempty" json:"street,omitempty" validate:"omitempty,max=120"`
	City        string    `bson:"city,omitempty" json:"city,omitempty" validate:"omitempty,max=60"`
	State       string    `bson:"state,omitempty" json:"state,omitempty" validate:"omitempty,max=60"`
	ZipCode     string    `bson:"zipCode,omitempty" json:"zipCode,omitempty" validate:"omitempty,max=12"`
	Coordinates *GeoPoint `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// User is the credential store record. Password holds the bcrypt hash and is
// never serialized outward.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Phone      string             `bson:"phone" json:"phone"`
	Password   string             `bson:"password" json:"-"`
	Role       Role               `bson:"role" json:"role"`
	IsVerified bool               `bson:"isVerified" json:"isVerified"`
	Avatar     string             `bson:"avatar" json:"avatar"`
	Address    *Address           `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProfileUpdate carries only the fields a caller supplied.
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *Address
}

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*User, error)
	FirstUser(ctx context.Context) (*User, error)
}

func (u *User) BeforeCreate() {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
}
