package users

import (
	"context"
	"errors"
	"time"

	"github.com/fitrackhq/fitrack/internal/validation"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username taken")
)

// Store is implemented by the postgres repo and the in-memory repo.
type Store interface {
	Create(ctx context.Context, user User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type User struct {
	ID               int       `json:"id"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	FullName         string    `json:"fullName"`
	DateOfBirth      time.Time `json:"dateOfBirth"`
	TargetDistanceKm int       `json:"targetDistance"`
	CreatedAt        time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Username       string            `json:"username"`
	Password       string            `json:"password"`
	FullName       string            `json:"fullName"`
	DateOfBirth    validation.Date   `json:"dateOfBirth"`
	TargetDistance validation.Number `json:"targetDistance"`
}

// Validate checks the registration input and returns the new user,
// without the password hash set.
func (req *RegisterRequest) Validate() (*User, error) {
	verr := validation.NewError()

	username := validation.RequiredString(verr, "username", req.Username)
	validation.RequiredString(verr, "password", req.Password)
	fullName := validation.RequiredString(verr, "fullName", req.FullName)
	dateOfBirth := validation.RequiredDate(verr, "dateOfBirth", req.DateOfBirth)
	targetDistance := validation.PositiveInt(verr, "targetDistance", req.TargetDistance)

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &User{
		Username:         username,
		FullName:         fullName,
		DateOfBirth:      dateOfBirth,
		TargetDistanceKm: targetDistance,
		CreatedAt:        time.Now(),
	}, nil
}
