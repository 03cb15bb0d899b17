package repository

import (
	"context"
	"time"
)

// User is the durable user record. PasswordHash never leaves the
// repository layer except for credential checks in the auth controller.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsOnline     bool
	LastSeen     *time.Time
}

// UserRepository is the contract over the external user directory.
// Lookups return (nil, nil) when the user does not exist.
type UserRepository interface {
	Create(ctx context.Context, u User) (string, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	SetOnline(ctx context.Context, id string, online bool) error
	SetLastSeen(ctx context.Context, id string, t time.Time) error
}
