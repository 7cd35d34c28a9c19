package user

import (
	"context"
)

// Repository is the user record store.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateByEmail(ctx context.Context, email, passwordHash string) error
}

// Service is the user business logic surface.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	UpdateDetails(ctx context.Context, req UpdateDetailsRequest) error
}
