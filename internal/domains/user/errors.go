package user

import "errors"

var (
	ErrEmailAlreadyExists = errors.New("user already exists with this email")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("email or password incorrect")
)
