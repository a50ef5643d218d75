package domain

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUsernameTaken      = errors.New("username is taken")
	ErrEmailTaken         = errors.New("email is taken")
	ErrFileExists         = errors.New("file already exists")
	ErrConflict           = errors.New("unique constraint violation")
)
