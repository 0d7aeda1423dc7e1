package service

import (
	"errors"
	"fmt"

	"tasktracker/internal/auth"
)

var (
	// ErrValidation marks request input the client has to fix.
	ErrValidation = errors.New("validation failed")

	ErrMissingFields   = fmt.Errorf("%w: all fields are required", ErrValidation)
	ErrTitleRequired   = fmt.Errorf("%w: title is required", ErrValidation)
	ErrPasswordTooLong = fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, auth.MaxPasswordBytes)

	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
)
