package service

import (
	"context"
	"errors"
	"strings"

	"tasktracker/internal/auth"
	dom "tasktracker/internal/domain"
	"tasktracker/internal/ident"
	"tasktracker/internal/repo"
)

// UserService handles registration, login and listing of users.
type UserService struct {
	repo   repo.UserRepo
	hasher auth.Hasher
	ids    ident.Generator
}

// NewUserService returns a new UserService.
func NewUserService(r repo.UserRepo, hasher auth.Hasher, ids ident.Generator) *UserService {
	return &UserService{repo: r, hasher: hasher, ids: ids}
}

// Register creates a user with a hashed password. The email must not be taken.
func (s *UserService) Register(ctx context.Context, name, email, password string) (dom.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return dom.User{}, ErrMissingFields
	}
	if len(password) > auth.MaxPasswordBytes {
		return dom.User{}, ErrPasswordTooLong
	}
	// Hash before taking the collection lock; bcrypt is the slow part.
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, dom.User{
		ID:           s.ids.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// Authenticate checks email and password; returns the user if valid.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (dom.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return dom.User{}, ErrMissingFields
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// List returns all users in storage order.
func (s *UserService) List(ctx context.Context) ([]dom.User, error) {
	return s.repo.List(ctx)
}
