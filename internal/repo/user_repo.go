package repo

import (
	"context"

	dom "tasktracker/internal/domain"
	"tasktracker/internal/storage"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	Create(ctx context.Context, u dom.User) (dom.User, error)
	List(ctx context.Context) ([]dom.User, error)
}

// DocUserRepo implements UserRepo over a users collection.
type DocUserRepo struct {
	coll *storage.Collection[dom.User]
}

// NewDocUserRepo returns a repo backed by the users collection of db.
func NewDocUserRepo(db *storage.DB) *DocUserRepo {
	return &DocUserRepo{coll: storage.NewCollection[dom.User](db, UsersCollection)}
}

// GetByEmail returns the first user whose email matches exactly.
func (r *DocUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	users, err := r.coll.Load(ctx)
	if err != nil {
		return dom.User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, ErrNotFound
}

// Create appends u unless another user already has its email. The check and
// the append happen under the same collection lock.
func (r *DocUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	err := r.coll.Update(ctx, func(users []dom.User) ([]dom.User, error) {
		for _, existing := range users {
			if existing.Email == u.Email {
				return nil, ErrDuplicate
			}
		}
		return append(users, u), nil
	})
	if err != nil {
		return dom.User{}, err
	}
	return u, nil
}

// List returns all users in storage order.
func (r *DocUserRepo) List(ctx context.Context) ([]dom.User, error) {
	return r.coll.Load(ctx)
}
