// Package repo implements record lookups and mutations on top of storage
// collections. Every lookup is a linear scan; every mutation is a single
// locked load, modify and save of the whole collection.
package repo

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)
