// Package ident assigns identifiers to new records without consulting the
// existing collection.
package ident

import "github.com/google/uuid"

// Generator returns a fresh identifier on every call.
type Generator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Func adapts a plain function to Generator.
type Func func() string

func (f Func) NewID() string { return f() }
