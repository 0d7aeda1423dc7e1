// Package storage persists whole collections of records as single JSON
// documents. A Collection is the only write path: it holds a per-name lock
// across load, modify and save so concurrent writers never lose updates.
//
// Backends only move opaque bytes; the codec and the locking live here, so
// the file, Redis and Postgres backends are interchangeable.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Backend stores one document per collection name.
type Backend interface {
	// Load returns the stored document, or nil with no error when the
	// collection has never been saved.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save replaces the whole document. Readers must never observe a
	// partially written document.
	Save(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Error is a failed load, decode, encode or save of a collection.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DB owns a backend and the per-collection locks guarding it.
type DB struct {
	backend Backend

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDB wraps backend. All collections over the same backend must be created
// from the same DB, otherwise they do not share locks.
func NewDB(backend Backend) *DB {
	return &DB{backend: backend, locks: make(map[string]*sync.Mutex)}
}

// Ping checks that the backend is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.backend.Ping(ctx)
}

// Close releases the backend.
func (db *DB) Close() error {
	return db.backend.Close()
}

func (db *DB) lockFor(name string) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.locks[name]
	if !ok {
		l = &sync.Mutex{}
		db.locks[name] = l
	}
	return l
}

// Collection is a typed, ordered sequence of records stored as one document.
type Collection[T any] struct {
	name    string
	backend Backend
	mu      *sync.Mutex
}

// NewCollection returns the collection called name in db.
func NewCollection[T any](db *DB, name string) *Collection[T] {
	return &Collection[T]{name: name, backend: db.backend, mu: db.lockFor(name)}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Load returns every record in storage order. An absent or empty document is
// an empty collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Save replaces the whole collection with items.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, items)
}

// Update loads the collection, passes it to fn and saves what fn returns,
// all under the collection lock. If fn fails nothing is written and its error
// is returned unchanged.
func (c *Collection[T]) Update(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.save(ctx, next)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := c.backend.Load(ctx, c.name)
	if err != nil {
		return nil, &Error{Op: "load", Collection: c.name, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &Error{Op: "decode", Collection: c.name, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return &Error{Op: "encode", Collection: c.name, Err: err}
	}
	if err := c.backend.Save(ctx, c.name, append(data, '\n')); err != nil {
		return &Error{Op: "save", Collection: c.name, Err: err}
	}
	return nil
}
