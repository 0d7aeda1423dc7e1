package repo

import (
	"context"
	"errors"
	"testing"

	dom "tasktracker/internal/domain"
	"tasktracker/internal/storage"
)

func newFileDB(t *testing.T) *storage.DB {
	t.Helper()
	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	return storage.NewDB(backend)
}

func TestDocUserRepo_CreateRejectsDuplicateEmail(t *testing.T) {
	r := NewDocUserRepo(newFileDB(t))
	ctx := context.Background()

	if _, err := r.Create(ctx, dom.User{ID: "1", Email: "a@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.Create(ctx, dom.User{ID: "2", Email: "a@x.com"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Email match is exact, so a different case is a different user.
	if _, err := r.Create(ctx, dom.User{ID: "3", Email: "A@x.com"}); err != nil {
		t.Fatalf("create different case: %v", err)
	}

	users, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].ID != "1" || users[1].ID != "3" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestDocUserRepo_GetByEmail(t *testing.T) {
	r := NewDocUserRepo(newFileDB(t))
	ctx := context.Background()

	if _, err := r.GetByEmail(ctx, "a@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty collection, got %v", err)
	}
	if _, err := r.Create(ctx, dom.User{ID: "1", Name: "A", Email: "a@x.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	u, err := r.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.ID != "1" || u.Name != "A" || u.PasswordHash != "h" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestDocTaskRepo_CRUD(t *testing.T) {
	r := NewDocTaskRepo(newFileDB(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := r.Create(ctx, dom.Task{ID: id, Title: "t-" + id}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if _, err := r.Create(ctx, dom.Task{ID: "b", Title: "dup"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	updated, err := r.Update(ctx, "b", dom.Task{ID: "ignored", Title: "new", Description: "d"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != "b" || updated.Title != "new" || updated.Description != "d" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := r.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := r.Update(ctx, "zzz", dom.Task{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}

	tasks, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "b" || tasks[1].ID != "c" {
		t.Fatalf("unexpected order after delete: %+v", tasks)
	}
	got, err := r.GetByID(ctx, "c")
	if err != nil || got.Title != "t-c" {
		t.Fatalf("get c: %+v, %v", got, err)
	}
}
