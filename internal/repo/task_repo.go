package repo

import (
	"context"

	dom "tasktracker/internal/domain"
	"tasktracker/internal/storage"
)

type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id string) (dom.Task, error)
	List(ctx context.Context) ([]dom.Task, error)
	Update(ctx context.Context, id string, patch dom.Task) (dom.Task, error)
	Delete(ctx context.Context, id string) error
}

type DocTaskRepo struct {
	coll *storage.Collection[dom.Task]
}

func NewDocTaskRepo(db *storage.DB) *DocTaskRepo {
	return &DocTaskRepo{coll: storage.NewCollection[dom.Task](db, TasksCollection)}
}

func (r *DocTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	err := r.coll.Update(ctx, func(tasks []dom.Task) ([]dom.Task, error) {
		if indexOf(tasks, t.ID) >= 0 {
			return nil, ErrDuplicate
		}
		return append(tasks, t), nil
	})
	if err != nil {
		return dom.Task{}, err
	}
	return t, nil
}

func (r *DocTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	tasks, err := r.coll.Load(ctx)
	if err != nil {
		return dom.Task{}, err
	}
	if i := indexOf(tasks, id); i >= 0 {
		return tasks[i], nil
	}
	return dom.Task{}, ErrNotFound
}

func (r *DocTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	return r.coll.Load(ctx)
}

// Update replaces title and description of the task with id. The id itself
// is never changed.
func (r *DocTaskRepo) Update(ctx context.Context, id string, patch dom.Task) (dom.Task, error) {
	var out dom.Task
	err := r.coll.Update(ctx, func(tasks []dom.Task) ([]dom.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		tasks[i].Title = patch.Title
		tasks[i].Description = patch.Description
		out = tasks[i]
		return tasks, nil
	})
	if err != nil {
		return dom.Task{}, err
	}
	return out, nil
}

func (r *DocTaskRepo) Delete(ctx context.Context, id string) error {
	return r.coll.Update(ctx, func(tasks []dom.Task) ([]dom.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(tasks[:i], tasks[i+1:]...), nil
	})
}

func indexOf(tasks []dom.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
