package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"

	dom "tasktracker/internal/domain"
	"tasktracker/internal/ident"
	"tasktracker/internal/metrics"
	"tasktracker/internal/repo"

	"golang.org/x/sync/singleflight"
)

// ListCache is a read-through cache for the task list.
type ListCache interface {
	GetList(ctx context.Context) ([]dom.Task, error)
	SetList(ctx context.Context, list []dom.Task) error
	Invalidate(ctx context.Context) error
}

type TaskService struct {
	repo  repo.TaskRepo
	ids   ident.Generator
	cache ListCache
	sf    singleflight.Group
	gen   atomic.Uint64
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, ids ident.Generator, c ListCache) *TaskService {
	return &TaskService{repo: r, ids: ids, cache: c}
}

func (s *TaskService) Create(ctx context.Context, title, desc string) (dom.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Task{}, ErrTitleRequired
	}

	t, err := s.repo.Create(ctx, dom.Task{
		ID:          s.ids.NewID(),
		Title:       title,
		Description: desc,
	})
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

// List returns all tasks. With a cache, concurrent misses share one load and
// a fill that overlaps a write is never left in the cache.
func (s *TaskService) List(ctx context.Context) ([]dom.Task, error) {
	if s.cache == nil {
		return s.repo.List(ctx)
	}
	gen := s.gen.Load()
	v, err, _ := s.sf.Do("list:"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx); err == nil && list != nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return list, nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		list, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		s.fillCache(ctx, gen, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

// fillCache stores list loaded at generation gen. A write that bumps the
// generation around the fill clears the entry again.
func (s *TaskService) fillCache(ctx context.Context, gen uint64, list []dom.Task) {
	if s.gen.Load() != gen {
		return
	}
	_ = s.cache.SetList(ctx, list)
	if s.gen.Load() != gen {
		_ = s.cache.Invalidate(ctx)
	}
}

func (s *TaskService) GetByID(ctx context.Context, id string) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

// Update replaces title and description of an existing task.
func (s *TaskService) Update(ctx context.Context, id, title, desc string) (dom.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Task{}, ErrTitleRequired
	}
	t, err := s.repo.Update(ctx, id, dom.Task{Title: title, Description: desc})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// invalidateCache runs after a successful write.
func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.gen.Add(1)
		_ = s.cache.Invalidate(ctx)
	}
}
