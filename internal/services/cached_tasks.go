package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todos-app/backend/internal/cache"
	"todos-app/backend/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const (
	taskListTTL = 10 * time.Minute
	taskItemTTL = 30 * time.Minute
)

// CachedTaskService wraps a TaskService with an owner-keyed Redis
// cache. Cache failures degrade to the underlying store; mutations
// invalidate the owner's entries.
type CachedTaskService struct {
	inner  TaskService
	cache  *cache.RedisCache
	logger *zap.Logger
}

func NewCachedTaskService(inner TaskService, c *cache.RedisCache, logger *zap.Logger) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: c, logger: logger}
}

func listKey(owner uuid.UUID) string {
	return fmt.Sprintf("user_tasks:%s", owner)
}

func itemKey(owner, id uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", owner, id)
}

func (s *CachedTaskService) Create(ctx context.Context, owner uuid.UUID, in CreateTaskInput) (*models.Task, error) {
	task, err := s.inner.Create(ctx, owner, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, owner, task.ID)
	return task, nil
}

func (s *CachedTaskService) List(ctx context.Context, owner uuid.UUID) ([]models.Task, error) {
	var cached []models.Task
	err := s.cache.Get(ctx, listKey(owner), &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("task list cache read failed", zap.Error(err))
	}

	tasks, err := s.inner.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, listKey(owner), tasks, taskListTTL); err != nil {
		s.logger.Warn("task list cache write failed", zap.Error(err))
	}
	return tasks, nil
}

func (s *CachedTaskService) Get(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(ctx, itemKey(owner, id), &cached); err == nil {
		return &cached, nil
	}

	task, err := s.inner.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, itemKey(owner, id), task, taskItemTTL); err != nil {
		s.logger.Warn("task cache write failed", zap.Error(err))
	}
	return task, nil
}

func (s *CachedTaskService) Update(ctx context.Context, owner, id uuid.UUID, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.inner.Update(ctx, owner, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, owner, id)
	return task, nil
}

func (s *CachedTaskService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.inner.Delete(ctx, owner, id); err != nil {
		return err
	}
	s.invalidate(ctx, owner, id)
	return nil
}

func (s *CachedTaskService) invalidate(ctx context.Context, owner, id uuid.UUID) {
	if err := s.cache.Delete(ctx, listKey(owner), itemKey(owner, id)); err != nil {
		s.logger.Warn("task cache invalidation failed", zap.Error(err))
	}
}
