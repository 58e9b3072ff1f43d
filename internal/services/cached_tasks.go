package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// CachedTaskService is a read-through decorator around a TaskService. Keys are
// always owner-scoped, so invalidation after a write only touches that owner
// and a cache hit can never leak another user's tasks.
type CachedTaskService struct {
	inner TaskService
	cache *cache.RedisCache
}

func NewCachedTaskService(inner TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: cacheInstance}
}

const (
	taskTTL = 30 * time.Minute
	listTTL = 5 * time.Minute
)

func taskKey(ownerID, taskID uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", ownerID, taskID)
}

func listKey(ownerID uuid.UUID, q ListQuery) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tasks:%s:%s:%s:%d:%d", ownerID, q.SortBy, q.SortOrder, q.Limit, q.Offset)
	if q.Completed != nil {
		fmt.Fprintf(&b, ":c=%t", *q.Completed)
	}
	if q.Priority != nil {
		fmt.Fprintf(&b, ":p=%d", *q.Priority)
	}
	for _, id := range q.TagIDs {
		fmt.Fprintf(&b, ":t=%s", id)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		fmt.Fprintf(&b, ":q=%s", strings.ToLower(s))
	}
	if q.DueAfter != nil {
		fmt.Fprintf(&b, ":da=%d", q.DueAfter.UnixNano())
	}
	if q.DueBefore != nil {
		fmt.Fprintf(&b, ":db=%d", q.DueBefore.UnixNano())
	}
	return b.String()
}

func (s *CachedTaskService) invalidateOwner(ownerID uuid.UUID) {
	ctx := context.Background()
	s.cache.DeletePattern(ctx, fmt.Sprintf("tasks:%s:*", ownerID))
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, ownerID uuid.UUID, in TaskCreate) (models.Task, error) {
	task, err := s.inner.CreateTask(db, ownerID, in)
	if err != nil {
		return task, err
	}

	ctx := context.Background()
	s.cache.Set(ctx, taskKey(ownerID, task.ID), task, taskTTL)
	s.invalidateOwner(ownerID)

	return task, nil
}

func (s *CachedTaskService) GetTask(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error) {
	ctx := context.Background()
	key := taskKey(ownerID, taskID)

	var cached models.Task
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	task, err := s.inner.GetTask(db, ownerID, taskID)
	if err != nil {
		return task, err
	}

	s.cache.Set(ctx, key, task, taskTTL)

	return task, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, ownerID, taskID uuid.UUID, in TaskUpdate) (models.Task, error) {
	task, err := s.inner.UpdateTask(db, ownerID, taskID, in)
	if err != nil {
		return task, err
	}

	ctx := context.Background()
	s.cache.Set(ctx, taskKey(ownerID, taskID), task, taskTTL)
	s.invalidateOwner(ownerID)

	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, ownerID, taskID uuid.UUID) error {
	if err := s.inner.DeleteTask(db, ownerID, taskID); err != nil {
		return err
	}

	ctx := context.Background()
	s.cache.Delete(ctx, taskKey(ownerID, taskID))
	s.invalidateOwner(ownerID)

	return nil
}

type cachedListResult struct {
	Items []models.Task `json:"items"`
	Total int64         `json:"total"`
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, ownerID uuid.UUID, q ListQuery) ([]models.Task, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}

	ctx := context.Background()
	key := listKey(ownerID, q)

	var cached cachedListResult
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.inner.ListTasks(db, ownerID, q)
	if err != nil {
		return nil, 0, err
	}

	s.cache.Set(ctx, key, cachedListResult{Items: items, Total: total}, listTTL)

	return items, total, nil
}
