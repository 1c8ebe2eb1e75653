package memcached

import (
	"context"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"go.uber.org/zap"

	"todotrack/internal"
)

// Task decorates a TaskStore with cache-aside caching of single records.
// Listings are never cached, the query engine stays deterministic over the
// primary store.
type Task struct {
	client     *memcache.Client
	orig       TaskStore
	expiration time.Duration
	logger     *zap.Logger
}

// TaskStore defines the decorated datastore.
type TaskStore interface {
	Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	Delete(ctx context.Context, id int64) (internal.Task, error)
	Find(ctx context.Context, id int64) (internal.Task, error)
	Select(ctx context.Context, filter internal.TaskFilter) ([]internal.Task, error)
	Update(ctx context.Context, id int64, title, description string, priority internal.Priority, dueDate *internal.Date, completed bool) (internal.Task, error)
}

// NewTask instantiates the decorated Task repository.
func NewTask(client *memcache.Client, orig TaskStore, logger *zap.Logger) *Task {
	return &Task{
		client:     client,
		orig:       orig,
		expiration: 15 * time.Minute,
		logger:     logger,
	}
}

// Create delegates to the decorated store and primes the cache.
func (t *Task) Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	task, err := t.orig.Create(ctx, params)
	if err != nil {
		return internal.Task{}, err
	}

	t.logger.Debug("Create: setting value")

	setTask(ctx, t.client, cacheKey(task.ID), &task, t.expiration)

	return task, nil
}

// Delete delegates to the decorated store and invalidates the cache.
func (t *Task) Delete(ctx context.Context, id int64) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Delete").End()

	task, err := t.orig.Delete(ctx, id)
	if err != nil {
		return internal.Task{}, err
	}

	deleteTask(ctx, t.client, cacheKey(id))

	return task, nil
}

// Find returns the cached record when present, otherwise reads through and
// caches the result.
func (t *Task) Find(ctx context.Context, id int64) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	var res internal.Task

	if err := getTask(ctx, t.client, cacheKey(id), &res); err == nil {
		return res, nil
	}

	t.logger.Debug("Find: not cached, reading through")

	res, err := t.orig.Find(ctx, id)
	if err != nil {
		return internal.Task{}, err
	}

	setTask(ctx, t.client, cacheKey(res.ID), &res, t.expiration)

	return res, nil
}

// Select always hits the decorated store.
func (t *Task) Select(ctx context.Context, filter internal.TaskFilter) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Select").End()

	return t.orig.Select(ctx, filter)
}

// Update delegates to the decorated store and replaces the cached record.
func (t *Task) Update(ctx context.Context, id int64, title, description string, priority internal.Priority, dueDate *internal.Date, completed bool) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	task, err := t.orig.Update(ctx, id, title, description, priority, dueDate, completed)
	if err != nil {
		return internal.Task{}, err
	}

	t.logger.Debug("Update: setting value")

	setTask(ctx, t.client, cacheKey(task.ID), &task, t.expiration)

	return task, nil
}

func cacheKey(id int64) string {
	return "task:" + strconv.FormatInt(id, 10)
}
