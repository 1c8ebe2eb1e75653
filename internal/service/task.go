package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"todotrack/internal"
)

// TaskRepository defines the datastore handling persisted Task records.
type TaskRepository interface {
	Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	Delete(ctx context.Context, id int64) (internal.Task, error)
	Find(ctx context.Context, id int64) (internal.Task, error)
	Select(ctx context.Context, filter internal.TaskFilter) ([]internal.Task, error)
	Update(ctx context.Context, id int64, title, description string, priority internal.Priority, dueDate *internal.Date, completed bool) (internal.Task, error)
}

// TaskMessageBrokerRepository defines the datastore receiving Task lifecycle
// events for the audit trail.
type TaskMessageBrokerRepository interface {
	Created(ctx context.Context, task internal.Task) error
	Deleted(ctx context.Context, task internal.Task) error
	Updated(ctx context.Context, task internal.Task) error
}

// Task defines the application service in charge of interacting with Tasks.
type Task struct {
	logger    *zap.Logger
	repo      TaskRepository
	msgBroker TaskMessageBrokerRepository
}

// NewTask instantiates the Task service.
func NewTask(logger *zap.Logger, repo TaskRepository, msgBroker TaskMessageBrokerRepository) *Task {
	return &Task{
		logger:    logger,
		repo:      repo,
		msgBroker: msgBroker,
	}
}

// By lists the Tasks matching the received filter in its sort order.
func (t *Task) By(ctx context.Context, filter internal.TaskFilter) ([]internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.By")
	defer span.End()

	res, err := t.repo.Select(ctx, filter)
	if err != nil {
		return nil, internal.WrapErrorf(err, errCode(err), "repo.Select")
	}

	return res, nil
}

// Create validates the received values, applies creation defaults and stores
// a new record. The store assigns id and timestamps.
func (t *Task) Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Create")
	defer span.End()

	if err := params.Validate(); err != nil {
		return internal.Task{}, err
	}

	task, err := t.repo.Create(ctx, params.Normalize())
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, errCode(err), "repo.Create")
	}

	t.audit("created", task)

	_ = t.msgBroker.Created(ctx, task)

	return task, nil
}

// Task returns the Task with the requested id.
func (t *Task) Task(ctx context.Context, id int64) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Task")
	defer span.End()

	task, err := t.repo.Find(ctx, id)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, errCode(err), "repo.Find")
	}

	return task, nil
}

// Update applies a partial update to an existing Task. The current record is
// read first, a missing id fails before any field is touched, then the
// supplied fields are merged over it and written back in one statement. The
// store refreshes updated_at on every successful write, whether or not any
// value changed.
func (t *Task) Update(ctx context.Context, id int64, patch internal.TaskPatch) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Update")
	defer span.End()

	if err := patch.Validate(); err != nil {
		return internal.Task{}, err
	}

	cur, err := t.repo.Find(ctx, id)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, errCode(err), "repo.Find")
	}

	title := cur.Title
	if patch.Title != nil {
		title = strings.TrimSpace(*patch.Title)
	}

	description := cur.Description
	if patch.Description != nil {
		description = *patch.Description
	}

	priority := cur.Priority
	if patch.Priority != nil {
		priority = *patch.Priority
	}

	dueDate := cur.DueDate
	switch {
	case patch.ClearDueDate:
		dueDate = nil
	case patch.DueDate != nil:
		dueDate = patch.DueDate
	}

	completed := cur.Completed
	if patch.Completed != nil {
		completed = *patch.Completed
	}

	task, err := t.repo.Update(ctx, id, title, description, priority, dueDate, completed)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, errCode(err), "repo.Update")
	}

	t.audit("updated", task)

	_ = t.msgBroker.Updated(ctx, task)

	return task, nil
}

// Delete permanently removes an existing Task and returns the removed record.
func (t *Task) Delete(ctx context.Context, id int64) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Delete")
	defer span.End()

	task, err := t.repo.Delete(ctx, id)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, errCode(err), "repo.Delete")
	}

	t.audit("deleted", task)

	_ = t.msgBroker.Deleted(ctx, task)

	return task, nil
}

const otelName = "todotrack/internal/service"

// audit emits the record every successful mutation leaves behind.
func (t *Task) audit(op string, task internal.Task) {
	t.logger.Info("task "+op,
		zap.Int64("id", task.ID),
		zap.String("title", task.Title),
		zap.Time("at", time.Now()),
	)
}

// errCode preserves the code of wrapped domain errors so the transport keeps
// distinguishing "fix your input" from "that resource is gone".
func errCode(err error) internal.ErrorCode {
	var ierr *internal.Error
	if errors.As(err, &ierr) {
		return ierr.Code()
	}

	return internal.ErrorCodeUnknown
}
