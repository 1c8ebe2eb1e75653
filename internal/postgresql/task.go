package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"todotrack/internal"
	"todotrack/internal/postgresql/db"
)

const taskColumns = "id, title, description, completed, priority, due_date, created_at, updated_at"

// Task represents the repository used for interacting with Task records.
type Task struct {
	pool *pgxpool.Pool
}

// NewTask instantiates the Task repository.
func NewTask(pool *pgxpool.Pool) *Task {
	return &Task{
		pool: pool,
	}
}

// Create inserts a new task record, the database assigns id and both
// timestamps.
func (t *Task) Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	query := fmt.Sprintf(`INSERT INTO tasks (title, description, priority, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, taskColumns)

	row := t.pool.QueryRow(ctx, query,
		params.Title,
		params.Description,
		newPriority(params.Priority),
		newDate(params.DueDate),
	)

	res, err := scanTask(row)
	if err != nil {
		return internal.Task{}, convertError(err, "insert tasks")
	}

	return res, nil
}

// Find returns the task with the requested id.
func (t *Task) Find(ctx context.Context, id int64) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", taskColumns)

	res, err := scanTask(t.pool.QueryRow(ctx, query, id))
	if err != nil {
		return internal.Task{}, convertError(err, "select tasks")
	}

	return res, nil
}

// Select returns every task matching the filter, ordered by its sort key. No
// pagination, the full matching set is returned.
func (t *Task) Select(ctx context.Context, filter internal.TaskFilter) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Select").End()

	query, args := buildSelectQuery(filter)

	rows, err := t.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, convertError(err, "select tasks")
	}
	defer rows.Close()

	res := make([]internal.Task, 0)

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, convertError(err, "scan tasks")
		}

		res = append(res, task)
	}

	if err := rows.Err(); err != nil {
		return nil, convertError(err, "rows.Err")
	}

	return res, nil
}

// Update replaces every mutable field of the task and refreshes updated_at.
// Field merging is the caller's concern, the store receives the final values.
func (t *Task) Update(ctx context.Context, id int64, title, description string, priority internal.Priority, dueDate *internal.Date, completed bool) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	query := fmt.Sprintf(`UPDATE tasks
		SET title = $1, description = $2, priority = $3, due_date = $4, completed = $5, updated_at = now()
		WHERE id = $6
		RETURNING %s`, taskColumns)

	row := t.pool.QueryRow(ctx, query,
		title,
		description,
		newPriority(priority),
		newDate(dueDate),
		completed,
		id,
	)

	res, err := scanTask(row)
	if err != nil {
		return internal.Task{}, convertError(err, "update tasks")
	}

	return res, nil
}

// Delete removes the task with the requested id and returns the removed
// record.
func (t *Task) Delete(ctx context.Context, id int64) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Delete").End()

	query := fmt.Sprintf("DELETE FROM tasks WHERE id = $1 RETURNING %s", taskColumns)

	res, err := scanTask(t.pool.QueryRow(ctx, query, id))
	if err != nil {
		return internal.Task{}, convertError(err, "delete tasks")
	}

	return res, nil
}

// buildSelectQuery composes the conditional WHERE and ORDER BY clauses for a
// listing. Predicates AND-compose, id breaks ties so the ordering is
// deterministic.
func buildSelectQuery(filter internal.TaskFilter) (string, []interface{}) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("SELECT %s FROM tasks", taskColumns))

	args := make([]interface{}, 0, 2)

	if filter.Priority != nil {
		args = append(args, newPriority(*filter.Priority))
		sb.WriteString(fmt.Sprintf(" WHERE priority = $%d", len(args)))
	}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)

		if len(args) == 1 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}

		sb.WriteString(fmt.Sprintf("completed = $%d", len(args)))
	}

	switch filter.Sort {
	case internal.SortDueDate:
		sb.WriteString(" ORDER BY due_date ASC NULLS LAST, id ASC")
	case internal.SortPriority:
		sb.WriteString(" ORDER BY CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 END ASC, id ASC")
	default:
		sb.WriteString(" ORDER BY created_at DESC, id DESC")
	}

	return sb.String(), args
}

func scanTask(row pgx.Row) (internal.Task, error) {
	var res db.Task

	if err := row.Scan(
		&res.ID,
		&res.Title,
		&res.Description,
		&res.Completed,
		&res.Priority,
		&res.DueDate,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return internal.Task{}, err
	}

	return convertTask(res)
}

func convertError(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.WrapErrorf(err, internal.ErrorCodeNotFound, "task not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "%s: constraint %s", msg, pgErr.Code)
	}

	return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "%s", msg)
}
