package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"todotrack/internal"
	"todotrack/internal/postgresql/db"
)

const otelName = "todotrack/internal/postgresql"

func convertPriority(p db.Priority) (internal.Priority, error) {
	switch p {
	case db.PriorityLow:
		return internal.PriorityLow, nil
	case db.PriorityMedium:
		return internal.PriorityMedium, nil
	case db.PriorityHigh:
		return internal.PriorityHigh, nil
	}

	return internal.Priority(""), fmt.Errorf("unknown value: %s", p)
}

func newPriority(p internal.Priority) db.Priority {
	switch p {
	case internal.PriorityLow:
		return db.PriorityLow
	case internal.PriorityMedium:
		return db.PriorityMedium
	case internal.PriorityHigh:
		return db.PriorityHigh
	}

	return db.Priority(p)
}

// newDate creates a pgtype.Date from an optional calendar date.
func newDate(d *internal.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}

	return pgtype.Date{
		Time:  d.Time(),
		Valid: true,
	}
}

// convertDate converts a DATE column back into an optional calendar date.
func convertDate(d pgtype.Date) *internal.Date {
	if !d.Valid {
		return nil
	}

	res := internal.NewDate(d.Time.UTC())

	return &res
}

func convertTask(t db.Task) (internal.Task, error) {
	priority, err := convertPriority(t.Priority)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "convertPriority")
	}

	return internal.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    priority,
		DueDate:     convertDate(t.DueDate),
		CreatedAt:   t.CreatedAt.Time,
		UpdatedAt:   t.UpdatedAt.Time,
	}, nil
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemPostgreSQL)

	return span
}
