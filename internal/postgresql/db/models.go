package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Priority mirrors the "priority" enum type defined in the schema. The
// database rejects any other value with a constraint violation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task mirrors a row of the "tasks" table.
type Task struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	DueDate     pgtype.Date
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}
