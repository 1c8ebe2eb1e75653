package internal

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Priority indicates how important a Task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Validate checks the receiver is one of the supported values.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}

	return NewErrorf(ErrorCodeInvalidArgument, "unknown priority %q", string(p))
}

// Rank returns the fixed ordering rank, high sorts before medium before low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}

	return 4
}

// Task is an activity that needs to be completed, optionally by a due date.
type Task struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	DueDate     *Date
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateTaskParams defines the caller-supplied values for creating a Task.
// Title is required, the remaining fields fall back to creation defaults.
type CreateTaskParams struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *Date
}

// Validate rejects a missing or whitespace-only title and out-of-range
// priorities. An empty priority is allowed, Normalize turns it into the
// default.
func (p CreateTaskParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.By(notBlank)),
		validation.Field(&p.Priority, validation.In(PriorityLow, PriorityMedium, PriorityHigh)),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}

// Normalize trims the title and applies creation defaults.
func (p CreateTaskParams) Normalize() CreateTaskParams {
	p.Title = strings.TrimSpace(p.Title)

	if p.Priority == "" {
		p.Priority = PriorityMedium
	}

	return p
}

// TaskPatch is a partial update. A nil field means "leave untouched", which is
// distinct from a pointer to a zero value: Completed pointing at false and
// ClearDueDate=true are explicit requests.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	DueDate      *Date
	ClearDueDate bool
	Completed    *bool
}

// Validate rejects blank supplied titles, the same rule Create enforces, and
// contradictory due date instructions.
func (p TaskPatch) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.By(nilOrNotBlank)),
		validation.Field(&p.Priority, validation.By(nilOrValidPriority)),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	if p.DueDate != nil && p.ClearDueDate {
		return NewErrorf(ErrorCodeInvalidArgument, "due_date: cannot be set and cleared at once")
	}

	return nil
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}

	return nil
}

func nilOrNotBlank(value interface{}) error {
	s, ok := value.(*string)
	if !ok || s == nil {
		return nil
	}

	return notBlank(*s)
}

func nilOrValidPriority(value interface{}) error {
	p, ok := value.(*Priority)
	if !ok || p == nil {
		return nil
	}

	return p.Validate()
}

// TaskSort selects the ordering of a task listing.
type TaskSort string

const (
	// SortCreatedAt orders by creation time, most recent first. Default.
	SortCreatedAt TaskSort = "created_at"

	// SortDueDate orders by due date ascending, tasks without one sort last.
	SortDueDate TaskSort = "due_date"

	// SortPriority orders high, then medium, then low.
	SortPriority TaskSort = "priority"
)

// ParseTaskSort maps a sort key to a TaskSort, anything unrecognized falls
// back to SortCreatedAt.
func ParseTaskSort(value string) TaskSort {
	switch TaskSort(value) {
	case SortDueDate:
		return SortDueDate
	case SortPriority:
		return SortPriority
	}

	return SortCreatedAt
}

// TaskFilter narrows and orders a task listing. Nil filters do not restrict,
// the pointer distinguishes "completed=false" from "no completion filter".
// Filters compose with logical AND.
type TaskFilter struct {
	Priority  *Priority
	Completed *bool
	Sort      TaskSort
}
