package internal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todotrack/internal"
)

func TestPriority_Validate(t *testing.T) {
	t.Parallel()

	for _, p := range []internal.Priority{internal.PriorityLow, internal.PriorityMedium, internal.PriorityHigh} {
		assert.NoError(t, p.Validate())
	}

	for _, p := range []internal.Priority{"", "urgent", "HIGH"} {
		err := p.Validate()
		require.Error(t, err, string(p))

		var ierr *internal.Error
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, internal.ErrorCodeInvalidArgument, ierr.Code())
	}
}

func TestPriority_Rank(t *testing.T) {
	t.Parallel()

	assert.Less(t, internal.PriorityHigh.Rank(), internal.PriorityMedium.Rank())
	assert.Less(t, internal.PriorityMedium.Rank(), internal.PriorityLow.Rank())
}

func TestCreateTaskParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  internal.CreateTaskParams
		withErr bool
	}{
		{
			name:   "OK: minimal",
			params: internal.CreateTaskParams{Title: "Buy milk"},
		},
		{
			name:   "OK: full",
			params: internal.CreateTaskParams{Title: "Buy milk", Description: "2%", Priority: internal.PriorityHigh},
		},
		{
			name:    "ERR: missing title",
			params:  internal.CreateTaskParams{},
			withErr: true,
		},
		{
			name:    "ERR: whitespace-only title",
			params:  internal.CreateTaskParams{Title: "   \t "},
			withErr: true,
		},
		{
			name:    "ERR: whitespace-only title with other valid fields",
			params:  internal.CreateTaskParams{Title: " ", Priority: internal.PriorityHigh},
			withErr: true,
		},
		{
			name:    "ERR: unknown priority",
			params:  internal.CreateTaskParams{Title: "Buy milk", Priority: "urgent"},
			withErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if !tt.withErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)

			var ierr *internal.Error
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, internal.ErrorCodeInvalidArgument, ierr.Code())
		})
	}
}

func TestCreateTaskParams_Normalize(t *testing.T) {
	t.Parallel()

	got := internal.CreateTaskParams{Title: "  Buy milk  "}.Normalize()

	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, internal.PriorityMedium, got.Priority)
	assert.Empty(t, got.Description)
	assert.Nil(t, got.DueDate)

	kept := internal.CreateTaskParams{Title: "Buy milk", Priority: internal.PriorityLow}.Normalize()
	assert.Equal(t, internal.PriorityLow, kept.Priority)
}

func TestTaskPatch_Validate(t *testing.T) {
	t.Parallel()

	blank := "   "
	title := "Walk the dog"
	badPriority := internal.Priority("urgent")
	goodPriority := internal.PriorityLow
	date := internal.Date{Year: 2099, Month: time.January, Day: 1}
	completed := false

	tests := []struct {
		name    string
		patch   internal.TaskPatch
		withErr bool
	}{
		{
			name:  "OK: empty patch",
			patch: internal.TaskPatch{},
		},
		{
			name:  "OK: explicit completed false",
			patch: internal.TaskPatch{Completed: &completed},
		},
		{
			name:  "OK: title and priority",
			patch: internal.TaskPatch{Title: &title, Priority: &goodPriority},
		},
		{
			name:  "OK: clear due date",
			patch: internal.TaskPatch{ClearDueDate: true},
		},
		{
			name:    "ERR: blank supplied title",
			patch:   internal.TaskPatch{Title: &blank},
			withErr: true,
		},
		{
			name:    "ERR: unknown priority",
			patch:   internal.TaskPatch{Priority: &badPriority},
			withErr: true,
		},
		{
			name:    "ERR: due date set and cleared",
			patch:   internal.TaskPatch{DueDate: &date, ClearDueDate: true},
			withErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.patch.Validate()
			if !tt.withErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)

			var ierr *internal.Error
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, internal.ErrorCodeInvalidArgument, ierr.Code())
		})
	}
}

func TestParseTaskSort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, internal.SortDueDate, internal.ParseTaskSort("due_date"))
	assert.Equal(t, internal.SortPriority, internal.ParseTaskSort("priority"))
	assert.Equal(t, internal.SortCreatedAt, internal.ParseTaskSort("created_at"))
	assert.Equal(t, internal.SortCreatedAt, internal.ParseTaskSort(""))
	assert.Equal(t, internal.SortCreatedAt, internal.ParseTaskSort("title"))
}
