package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"todotrack/internal"
	"todotrack/internal/postgresql/db"
)

func TestBuildSelectQuery(t *testing.T) {
	t.Parallel()

	high := internal.PriorityHigh
	done := true
	notDone := false

	tests := []struct {
		name      string
		filter    internal.TaskFilter
		wantQuery string
		wantArgs  []interface{}
	}{
		{
			name:      "no filters defaults to created_at descending",
			filter:    internal.TaskFilter{},
			wantQuery: "SELECT " + taskColumns + " FROM tasks ORDER BY created_at DESC, id DESC",
			wantArgs:  []interface{}{},
		},
		{
			name:      "explicit created_at sort",
			filter:    internal.TaskFilter{Sort: internal.SortCreatedAt},
			wantQuery: "SELECT " + taskColumns + " FROM tasks ORDER BY created_at DESC, id DESC",
			wantArgs:  []interface{}{},
		},
		{
			name:      "due date sort puts missing dates last",
			filter:    internal.TaskFilter{Sort: internal.SortDueDate},
			wantQuery: "SELECT " + taskColumns + " FROM tasks ORDER BY due_date ASC NULLS LAST, id ASC",
			wantArgs:  []interface{}{},
		},
		{
			name:      "priority sort ranks high medium low",
			filter:    internal.TaskFilter{Sort: internal.SortPriority},
			wantQuery: "SELECT " + taskColumns + " FROM tasks ORDER BY CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 END ASC, id ASC",
			wantArgs:  []interface{}{},
		},
		{
			name:      "priority filter",
			filter:    internal.TaskFilter{Priority: &high},
			wantQuery: "SELECT " + taskColumns + " FROM tasks WHERE priority = $1 ORDER BY created_at DESC, id DESC",
			wantArgs:  []interface{}{db.PriorityHigh},
		},
		{
			name:      "completed=false filter is a real predicate",
			filter:    internal.TaskFilter{Completed: &notDone},
			wantQuery: "SELECT " + taskColumns + " FROM tasks WHERE completed = $1 ORDER BY created_at DESC, id DESC",
			wantArgs:  []interface{}{false},
		},
		{
			name:      "filters AND-compose with sort",
			filter:    internal.TaskFilter{Priority: &high, Completed: &done, Sort: internal.SortDueDate},
			wantQuery: "SELECT " + taskColumns + " FROM tasks WHERE priority = $1 AND completed = $2 ORDER BY due_date ASC NULLS LAST, id ASC",
			wantArgs:  []interface{}{db.PriorityHigh, true},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			query, args := buildSelectQuery(tt.filter)

			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
