package internal_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todotrack/internal"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	date, err := internal.ParseDate("2099-01-01")
	require.NoError(t, err)

	assert.Equal(t, internal.Date{Year: 2099, Month: time.January, Day: 1}, date)
	assert.Equal(t, "2099-01-01", date.String())
}

func TestParseDate_invalid(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "tomorrow", "2099-13-01", "2099-01-01T10:00:00Z"} {
		_, err := internal.ParseDate(value)
		require.Error(t, err, value)

		var ierr *internal.Error
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, internal.ErrorCodeInvalidArgument, ierr.Code())
	}
}

func TestDate_ordering(t *testing.T) {
	t.Parallel()

	early := internal.Date{Year: 2024, Month: time.December, Day: 31}
	late := internal.Date{Year: 2025, Month: time.January, Day: 1}

	assert.True(t, early.Before(late))
	assert.True(t, late.After(early))
	assert.False(t, late.Before(early))
}

func TestDate_json(t *testing.T) {
	t.Parallel()

	type payload struct {
		DueDate *internal.Date `json:"due_date"`
	}

	t.Run("value round trips as YYYY-MM-DD", func(t *testing.T) {
		t.Parallel()

		date := internal.Date{Year: 2099, Month: time.January, Day: 1}

		b, err := json.Marshal(payload{DueDate: &date})
		require.NoError(t, err)
		assert.JSONEq(t, `{"due_date":"2099-01-01"}`, string(b))

		var got payload
		require.NoError(t, json.Unmarshal(b, &got))
		require.NotNil(t, got.DueDate)
		assert.Equal(t, date, *got.DueDate)
	})

	t.Run("absent renders as null", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(payload{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"due_date":null}`, string(b))
	})
}
