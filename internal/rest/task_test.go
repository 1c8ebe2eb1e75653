package rest_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todotrack/internal"
	"todotrack/internal/rest"
	"todotrack/internal/rest/resttesting"
)

func newRouter(svc rest.TaskService) *chi.Mux {
	router := chi.NewRouter()
	rest.NewTaskHandler(svc).Register(router)

	return router
}

func doRequest(router *chi.Mux, req *http.Request) *http.Response {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr.Result()
}

func decodeBody(t *testing.T, res *http.Response, target interface{}) {
	t.Helper()

	defer res.Body.Close()

	require.NoError(t, json.NewDecoder(res.Body).Decode(target))
}

func fixtureTask() internal.Task {
	due := internal.Date{Year: 2099, Month: time.January, Day: 1}

	return internal.Task{
		ID:          1,
		Title:       "Buy milk",
		Description: "2%",
		Priority:    internal.PriorityHigh,
		DueDate:     &due,
		CreatedAt:   time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestTaskHandler_create(t *testing.T) {
	t.Parallel()

	t.Run("created task is returned with 201", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.CreateReturns(fixtureTask(), nil)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodPost, "/api/todos",
				bytes.NewBufferString(`{"title":"Buy milk","description":"2%","priority":"high","due_date":"2099-01-01"}`)))

		assert.Equal(t, http.StatusCreated, res.StatusCode)

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.JSONEq(t, `{
			"id": 1,
			"title": "Buy milk",
			"description": "2%",
			"completed": false,
			"priority": "high",
			"due_date": "2099-01-01",
			"created_at": "2025-06-01T10:00:00Z",
			"updated_at": "2025-06-01T10:00:00Z"
		}`, string(body))

		require.Equal(t, 1, svc.CreateCallCount())

		_, params := svc.CreateArgsForCall(0)
		assert.Equal(t, "Buy milk", params.Title)
		assert.Equal(t, internal.PriorityHigh, params.Priority)
		require.NotNil(t, params.DueDate)
	})

	t.Run("validation failure maps to 400", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.CreateReturns(internal.Task{},
			internal.NewErrorf(internal.ErrorCodeInvalidArgument, "title is required"))

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodPost, "/api/todos", bytes.NewBufferString(`{"title":"  "}`)))

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		var body rest.ErrorResponse
		decodeBody(t, res, &body)
		assert.Contains(t, body.Error, "title")
	})

	t.Run("malformed json maps to 400", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodPost, "/api/todos", bytes.NewBufferString(`{`)))

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, 0, svc.CreateCallCount())
	})
}

func TestTaskHandler_task(t *testing.T) {
	t.Parallel()

	t.Run("due_date renders as null when unset", func(t *testing.T) {
		t.Parallel()

		task := fixtureTask()
		task.DueDate = nil

		svc := &resttesting.FakeTaskService{}
		svc.TaskReturns(task, nil)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodGet, "/api/todos/1", nil))

		assert.Equal(t, http.StatusOK, res.StatusCode)

		var body map[string]interface{}
		decodeBody(t, res, &body)

		value, ok := body["due_date"]
		require.True(t, ok)
		assert.Nil(t, value)
		assert.Equal(t, false, body["completed"])
	})

	t.Run("unknown id maps to 404", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.TaskReturns(internal.Task{},
			internal.NewErrorf(internal.ErrorCodeNotFound, "task not found"))

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodGet, "/api/todos/404", nil))

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("non-numeric id never reaches the handler", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodGet, "/api/todos/abc", nil))

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, 0, svc.TaskCallCount())
	})

	t.Run("unexpected failure maps to 500 with an opaque message", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.TaskReturns(internal.Task{}, io.ErrUnexpectedEOF)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodGet, "/api/todos/1", nil))

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

		var body rest.ErrorResponse
		decodeBody(t, res, &body)
		assert.Equal(t, "internal error", body.Error)
	})
}

func TestTaskHandler_list(t *testing.T) {
	t.Parallel()

	t.Run("query parameters become the filter", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.ByReturns([]internal.Task{fixtureTask()}, nil)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodGet, "/api/todos?priority=high&completed=false&sort=due_date", nil))

		assert.Equal(t, http.StatusOK, res.StatusCode)

		var body []rest.Task
		decodeBody(t, res, &body)
		require.Len(t, body, 1)
		assert.Equal(t, "Buy milk", body[0].Title)

		require.Equal(t, 1, svc.ByCallCount())

		_, filter := svc.ByArgsForCall(0)
		require.NotNil(t, filter.Priority)
		assert.Equal(t, internal.PriorityHigh, *filter.Priority)
		require.NotNil(t, filter.Completed)
		assert.False(t, *filter.Completed)
		assert.Equal(t, internal.SortDueDate, filter.Sort)
	})

	t.Run("no parameters means no restrictions", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.ByReturns([]internal.Task{}, nil)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodGet, "/api/todos", nil))

		assert.Equal(t, http.StatusOK, res.StatusCode)

		_, filter := svc.ByArgsForCall(0)
		assert.Nil(t, filter.Priority)
		assert.Nil(t, filter.Completed)
		assert.Equal(t, internal.SortCreatedAt, filter.Sort)
	})

	t.Run("empty result is a json array", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.ByReturns([]internal.Task{}, nil)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodGet, "/api/todos", nil))

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.JSONEq(t, `[]`, string(body))
	})

	t.Run("invalid priority maps to 400", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodGet, "/api/todos?priority=urgent", nil))

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, 0, svc.ByCallCount())
	})

	t.Run("invalid completed maps to 400", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodGet, "/api/todos?completed=maybe", nil))

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

func TestTaskHandler_update(t *testing.T) {
	t.Parallel()

	t.Run("absent fields stay out of the patch", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.UpdateReturns(fixtureTask(), nil)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodPatch, "/api/todos/1",
				bytes.NewBufferString(`{"completed":false}`)))

		assert.Equal(t, http.StatusOK, res.StatusCode)

		require.Equal(t, 1, svc.UpdateCallCount())

		_, id, patch := svc.UpdateArgsForCall(0)
		assert.Equal(t, int64(1), id)
		assert.Nil(t, patch.Title)
		assert.Nil(t, patch.Description)
		assert.Nil(t, patch.Priority)
		assert.Nil(t, patch.DueDate)
		assert.False(t, patch.ClearDueDate)
		require.NotNil(t, patch.Completed)
		assert.False(t, *patch.Completed)
	})

	t.Run("explicit null due_date clears it", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.UpdateReturns(fixtureTask(), nil)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodPatch, "/api/todos/1",
				bytes.NewBufferString(`{"due_date":null}`)))

		assert.Equal(t, http.StatusOK, res.StatusCode)

		_, _, patch := svc.UpdateArgsForCall(0)
		assert.True(t, patch.ClearDueDate)
		assert.Nil(t, patch.DueDate)
	})

	t.Run("due_date value is parsed", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.UpdateReturns(fixtureTask(), nil)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodPatch, "/api/todos/1",
				bytes.NewBufferString(`{"due_date":"2099-01-01"}`)))

		assert.Equal(t, http.StatusOK, res.StatusCode)

		_, _, patch := svc.UpdateArgsForCall(0)
		assert.False(t, patch.ClearDueDate)
		require.NotNil(t, patch.DueDate)
		assert.Equal(t, internal.Date{Year: 2099, Month: time.January, Day: 1}, *patch.DueDate)
	})

	t.Run("unparseable due_date maps to 400", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodPatch, "/api/todos/1",
				bytes.NewBufferString(`{"due_date":"tomorrow"}`)))

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, 0, svc.UpdateCallCount())
	})

	t.Run("unknown id maps to 404", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.UpdateReturns(internal.Task{},
			internal.NewErrorf(internal.ErrorCodeNotFound, "task not found"))

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodPatch, "/api/todos/404",
				bytes.NewBufferString(`{"completed":true}`)))

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestTaskHandler_delete(t *testing.T) {
	t.Parallel()

	t.Run("acknowledges the removal", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.DeleteReturns(fixtureTask(), nil)

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodDelete, "/api/todos/1", nil))

		assert.Equal(t, http.StatusOK, res.StatusCode)

		var body rest.DeleteTaskResponse
		decodeBody(t, res, &body)
		assert.True(t, body.Success)

		require.Equal(t, 1, svc.DeleteCallCount())

		_, id := svc.DeleteArgsForCall(0)
		assert.Equal(t, int64(1), id)
	})

	t.Run("unknown id maps to 404", func(t *testing.T) {
		t.Parallel()

		svc := &resttesting.FakeTaskService{}
		svc.DeleteReturns(internal.Task{},
			internal.NewErrorf(internal.ErrorCodeNotFound, "task not found"))

		res := doRequest(newRouter(svc),
			httptest.NewRequest(http.MethodDelete, "/api/todos/404", nil))

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}
