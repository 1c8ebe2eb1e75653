package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"todotrack/internal"
)

//go:generate counterfeiter -o resttesting/task_service.gen.go . TaskService

// TaskService defines the service layer this handler delegates to.
type TaskService interface {
	By(ctx context.Context, filter internal.TaskFilter) ([]internal.Task, error)
	Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	Delete(ctx context.Context, id int64) (internal.Task, error)
	Task(ctx context.Context, id int64) (internal.Task, error)
	Update(ctx context.Context, id int64, patch internal.TaskPatch) (internal.Task, error)
}

// TaskHandler exposes the task service over HTTP.
type TaskHandler struct {
	svc TaskService
}

// NewTaskHandler instantiates the handler.
func NewTaskHandler(svc TaskService) *TaskHandler {
	return &TaskHandler{
		svc: svc,
	}
}

// Register connects the handlers to the router.
func (t *TaskHandler) Register(r chi.Router) {
	r.Route("/api/todos", func(r chi.Router) {
		r.Get("/", t.list)
		r.Post("/", t.create)

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", t.task)
			r.Patch("/", t.update)
			r.Delete("/", t.delete)
		})
	})
}

// Task is the wire representation of a task: completed is a genuine boolean,
// due_date is null or a YYYY-MM-DD string, timestamps are RFC 3339 strings.
type Task struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Completed   bool           `json:"completed"`
	Priority    string         `json:"priority"`
	DueDate     *internal.Date `json:"due_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func newTask(task internal.Task) Task {
	return Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func newTasks(tasks []internal.Task) []Task {
	res := make([]Task, len(tasks))
	for i, task := range tasks {
		res[i] = newTask(task)
	}

	return res
}

// CreateTaskRequest defines the request used for creating tasks.
type CreateTaskRequest struct {
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Priority    *string        `json:"priority"`
	DueDate     *internal.Date `json:"due_date"`
}

// UpdateTaskRequest defines the request used for partially updating tasks.
// Every field is optional; due_date keeps its raw JSON so an explicit null,
// which clears the date, stays distinguishable from an absent field.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *string         `json:"priority"`
	DueDate     json.RawMessage `json:"due_date"`
	Completed   *bool           `json:"completed"`
}

var jsonNull = []byte("null")

func (r UpdateTaskRequest) patch() (internal.TaskPatch, error) {
	res := internal.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}

	if r.Priority != nil {
		priority := internal.Priority(*r.Priority)
		res.Priority = &priority
	}

	switch {
	case len(r.DueDate) == 0:
	case bytes.Equal(bytes.TrimSpace(r.DueDate), jsonNull):
		res.ClearDueDate = true
	default:
		var date internal.Date
		if err := json.Unmarshal(r.DueDate, &date); err != nil {
			return internal.TaskPatch{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "due_date")
		}

		res.DueDate = &date
	}

	return res, nil
}

func (t *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := newTaskFilter(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid query", err)
		return
	}

	tasks, err := t.svc.By(r.Context(), filter)
	if err != nil {
		renderErrorResponse(r.Context(), w, "list failed", err)
		return
	}

	renderResponse(w, newTasks(tasks), http.StatusOK)
}

func (t *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	params := internal.CreateTaskParams{
		Title:   req.Title,
		DueDate: req.DueDate,
	}

	if req.Description != nil {
		params.Description = *req.Description
	}

	if req.Priority != nil {
		params.Priority = internal.Priority(*req.Priority)
	}

	task, err := t.svc.Create(r.Context(), params)
	if err != nil {
		renderErrorResponse(r.Context(), w, "create failed", err)
		return
	}

	renderResponse(w, newTask(task), http.StatusCreated)
}

func (t *TaskHandler) task(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	task, err := t.svc.Task(r.Context(), id)
	if err != nil {
		renderErrorResponse(r.Context(), w, "find failed", err)
		return
	}

	renderResponse(w, newTask(task), http.StatusOK)
}

func (t *TaskHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	patch, err := req.patch()
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid request", err)
		return
	}

	task, err := t.svc.Update(r.Context(), id, patch)
	if err != nil {
		renderErrorResponse(r.Context(), w, "update failed", err)
		return
	}

	renderResponse(w, newTask(task), http.StatusOK)
}

// DeleteTaskResponse acknowledges a removal.
type DeleteTaskResponse struct {
	Success bool `json:"success"`
}

func (t *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	if _, err := t.svc.Delete(r.Context(), id); err != nil {
		renderErrorResponse(r.Context(), w, "delete failed", err)
		return
	}

	renderResponse(w, DeleteTaskResponse{Success: true}, http.StatusOK)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "strconv.ParseInt")
	}

	return id, nil
}

// newTaskFilter decodes the three optional listing parameters. An absent
// completed parameter is "no restriction", which is not the same request as
// completed=false. Unknown sort keys fall back to the default ordering.
func newTaskFilter(r *http.Request) (internal.TaskFilter, error) {
	res := internal.TaskFilter{
		Sort: internal.ParseTaskSort(r.URL.Query().Get("sort")),
	}

	if v := r.URL.Query().Get("priority"); v != "" {
		priority := internal.Priority(v)
		if err := priority.Validate(); err != nil {
			return internal.TaskFilter{}, err
		}

		res.Priority = &priority
	}

	if v := r.URL.Query().Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return internal.TaskFilter{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "completed")
		}

		res.Completed = &completed
	}

	return res, nil
}
