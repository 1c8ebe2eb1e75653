package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	esv7 "github.com/elastic/go-elasticsearch/v7"
	esv7api "github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/mercari/go-circuitbreaker"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"todotrack/internal"
)

const otelName = "todotrack/internal/elasticsearch"

// Task represents the audit index of task records. Writes go through a
// circuit breaker so a struggling cluster stops the indexer from hammering
// it.
type Task struct {
	client *esv7.Client
	index  string
	cb     *circuitbreaker.CircuitBreaker
}

type indexedTask struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Completed   bool              `json:"completed"`
	Priority    internal.Priority `json:"priority"`
	DueDate     string            `json:"due_date,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewTask instantiates the Task repository.
func NewTask(client *esv7.Client) *Task {
	return &Task{
		client: client,
		index:  "tasks",
		cb: circuitbreaker.New(
			circuitbreaker.WithOpenTimeout(30*time.Second),
			circuitbreaker.WithTripFunc(circuitbreaker.NewTripFuncConsecutiveFailures(3)),
		),
	}
}

// Index creates or updates a task document.
func (t *Task) Index(ctx context.Context, task internal.Task) error {
	defer newOTELSpan(ctx, "Task.Index").End()

	body := indexedTask{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.DueDate != nil {
		body.DueDate = task.DueDate.String()
	}

	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewEncoder.Encode")
	}

	req := esv7api.IndexRequest{
		Index:      t.index,
		Body:       &buf,
		DocumentID: strconv.FormatInt(task.ID, 10),
		Refresh:    "true",
	}

	_, err := t.cb.Do(ctx, func() (interface{}, error) {
		resp, err := req.Do(ctx, t.client)
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "IndexRequest.Do")
		}
		defer resp.Body.Close()

		if resp.IsError() {
			return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "IndexRequest.Do %d", resp.StatusCode)
		}

		io.Copy(io.Discard, resp.Body) //nolint: errcheck

		return nil, nil
	})

	return err
}

// Delete removes a task document from the index.
func (t *Task) Delete(ctx context.Context, id int64) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	req := esv7api.DeleteRequest{
		Index:      t.index,
		DocumentID: strconv.FormatInt(id, 10),
	}

	_, err := t.cb.Do(ctx, func() (interface{}, error) {
		resp, err := req.Do(ctx, t.client)
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "DeleteRequest.Do")
		}
		defer resp.Body.Close()

		if resp.IsError() {
			return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "DeleteRequest.Do %d", resp.StatusCode)
		}

		io.Copy(io.Discard, resp.Body) //nolint: errcheck

		return nil, nil
	})

	return err
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemElasticsearch)

	return span
}
