// The cli command exercises the REST API end to end: create, patch, read,
// delete. Useful as a smoke test against a running server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func main() {
	var baseURL string

	flag.StringVar(&baseURL, "url", "http://127.0.0.1:9234", "Server base URL")
	flag.Parse()

	initTracer()

	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	ctx := context.Background()

	created, err := createTask(ctx, client, baseURL, map[string]interface{}{
		"title":    "Buy milk",
		"priority": "high",
		"due_date": time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
	})
	if err != nil {
		log.Fatalf("Couldn't create task: %s", err)
	}

	printTask("New Task", created)

	updated, err := updateTask(ctx, client, baseURL, created.ID, map[string]interface{}{
		"completed": true,
	})
	if err != nil {
		log.Fatalf("Couldn't update task: %s", err)
	}

	printTask("Updated Task", updated)

	read, err := readTask(ctx, client, baseURL, created.ID)
	if err != nil {
		log.Fatalf("Couldn't read task: %s", err)
	}

	printTask("Read Task", read)

	if err := deleteTask(ctx, client, baseURL, created.ID); err != nil {
		log.Fatalf("Couldn't delete task: %s", err)
	}

	fmt.Printf("Deleted Task %d\n", created.ID)

	time.Sleep(5 * time.Second) // let the batcher export spans
}

func createTask(ctx context.Context, client *http.Client, baseURL string, body map[string]interface{}) (task, error) {
	return do(ctx, client, http.MethodPost, baseURL+"/api/todos", body, http.StatusCreated)
}

func readTask(ctx context.Context, client *http.Client, baseURL string, id int64) (task, error) {
	return do(ctx, client, http.MethodGet, fmt.Sprintf("%s/api/todos/%d", baseURL, id), nil, http.StatusOK)
}

func updateTask(ctx context.Context, client *http.Client, baseURL string, id int64, body map[string]interface{}) (task, error) {
	return do(ctx, client, http.MethodPatch, fmt.Sprintf("%s/api/todos/%d", baseURL, id), body, http.StatusOK)
}

func deleteTask(ctx context.Context, client *http.Client, baseURL string, id int64) error {
	_, err := do(ctx, client, http.MethodDelete, fmt.Sprintf("%s/api/todos/%d", baseURL, id), nil, http.StatusOK)

	return err
}

func do(ctx context.Context, client *http.Client, method, url string, body map[string]interface{}, wantStatus int) (task, error) {
	reader := bytes.NewBuffer(nil)

	if body != nil {
		if err := json.NewEncoder(reader).Encode(body); err != nil {
			return task{}, fmt.Errorf("json.Encode: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return task{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return task{}, fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return task{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var res task

	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return task{}, fmt.Errorf("json.Decode: %w", err)
	}

	return res, nil
}

func printTask(header string, t task) {
	fmt.Printf("%s\n\tID: %d\n", header, t.ID)
	fmt.Printf("\tTitle: %s\n", t.Title)
	fmt.Printf("\tPriority: %s\n", t.Priority)
	fmt.Printf("\tCompleted: %t\n", t.Completed)

	if t.DueDate != nil {
		fmt.Printf("\tDue: %s\n", *t.DueDate)
	}
}

// initTracer initializes OpenTelemetry tracing with Jaeger and stdout
// exporters.
func initTracer() {
	jaegerEndpoint := "http://localhost:14268/api/traces"

	jaegerExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
	if err != nil {
		log.Fatalf("Couldn't initialize jaeger exporter: %s", err)
	}

	stdoutExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatalf("Couldn't initialize stdout exporter: %s", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(stdoutExporter),
		sdktrace.WithBatcher(jaegerExporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
}
