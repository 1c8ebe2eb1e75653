// The audit-indexer-kafka command consumes task lifecycle events from Kafka
// and maintains the Elasticsearch audit index.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"todotrack/cmd/internal"
	internaldomain "todotrack/internal"
	"todotrack/internal/elasticsearch"
	"todotrack/internal/envar"
)

func main() {
	var env string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.Parse()

	errC, err := run(env)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env string) (<-chan error, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("zap.NewProduction: %w", err)
	}

	if err := envar.Load(env); err != nil {
		return nil, fmt.Errorf("envar.Load: %w", err)
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, fmt.Errorf("internal.NewVaultProvider: %w", err)
	}

	conf := envar.New(vault)

	esClient, err := internal.NewElasticSearch(conf)
	if err != nil {
		return nil, fmt.Errorf("internal.NewElasticSearch: %w", err)
	}

	kafkaConsumer, err := internal.NewKafkaConsumer(conf, "audit-indexer")
	if err != nil {
		return nil, fmt.Errorf("internal.NewKafkaConsumer: %w", err)
	}

	if _, err := internal.NewOTExporter(conf, "todotrack-audit-indexer-kafka"); err != nil {
		return nil, fmt.Errorf("internal.NewOTExporter: %w", err)
	}

	srv := &Server{
		logger: logger,
		kafka:  kafkaConsumer,
		task:   elasticsearch.NewTask(esClient),
		doneC:  make(chan struct{}),
		closeC: make(chan struct{}),
	}

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		defer func() {
			_ = logger.Sync()

			_ = srv.kafka.Consumer.Unsubscribe()
			stop()
			cancel()
			close(errC)
		}()

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("Shutdown completed")
	}()

	go func() {
		logger.Info("Consuming task events")

		if err := srv.ListenAndServe(); err != nil {
			errC <- err
		}
	}()

	return errC, nil
}

// Server consumes the topic until told to close.
type Server struct {
	logger *zap.Logger
	kafka  *internal.KafkaConsumer
	task   *elasticsearch.Task
	doneC  chan struct{}
	closeC chan struct{}
}

// event mirrors the envelope published by internal/kafka.
type event struct {
	ID   string              `json:"id"`
	Type string              `json:"type"`
	Task internaldomain.Task `json:"task"`
}

// ListenAndServe polls messages and applies them to the audit index,
// committing offsets only after the index write succeeded.
func (s *Server) ListenAndServe() error {
	commit := func(msg *kafka.Message) {
		if _, err := s.kafka.Consumer.CommitMessage(msg); err != nil {
			s.logger.Error("commit failed", zap.Error(err))
		}
	}

	go func() {
		run := true

		for run {
			select {
			case <-s.closeC:
				run = false
			default:
				msg, ok := s.kafka.Consumer.Poll(150).(*kafka.Message)
				if !ok {
					continue
				}

				var evt event

				if err := json.NewDecoder(bytes.NewReader(msg.Value)).Decode(&evt); err != nil {
					s.logger.Info("Ignoring invalid message", zap.Error(err))
					commit(msg)
					continue
				}

				ok = false

				switch evt.Type {
				case "tasks.event.created", "tasks.event.updated":
					if err := s.task.Index(context.Background(), evt.Task); err == nil {
						ok = true
					}
				case "tasks.event.deleted":
					if err := s.task.Delete(context.Background(), evt.Task.ID); err == nil {
						ok = true
					}
				}

				if ok {
					s.logger.Info("Consumed",
						zap.String("type", evt.Type),
						zap.String("event_id", evt.ID),
						zap.Int64("task_id", evt.Task.ID),
					)
					commit(msg)
				}
			}
		}

		s.logger.Info("No more messages to consume, exiting")

		s.doneC <- struct{}{}
	}()

	return nil
}

// Shutdown stops the polling loop and waits for it to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	close(s.closeC)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context.Done: %w", ctx.Err())
		case <-s.doneC:
			return nil
		}
	}
}
