// The audit-indexer-rabbitmq command consumes task lifecycle events from
// RabbitMQ and maintains the Elasticsearch audit index.
package main

import (
	"bytes"
	"context"
	"encoding/gob"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"todotrack/cmd/internal"
	"todotrack/internal/elasticsearch"
	"todotrack/internal/envar"
	"todotrack/internal/rabbitmq"
)

const rabbitMQConsumerName = "audit-indexer"

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

	rmq, err := internal.NewRabbitMQ(conf)
	if err != nil {
		return nil, fmt.Errorf("internal.NewRabbitMQ: %w", err)
	}

	if _, err := internal.NewOTExporter(conf, "todotrack-audit-indexer-rabbitmq"); err != nil {
		return nil, fmt.Errorf("internal.NewOTExporter: %w", err)
	}

	srv := &Server{
		logger: logger,
		rmq:    rmq,
		task:   elasticsearch.NewTask(esClient),
		done:   make(chan struct{}),
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

			rmq.Close()
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

// Server consumes the bound queue until the consumer is cancelled.
type Server struct {
	logger *zap.Logger
	rmq    *internal.RabbitMQ
	task   *elasticsearch.Task
	done   chan struct{}
}

// ListenAndServe binds an exclusive queue to the tasks exchange and applies
// events to the audit index, acking only after the index write succeeded.
func (s *Server) ListenAndServe() error {
	queue, err := s.rmq.Channel.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("channel.QueueDeclare: %w", err)
	}

	err = s.rmq.Channel.QueueBind(
		queue.Name,      // queue name
		"tasks.event.*", // routing key
		"tasks",         // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("channel.QueueBind: %w", err)
	}

	msgs, err := s.rmq.Channel.Consume(
		queue.Name,           // queue
		rabbitMQConsumerName, // consumer
		false,                // auto-ack
		false,                // exclusive
		false,                // no-local
		false,                // no-wait
		nil,                  // args
	)
	if err != nil {
		return fmt.Errorf("channel.Consume: %w", err)
	}

	go func() {
		for msg := range msgs {
			s.logger.Info("Received message", zap.String("routing_key", msg.RoutingKey))

			evt, err := decodeEvent(msg.Body)
			if err != nil {
				s.logger.Info("Ignoring invalid message", zap.Error(err))
				_ = msg.Ack(false)
				continue
			}

			var nack bool

			switch msg.RoutingKey {
			case "tasks.event.created", "tasks.event.updated":
				if err := s.task.Index(context.Background(), evt.Task); err != nil {
					nack = true
				}
			case "tasks.event.deleted":
				if err := s.task.Delete(context.Background(), evt.Task.ID); err != nil {
					nack = true
				}
			default:
				nack = true
			}

			if nack {
				_ = msg.Nack(false, true)
			} else {
				_ = msg.Ack(false)
			}
		}

		s.logger.Info("No more messages to consume, exiting")

		s.done <- struct{}{}
	}()

	return nil
}

// Shutdown cancels the consumer and waits for the delivery channel to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	_ = s.rmq.Channel.Cancel(rabbitMQConsumerName, false)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context.Done: %w", ctx.Err())
		case <-s.done:
			return nil
		}
	}
}

func decodeEvent(b []byte) (rabbitmq.Event, error) {
	var res rabbitmq.Event

	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&res); err != nil {
		return rabbitmq.Event{}, fmt.Errorf("gob.Decode: %w", err)
	}

	return res, nil
}
