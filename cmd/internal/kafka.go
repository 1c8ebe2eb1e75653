package internal

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"

	"todotrack/internal"
	"todotrack/internal/envar"
)

// KafkaProducer bundles the producer with the topic it publishes to.
type KafkaProducer struct {
	Producer *kafka.Producer
	Topic    string
}

// NewKafkaProducer instantiates the Kafka producer using configuration
// defined in environment variables.
func NewKafkaProducer(conf *envar.Configuration) (*KafkaProducer, error) {
	host, err := conf.Get("KAFKA_HOST")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get KAFKA_HOST")
	}

	topic, err := conf.Get("KAFKA_TOPIC")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get KAFKA_TOPIC")
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": host,
	})
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "kafka.NewProducer")
	}

	return &KafkaProducer{
		Producer: producer,
		Topic:    topic,
	}, nil
}

// Close flushes pending messages and closes the producer.
func (k *KafkaProducer) Close() {
	k.Producer.Flush(5000)
	k.Producer.Close()
}

// KafkaConsumer wraps the consumer subscribed to the task events topic.
type KafkaConsumer struct {
	Consumer *kafka.Consumer
}

// NewKafkaConsumer instantiates the Kafka consumer using configuration
// defined in environment variables.
func NewKafkaConsumer(conf *envar.Configuration, groupID string) (*KafkaConsumer, error) {
	host, err := conf.Get("KAFKA_HOST")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get KAFKA_HOST")
	}

	topic, err := conf.Get("KAFKA_TOPIC")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get KAFKA_TOPIC")
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  host,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "kafka.NewConsumer")
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "consumer.Subscribe")
	}

	return &KafkaConsumer{
		Consumer: consumer,
	}, nil
}
