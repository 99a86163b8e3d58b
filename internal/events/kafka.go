package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/baharkarakas/sagepaypi/internal/worker"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by transaction id so all events of one
// transaction land on the same partition. Writes happen on the worker pool.
type KafkaPublisher struct {
	writer  messageWriter
	wp      *worker.Pool
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string, wp *worker.Pool) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}, wp)
}

func newKafkaPublisher(w messageWriter, wp *worker.Pool) *KafkaPublisher {
	return &KafkaPublisher{writer: w, wp: wp, timeout: 10 * time.Second}
}

func (k *KafkaPublisher) Publish(_ context.Context, ev TransactionEvent) {
	v, err := json.Marshal(ev)
	if err != nil {
		slog.Error("encode transaction event", "err", err, "transaction", ev.TransactionID)
		return
	}
	msg := kafka.Message{Key: []byte(ev.TransactionID), Value: v, Time: ev.At}

	queued := k.wp.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
		defer cancel()
		if err := k.writer.WriteMessages(ctx, msg); err != nil {
			slog.Warn("publish transaction event", "err", err, "transaction", ev.TransactionID, "step", ev.Step)
		}
	})
	if !queued {
		slog.Warn("transaction event dropped", "transaction", ev.TransactionID, "step", ev.Step)
	}
}

func (k *KafkaPublisher) Close() error { return k.writer.Close() }
