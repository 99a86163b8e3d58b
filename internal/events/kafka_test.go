package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/baharkarakas/sagepaypi/internal/worker"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisherWritesKeyedEvent(t *testing.T) {
	wp := worker.NewPool(1)
	w := &fakeWriter{}
	p := newKafkaPublisher(w, wp)

	code := 201
	release := models.InstructionRelease
	tx := models.Transaction{
		ID:          "tx-1",
		Type:        models.TxnDeferred,
		StatusCode:  models.Str("0000"),
		Instruction: &release,
		UpdatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	p.Publish(context.Background(), NewTransactionEvent(tx, models.TransactionResponse{Step: models.StepRelease, StatusCode: &code}))
	wp.Stop()

	if len(w.msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "tx-1" {
		t.Errorf("key = %q, want tx-1", w.msgs[0].Key)
	}
	var ev TransactionEvent
	if err := json.Unmarshal(w.msgs[0].Value, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Step != models.StepRelease || ev.Instruction == nil || *ev.Instruction != "release" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.HTTPStatus == nil || *ev.HTTPStatus != 201 {
		t.Errorf("http status = %v, want 201", ev.HTTPStatus)
	}
}

func TestKafkaPublisherAfterStopDoesNotPanic(t *testing.T) {
	wp := worker.NewPool(1)
	w := &fakeWriter{}
	p := newKafkaPublisher(w, wp)
	wp.Stop()

	p.Publish(context.Background(), NewTransactionEvent(models.Transaction{ID: "tx-1"}, models.TransactionResponse{Step: models.StepOutcome}))
	if len(w.msgs) != 0 {
		t.Errorf("wrote %d messages after stop", len(w.msgs))
	}
}
