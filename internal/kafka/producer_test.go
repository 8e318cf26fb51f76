package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{w: w, timeout: time.Second}

	if err := p.Publish(context.Background(), "evt_1", "ZXZ0"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "evt_1" || string(w.msgs[0].Value) != "ZXZ0" {
		t.Errorf("message = %q/%q", w.msgs[0].Key, w.msgs[0].Value)
	}
}

func TestProducer_PublishError(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := &Producer{w: &fakeWriter{err: boom}, timeout: time.Second}

	if err := p.Publish(context.Background(), "evt_1", "x"); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestNewProducer_Defaults(t *testing.T) {
	p := NewProducer(Config{Brokers: []string{"localhost:9092"}, Topic: "stripe-events"})
	defer p.Close()

	if p.timeout != 10*time.Second {
		t.Errorf("timeout = %v", p.timeout)
	}
	w, ok := p.w.(*kafka.Writer)
	if !ok {
		t.Fatalf("writer type = %T", p.w)
	}
	if w.Topic != "stripe-events" {
		t.Errorf("topic = %q", w.Topic)
	}
}
