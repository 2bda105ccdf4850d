package notify

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gestpos/gestsync/internal/domain"
)

func TestNew_TypeSelection(t *testing.T) {
	if _, err := New(Config{Type: "rabbitmq", Queue: "gestsync.events"}); err != nil {
		t.Errorf("New(rabbitmq) error = %v", err)
	}
	if _, err := New(Config{Type: "kafka", Brokers: []string{"localhost:9092"}, Topic: "gestsync"}); err != nil {
		t.Errorf("New(kafka) error = %v", err)
	}
	if _, err := New(Config{Type: "msmq"}); err == nil {
		t.Error("New(msmq) error = nil, want unsupported type")
	}
}

func TestNewRabbitMQ_Defaults(t *testing.T) {
	r, err := NewRabbitMQ(Config{Queue: "gestsync.events"})
	if err != nil {
		t.Fatalf("NewRabbitMQ() error = %v", err)
	}
	if r.config.Host != "localhost" || r.config.Port != 5672 || r.config.VHost != "/" {
		t.Errorf("defaults = %s:%d vhost %q, want localhost:5672 vhost /", r.config.Host, r.config.Port, r.config.VHost)
	}

	tls, _ := NewRabbitMQ(Config{Queue: "gestsync.events", UseTLS: true})
	if tls.config.Port != 5671 {
		t.Errorf("TLS default port = %d, want 5671", tls.config.Port)
	}

	if _, err := NewRabbitMQ(Config{}); err == nil {
		t.Error("NewRabbitMQ without queue: error = nil, want validation failure")
	}
}

func TestNewKafka_Validation(t *testing.T) {
	if _, err := NewKafka(Config{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Error("NewKafka without topic: error = nil, want validation failure")
	}
	if _, err := NewKafka(Config{Topic: "gestsync"}); err == nil {
		t.Error("NewKafka without brokers: error = nil, want validation failure")
	}
}

func TestSend_RequiresConnect(t *testing.T) {
	ctx := context.Background()

	r, _ := NewRabbitMQ(Config{Queue: "gestsync.events"})
	if err := r.Send(ctx, []byte("x")); err == nil {
		t.Error("RabbitMQ.Send before Connect: error = nil, want failure")
	}

	k, _ := NewKafka(Config{Brokers: []string{"localhost:9092"}, Topic: "gestsync"})
	if err := k.Send(ctx, []byte("x")); err == nil {
		t.Error("Kafka.Send before Connect: error = nil, want failure")
	}
}

type memPublisher struct {
	messages [][]byte
}

func (m *memPublisher) Connect(context.Context) error { return nil }
func (m *memPublisher) Close() error                  { return nil }
func (m *memPublisher) Send(_ context.Context, message []byte) error {
	m.messages = append(m.messages, message)
	return nil
}

func TestSink_PublishesRunAsJSON(t *testing.T) {
	pub := &memPublisher{}
	sink := NewSink(pub)

	finished := time.Now().UTC()
	run := domain.SyncRun{
		ID: "run-1", Domain: "products", ConfigID: "cfg-1",
		Status: "success", Extracted: 10, Updated: 10,
		StartedAt: finished.Add(-time.Second), FinishedAt: &finished,
	}
	if err := sink.Publish(context.Background(), run); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(pub.messages))
	}
	var got domain.SyncRun
	if err := json.Unmarshal(pub.messages[0], &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if got.Domain != "products" || got.Updated != 10 {
		t.Errorf("decoded run = %+v, want published run", got)
	}
	if !strings.Contains(string(pub.messages[0]), `"status":"success"`) {
		t.Errorf("payload = %s, want status field", pub.messages[0])
	}
}
