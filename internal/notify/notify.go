// Package notify pushes sync completion events onto a message bus so
// downstream back-office consumers (stock, pricing, loyalty) can react
// without polling. Publication is one-way: this service never consumes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gestpos/gestsync/internal/domain"
)

// Publisher sends a raw event payload to the configured bus.
type Publisher interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, message []byte) error
	Close() error
}

// Config selects and parameterizes the bus backend.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Type    string `yaml:"type"` // rabbitmq | kafka

	// RabbitMQ settings.
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Queue    string `yaml:"queue"`
	UseTLS   bool   `yaml:"use_tls"`

	// Kafka settings.
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// New builds the Publisher named by cfg.Type.
func New(cfg Config) (Publisher, error) {
	switch cfg.Type {
	case "rabbitmq":
		return NewRabbitMQ(cfg)
	case "kafka":
		return NewKafka(cfg)
	default:
		return nil, fmt.Errorf("unsupported notify type: %s (supported: rabbitmq, kafka)", cfg.Type)
	}
}

// Sink adapts a Publisher to the sync service's result fan-out. Each
// finished run is serialized to JSON and sent as one event.
type Sink struct {
	pub Publisher
}

// NewSink wraps an already connected Publisher.
func NewSink(pub Publisher) *Sink {
	return &Sink{pub: pub}
}

func (s *Sink) Publish(ctx context.Context, run domain.SyncRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	return s.pub.Send(ctx, payload)
}

func (s *Sink) Close() error {
	return s.pub.Close()
}
