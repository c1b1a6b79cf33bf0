// Package audit publishes lock-state transitions to Kafka so other dashboard
// services can reconstruct who edited what and when. Publishing is fire and
// forget: the writer runs async and failures never reach the lock path.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/BenZehavi423/smart-dashboard/pkg/logger"
)

// Lock transition kinds recorded in the audit trail.
const (
	ActionGranted       = "lock_granted"
	ActionReleased      = "lock_released"
	ActionForceReleased = "lock_force_released"
)

// Entry is one audit record, keyed by resource so all transitions for a
// resource land on the same partition in order.
type Entry struct {
	ResourceID string    `json:"resource_id"`
	Action     string    `json:"action"`
	Holder     string    `json:"holder,omitempty"`
	At         time.Time `json:"at"`
}

type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewPublisher creates a Kafka-backed audit publisher. Returns nil when no
// brokers are configured; a nil Publisher is valid and publishes nothing.
func NewPublisher(brokers []string, topic string, log *logger.Logger) *Publisher {
	if len(brokers) == 0 {
		log.Info("Lock audit trail disabled, no Kafka brokers configured")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // hash by key so per-resource order holds
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 100 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error("Kafka audit write failed", "detail", msg)
		}),
	}

	log.Info("Lock audit trail enabled", "topic", topic, "brokers", brokers)
	return &Publisher{writer: writer, log: log}
}

// Publish records one transition. Nil-safe; errors are logged and swallowed.
func (p *Publisher) Publish(ctx context.Context, entry Entry) {
	if p == nil {
		return
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	value, err := json.Marshal(entry)
	if err != nil {
		p.log.Error("Failed to marshal audit entry", "error", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entry.ResourceID),
		Value: value,
	})
	if err != nil {
		// With Async set this only surfaces enqueue failures.
		p.log.Error("Failed to enqueue audit entry",
			"resource_id", entry.ResourceID,
			"action", entry.Action,
			"error", err,
		)
	}
}

// Close flushes and closes the underlying writer. Nil-safe.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
