// Package events publishes the ranked action queue to downstream systems
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wonny/billflow/backend/internal/action"
	"github.com/wonny/billflow/backend/pkg/config"
	"github.com/wonny/billflow/backend/pkg/logger"
)

// ErrPublisherClosed Close() 이후 Publish 호출
var ErrPublisherClosed = errors.New("publisher closed")

// ActionEvent is the message value; the key is the action id
type ActionEvent struct {
	SnapshotID  string      `json:"snapshot_id"`
	Rank        int         `json:"rank"`
	PublishedAt time.Time   `json:"published_at"`
	Action      action.Item `json:"action"`
}

// Publisher sends one snapshot's action queue
type Publisher interface {
	PublishActions(ctx context.Context, snapshotID string, items []action.Item) (int, error)
	Close() error
}

// messageWriter is the subset of *kafka.Writer we use
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes actions to a single topic keyed by action id,
// so every update of the same action lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time
	log    *logger.Logger

	mu     sync.Mutex
	closed bool
}

// NewKafkaPublisher creates a publisher from config
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ActionsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Gzip,
	}
	return newKafkaPublisher(writer, cfg.ActionsTopic, time.Now, log), nil
}

func newKafkaPublisher(w messageWriter, topic string, now func() time.Time, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaPublisher{writer: w, topic: topic, now: now, log: log.Component("events")}
}

// PublishActions writes every action in queue order as one batch
func (p *KafkaPublisher) PublishActions(ctx context.Context, snapshotID string, items []action.Item) (int, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return 0, ErrPublisherClosed
	}
	if len(items) == 0 {
		return 0, nil
	}

	at := p.now().UTC()
	msgs := make([]kafka.Message, 0, len(items))
	for i, item := range items {
		value, err := json.Marshal(ActionEvent{
			SnapshotID:  snapshotID,
			Rank:        i + 1,
			PublishedAt: at,
			Action:      item,
		})
		if err != nil {
			return 0, fmt.Errorf("marshal action %s: %w", item.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(item.ID),
			Value: value,
			Time:  at,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("write %d actions to %s: %w", len(msgs), p.topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":       p.topic,
		"snapshot_id": snapshotID,
		"count":       len(msgs),
	}).Info("Published action queue")
	return len(msgs), nil
}

// Close flushes and closes the writer (idempotent)
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// LogPublisher is used when no broker is configured: it only logs
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher creates a broker-less publisher
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log.Component("events")}
}

// PublishActions implements Publisher
func (p *LogPublisher) PublishActions(_ context.Context, snapshotID string, items []action.Item) (int, error) {
	p.log.WithFields(map[string]interface{}{
		"snapshot_id": snapshotID,
		"count":       len(items),
	}).Info("Kafka disabled, action queue not published")
	return 0, nil
}

// Close implements Publisher
func (p *LogPublisher) Close() error { return nil }

// New returns a Kafka publisher when brokers are configured, otherwise a LogPublisher
func New(cfg config.KafkaConfig, log *logger.Logger) (Publisher, error) {
	if !cfg.Enabled() {
		return NewLogPublisher(log), nil
	}
	return NewKafkaPublisher(cfg, log)
}
