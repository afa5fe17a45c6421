// Package kafka publishes registry lifecycle events to a Kafka topic so
// external collaborators (escrow, dispute handling) can follow invoices.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"tradeinvoice/internal/platform/config"
	"tradeinvoice/pkg/platform/audit"
)

// Message is the JSON value written for each event.
type Message struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	InvoiceID uint64    `json:"invoice_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// NewMessage projects an audit event onto the wire format. Client IP and
// user agent stay out of the topic.
func NewMessage(event audit.Event) Message {
	return Message{
		ID:        event.ID,
		Action:    event.Action,
		Category:  string(event.Category),
		Timestamp: event.Timestamp.UTC(),
		ActorID:   event.ActorID,
		InvoiceID: event.InvoiceID,
		Subject:   event.Subject,
		RequestID: event.RequestID,
	}
}

// Producer implements audit.Store on a Kafka topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects to the configured brokers. Returns nil when no
// brokers are configured.
func NewProducer(cfg config.Kafka) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Producer{client: client, topic: cfg.Topic}, nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(p.client)
	resp, err := admin.CreateTopic(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", p.topic, resp.Err)
	}
	return nil
}

// Append writes the event synchronously, keyed by invoice id so events for
// one invoice stay ordered within a partition.
func (p *Producer) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(NewMessage(event))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   recordKey(event),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", event.Action, err)
	}
	return nil
}

// Health pings the brokers.
func (p *Producer) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and closes the client.
func (p *Producer) Close(ctx context.Context) {
	_ = p.client.Flush(ctx)
	p.client.Close()
}

func recordKey(event audit.Event) []byte {
	if event.InvoiceID != 0 {
		return []byte(strconv.FormatUint(event.InvoiceID, 10))
	}
	return []byte("registry")
}
