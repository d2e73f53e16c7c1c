// Package kafka ships audit events to a Kafka topic with franz-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "roster/pkg/platform/audit"
)

// Sink implements audit.Store by producing each event synchronously. Use it
// behind the async publisher so request latency does not include Kafka.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects to brokers. Extra kgo options are appended after the defaults.
func New(brokers []string, topic string, opts ...kgo.Opt) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka audit sink: no brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka audit sink: topic is required")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("kafka audit sink: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// payload is the JSON value written to the topic.
type payload struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	UserID    int64  `json:"user_id,omitempty"`
	Action    string `json:"action"`
	Email     string `json:"email,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(payload{
		ID:        event.ID.String(),
		Category:  string(event.Category),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		UserID:    event.UserID,
		Action:    event.Action,
		Email:     event.Email,
		RequestID: event.RequestID,
		Reason:    event.Reason,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		// Keyed by record id so one user's events stay ordered in a partition.
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Sink) Close() {
	s.client.Close()
}
