// Package producer publishes registry audit events to a Kafka topic.
package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	id "awardregistry/pkg/domain"
	audit "awardregistry/pkg/platform/audit"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	headerAction   = "action"
	headerCategory = "category"
)

// Config holds producer connection settings.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Producer is an audit sink backed by a franz-go client.
type Producer struct {
	client *kgo.Client
	topic  string
}

// New creates a producer. Extra kgo options are appended after the defaults.
func New(cfg Config, opts ...kgo.Opt) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka producer requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka producer requires a topic")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "awardregistry"
	}

	base := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(clientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.AllowAutoTopicCreation(),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Producer{client: client, topic: cfg.Topic}, nil
}

func (p *Producer) Name() string { return "kafka" }

// Publish synchronously writes the event keyed by company id, so events for
// one company stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, event audit.Event) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.CompanyID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: headerAction, Value: []byte(event.Action)},
			{Key: headerCategory, Value: []byte(event.Category)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event %s: %w", event.ID, err)
	}
	return nil
}

// EnsureTopic creates the audit topic if it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(p.client)
	resps, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *Producer) Close() {
	p.client.Close()
}

// message is the JSON wire form of an audit event.
type message struct {
	ID           uuid.UUID           `json:"id"`
	Category     audit.EventCategory `json:"category"`
	Timestamp    time.Time           `json:"timestamp"`
	Action       string              `json:"action"`
	Actor        id.Address          `json:"actor"`
	CompanyID    id.CompanyID        `json:"company_id,omitempty"`
	UserID       id.UserID           `json:"user_id,omitempty"`
	Counterparty *id.Address         `json:"counterparty,omitempty"`
	Amount       *id.Amount          `json:"amount,omitempty"`
	RequestID    string              `json:"request_id,omitempty"`
}

func EncodeEvent(event audit.Event) ([]byte, error) {
	msg := message{
		ID:        event.ID,
		Category:  event.Category,
		Timestamp: event.Timestamp.UTC(),
		Action:    event.Action,
		Actor:     event.Actor,
		CompanyID: event.CompanyID,
		UserID:    event.UserID,
		RequestID: event.RequestID,
	}
	if !event.Counterparty.IsZero() {
		msg.Counterparty = &event.Counterparty
	}
	if !event.Amount.IsZero() {
		msg.Amount = &event.Amount
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode audit event: %w", err)
	}
	return payload, nil
}

func DecodeEvent(payload []byte) (audit.Event, error) {
	var msg message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	event := audit.Event{
		ID:        msg.ID,
		Category:  msg.Category,
		Timestamp: msg.Timestamp,
		Action:    msg.Action,
		Actor:     msg.Actor,
		CompanyID: msg.CompanyID,
		UserID:    msg.UserID,
		RequestID: msg.RequestID,
	}
	if msg.Counterparty != nil {
		event.Counterparty = *msg.Counterparty
	}
	if msg.Amount != nil {
		event.Amount = *msg.Amount
	}
	return event, nil
}
