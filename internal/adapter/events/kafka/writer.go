package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/port"
)

// messageWriter is satisfied by *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

// Publisher writes events to a single topic keyed by post id so that
// all events of one post stay in one partition.
type Publisher struct {
	w messageWriter
}

// NewPublisher accepts a comma separated broker list. acks is none, one or all.
func NewPublisher(brokers, topic, acks string) *Publisher {
	var requiredAcks kgo.RequiredAcks
	switch strings.ToLower(strings.TrimSpace(acks)) {
	case "none":
		requiredAcks = kgo.RequireNone
	case "all":
		requiredAcks = kgo.RequireAll
	default:
		requiredAcks = kgo.RequireOne
	}

	w := &kgo.Writer{
		Addr:                   kgo.TCP(splitBrokers(brokers)...),
		Topic:                  topic,
		Balancer:               &kgo.Hash{},
		RequiredAcks:           requiredAcks,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           2 * time.Second,
		MaxAttempts:            3,
		WriteBackoffMax:        250 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{w: w}
}

var _ port.Publisher = (*Publisher)(nil)

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kgo.Message{
		Key:   []byte(strconv.FormatUint(uint64(ev.PostID()), 10)),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kgo.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "event-id", Value: []byte(ev.ID)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", ev.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error { return p.w.Close() }
