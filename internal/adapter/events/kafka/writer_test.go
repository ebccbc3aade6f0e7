package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	kgo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strogmv/blogadmin/internal/domain"
)

type fakeWriter struct {
	msgs []kgo.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kgo.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublishKeysByPost(t *testing.T) {
	fw := &fakeWriter{}
	p := &Publisher{w: fw}
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), domain.Event{
		ID: "e-2", Type: domain.EventPostUpdated, OccurredAt: at,
		Payload: domain.PostUpdated{PostID: 42, Title: "t", Version: 3},
	})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)
	msg := fw.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Contains(t, string(msg.Value), `"version":3`)
	assert.Equal(t, "post.updated", string(msg.Headers[0].Value))
}

func TestPublishWrapsWriterError(t *testing.T) {
	p := &Publisher{w: &fakeWriter{err: errors.New("leader not available")}}
	err := p.Publish(context.Background(), domain.Event{Type: domain.EventPostCreated, Payload: domain.PostCreated{PostID: 1}})
	assert.ErrorContains(t, err, "leader not available")
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers(" a:9092, ,b:9092"))
}
