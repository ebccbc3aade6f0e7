package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strogmv/blogadmin/internal/domain"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
	drained  bool
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subj)
	c.payloads = append(c.payloads, data)
	return nil
}

func (c *fakeConn) FlushWithContext(context.Context) error { return nil }

func (c *fakeConn) Drain() error {
	c.drained = true
	return nil
}

func TestPublishEncodesEnvelope(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc)

	ev := domain.Event{
		ID:         "e-1",
		Type:       domain.EventPostDeleted,
		OccurredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Payload:    domain.PostDeleted{PostID: 7},
	}
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, fc.subjects, 1)
	assert.Equal(t, "blogadmin.post.deleted", fc.subjects[0])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(fc.payloads[0], &decoded))
	assert.Equal(t, "e-1", decoded["id"])
	assert.Equal(t, "post.deleted", decoded["type"])
	assert.Equal(t, map[string]any{"postId": float64(7)}, decoded["payload"])

	require.NoError(t, p.Close())
	assert.True(t, fc.drained)
}

func TestPublishError(t *testing.T) {
	p := newPublisher(&fakeConn{err: errors.New("nats: connection closed")})
	err := p.Publish(context.Background(), domain.Event{Type: domain.EventPostCreated})
	assert.ErrorContains(t, err, "post.created")
}
