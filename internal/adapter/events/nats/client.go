package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	natspkg "github.com/nats-io/nats.go"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/port"
)

// SubjectPrefix is prepended to the event type, e.g. blogadmin.post.created.
const SubjectPrefix = "blogadmin."

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

type Publisher struct {
	nc conn
}

func Connect(url string) (*Publisher, error) {
	nc, err := natspkg.Connect(url,
		natspkg.Name("blogadmin"),
		natspkg.MaxReconnects(-1),
		natspkg.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{nc: nc}, nil
}

func newPublisher(c conn) *Publisher { return &Publisher{nc: c} }

var _ port.Publisher = (*Publisher)(nil)

func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.nc.Publish(Subject(ev.Type), data); err != nil {
		return fmt.Errorf("nats publish %s: %w", ev.Type, err)
	}
	return p.nc.FlushWithContext(ctx)
}

func (p *Publisher) Close() error {
	return p.nc.Drain()
}
