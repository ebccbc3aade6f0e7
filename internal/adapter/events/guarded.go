// Package events holds publisher decorators shared by the bus drivers.
package events

import (
	"context"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/pkg/circuitbreaker"
	"github.com/strogmv/blogadmin/internal/port"
)

// Guarded stops calling a failing bus until the breaker lets a probe through.
type Guarded struct {
	next    port.Publisher
	breaker *circuitbreaker.Breaker
}

func NewGuarded(next port.Publisher, breaker *circuitbreaker.Breaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

var _ port.Publisher = (*Guarded)(nil)

func (g *Guarded) Publish(ctx context.Context, ev domain.Event) error {
	return g.breaker.Do(func() error { return g.next.Publish(ctx, ev) })
}

func (g *Guarded) Close() error { return g.next.Close() }

// Noop discards events. Used when no bus is configured.
type Noop struct{}

func (Noop) Publish(context.Context, domain.Event) error { return nil }
func (Noop) Close() error                                { return nil }
