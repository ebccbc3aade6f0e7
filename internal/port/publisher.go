package port

import (
	"context"

	"github.com/strogmv/blogadmin/internal/domain"
)

// Publisher delivers committed post changes to the message bus.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}
