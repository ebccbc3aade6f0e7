package memory

import (
	"context"
	"sync"

	"github.com/strogmv/blogadmin/internal/port"
)

// TxManager serialises units of work. There is no rollback: callers only
// write after every check has passed.
type TxManager struct {
	mu sync.Mutex
}

func NewTxManager() *TxManager { return &TxManager{} }

var _ port.TxManager = (*TxManager)(nil)

func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}
