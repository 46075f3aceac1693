package core

import "sync"

// OpType defines whether a logical operation reads or writes persistent state.
type OpType int

const (
	// ReadOp only reads state; concurrent reads may proceed together.
	ReadOp OpType = iota

	// WriteOp mutates state. Multi-table operations are several non-atomic
	// substrate writes, so writes are exclusive against all other operations.
	WriteOp
)

// LockManager serializes logical core operations. The persistence substrate
// has no locking of its own, so every exposed operation must run inside one
// Execute call to keep cross-table state (derived counters, cascades) from
// being observed half-applied.
type LockManager struct {
	mu sync.RWMutex
}

func NewLockManager() *LockManager {
	return &LockManager{}
}

// Execute runs fn under the lock matching the operation type. The lock is
// released via defer so it is not leaked when fn panics.
func (lm *LockManager) Execute(op OpType, fn func() error) error {
	switch op {
	case ReadOp:
		lm.mu.RLock()
		defer lm.mu.RUnlock()
	case WriteOp:
		lm.mu.Lock()
		defer lm.mu.Unlock()
	}
	return fn()
}
