// Package lock keeps bulk score recalculations from overlapping.
package lock

import (
	"context"
	"sync"
)

// Lock is held for the duration of one run.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LocalLock only guards a single process. Used when Redis is not configured.
type LocalLock struct {
	mu sync.Mutex
}

func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

func (l *LocalLock) Acquire(_ context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

func (l *LocalLock) Release(_ context.Context) error {
	l.mu.Unlock()
	return nil
}
