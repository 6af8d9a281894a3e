// Package lock provides the mutual exclusion used to serialize postings on
// one pen and commits on one bank statement entry.
package lock

import (
	"context"
	"sync"

	"github.com/feedlot/backend/internal/domain/shared"
)

// KeyedLocker is a process-local lock per key. Keys nobody holds or waits
// for are released from the table.
type KeyedLocker struct {
	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker creates an empty KeyedLocker
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{keys: make(map[string]*keyLock)}
}

// Lock blocks until key is held or ctx is done. The returned unlock is
// safe to call more than once.
func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.keys[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.keys[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.ch
				l.release(key, kl)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}
}

func (l *KeyedLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.keys, key)
	}
}

// size reports the tracked keys
func (l *KeyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

var _ shared.Locker = (*KeyedLocker)(nil)
