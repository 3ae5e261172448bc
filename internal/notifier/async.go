package notifier

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrClosed    = errors.New("notifier closed")
)

// Async runs a slow notifier (e.g. Discord) on a single background worker
// with a bounded queue. Notify never blocks.
type Async struct {
	next   Notifier
	logger *zap.Logger
	queue  chan Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsync(next Notifier, size int, logger *zap.Logger) *Async {
	if size <= 0 {
		size = 64
	}
	a := &Async{
		next:   next,
		logger: logger,
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for ev := range a.queue {
		if err := a.next.Notify(context.Background(), ev); err != nil {
			a.logger.Warn("async notification failed",
				zap.String("kind", string(ev.Kind)),
				zap.String("user_id", ev.UserID),
				zap.Error(err))
		}
	}
}

func (a *Async) Notify(_ context.Context, ev Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events, delivers what is queued and waits for the
// worker to exit or ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
