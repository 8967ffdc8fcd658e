package game

import (
	"context"
	"sync"
)

// outbox is an unbounded FIFO in front of a channel. Producers never block;
// a single pump goroutine forwards items in order and closes the channel
// when it stops.
type outbox[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	signal chan struct{}
	out    chan T
}

func newOutbox[T any]() *outbox[T] {
	return &outbox[T]{
		signal: make(chan struct{}, 1),
		out:    make(chan T),
	}
}

func (b *outbox[T]) push(v T) {
	b.mu.Lock()
	b.items = append(b.items, v)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// close lets run return once the queue is drained.
func (b *outbox[T]) close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *outbox[T]) pop() (v T, ok, closed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		return v, false, b.closed
	}
	var zero T
	v = b.items[0]
	b.items[0] = zero
	b.items = b.items[1:]
	return v, true, false
}

// run pumps items until ctx is done, or until close has been called and the
// queue is empty. Items still queued when ctx is done are dropped.
func (b *outbox[T]) run(ctx context.Context) error {
	defer close(b.out)

	for {
		v, ok, closed := b.pop()
		if closed {
			return nil
		}
		if !ok {
			select {
			case <-b.signal:
				continue
			case <-ctx.Done():
				return nil
			}
		}

		select {
		case b.out <- v:
		case <-ctx.Done():
			return nil
		}
	}
}
