// Package broadcast provides a generic, non-replaying multi-subscriber fan-
// out primitive. It backs the façade's six per-stream broadcasters:
// long-lived, no replay for late subscribers, emit only non-empty
// sequences.
package broadcast

import "sync"

// Broadcaster fans out values of type T to any number of subscribers.
// Subscribers that are not actively receiving do not block emission: each
// subscriber has its own buffered channel, and a slow subscriber simply
// misses values once its buffer is full, trading delivery guarantees for
// the dispatcher never stalling on a forgotten listener.
type Broadcaster[T any] struct {
	mu   sync.Mutex
	subs map[int]chan T
	next int
}

// New returns an empty Broadcaster.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function. The channel is buffered so a burst of emissions
// does not require the subscriber to be actively ranging over it.
func (b *Broadcaster[T]) Subscribe(buffer int) (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan T, buffer)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, unsubscribe
}

// Emit delivers v to every current subscriber. A subscriber whose buffer is
// full drops the value rather than blocking the emitter.
func (b *Broadcaster[T]) Emit(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Close closes every subscriber channel and clears the subscriber set. No
// further Subscribe call after Close will receive emissions from before it.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
