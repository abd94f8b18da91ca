// Package eventbus fans dispatch-loop events out to in-process observers
// such as the MQTT notifier.
package eventbus

import "sync"

// Bus delivers events of type T to any number of subscribers. Publishing
// never blocks; a subscriber that falls behind its buffer misses events.
type Bus[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
	closed bool
}

func New[T any]() *Bus[T] {
	return &Bus[T]{subs: map[int]chan T{}}
}

// Subscription is one registered observer. Its channel C is closed on Cancel
// or when the bus shuts down.
type Subscription[T any] struct {
	C <-chan T

	bus *Bus[T]
	id  int
}

// Cancel removes the subscription and closes its channel. Safe to call more
// than once and after the bus has closed.
func (s *Subscription[T]) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	ch, ok := s.bus.subs[s.id]
	if !ok {
		return
	}
	delete(s.bus.subs, s.id)
	close(ch)
}

// Subscribe registers an observer with the given channel buffer.
func (b *Bus[T]) Subscribe(buffer int) *Subscription[T] {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan T, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return &Subscription[T]{C: ch, bus: b, id: -1}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	return &Subscription[T]{C: ch, bus: b, id: id}
}

// Publish sends the event to every live subscriber without blocking.
func (b *Bus[T]) Publish(e T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = map[int]chan T{}
}
