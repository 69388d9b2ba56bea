package reactive

import "sync"

// Relay holds a current value and replays it to every new subscriber.
// Accept always re-emits, even when the value is unchanged.
type Relay[T any] struct {
	mu    sync.Mutex
	value T
	h     hub[T]
}

// NewRelay returns a relay seeded with initial.
func NewRelay[T any](initial T) *Relay[T] {
	return &Relay[T]{value: initial}
}

// Value returns the current value.
func (r *Relay[T]) Value() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// Accept stores v and pushes it to subscribers.
func (r *Relay[T]) Accept(v T) {
	r.mu.Lock()
	r.value = v
	handlers := r.h.snapshot()
	r.mu.Unlock()
	for _, hd := range handlers {
		hd.fn(v)
	}
}

// Subscribe registers fn and immediately calls it with the current value.
func (r *Relay[T]) Subscribe(fn func(T)) Subscription {
	r.mu.Lock()
	sub, ok := r.h.add(fn)
	v := r.value
	r.mu.Unlock()
	if ok {
		fn(v)
	}
	return sub
}

// Close drops every subscriber.
func (r *Relay[T]) Close() {
	r.h.close()
}

// Pulse is a relay used purely as a re-execution trigger.
type Pulse = Relay[struct{}]

// NewPulse returns a trigger holding its initial pulse.
func NewPulse() *Pulse {
	return NewRelay(struct{}{})
}

// Stream is a read-only, hot sequence of values. Once a value has been
// published it is replayed to late subscribers.
type Stream[T any] struct {
	mu     sync.Mutex
	latest T
	has    bool
	h      hub[T]
}

func newStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// Subscribe registers fn, replaying the latest value if one was published.
// Subscribing to a nil stream is a valid no-op.
func (s *Stream[T]) Subscribe(fn func(T)) Subscription {
	if s == nil {
		return noopSubscription{}
	}
	s.mu.Lock()
	sub, ok := s.h.add(fn)
	v, has := s.latest, s.has
	s.mu.Unlock()
	if ok && has {
		fn(v)
	}
	return sub
}

// Latest returns the most recently published value.
func (s *Stream[T]) Latest() (T, bool) {
	if s == nil {
		var zero T
		return zero, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.has
}

func (s *Stream[T]) publish(v T) {
	s.mu.Lock()
	s.latest = v
	s.has = true
	handlers := s.h.snapshot()
	s.mu.Unlock()
	for _, hd := range handlers {
		hd.fn(v)
	}
}

func (s *Stream[T]) close() {
	s.h.close()
}

// Map derives a stream by applying fn to every value of src.
func Map[In, Out any](bag *Bag, src Source[In], fn func(In) Out) *Stream[Out] {
	out := newStream[Out]()
	bag.Add(src.Subscribe(func(v In) { out.publish(fn(v)) }))
	bag.AddFunc(out.close)
	return out
}

// MapEach derives a stream of lists by mapping every element of each list,
// preserving order and length.
func MapEach[In, Out any](bag *Bag, src Source[[]In], fn func(In) Out) *Stream[[]Out] {
	return Map(bag, src, func(items []In) []Out {
		out := make([]Out, len(items))
		for i, it := range items {
			out[i] = fn(it)
		}
		return out
	})
}
