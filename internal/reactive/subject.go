package reactive

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription releases a handler registered with Subscribe.
type Subscription interface {
	Unsubscribe()
}

// Source is anything a handler can be attached to.
type Source[T any] interface {
	Subscribe(fn func(T)) Subscription
}

type subscription struct {
	once sync.Once
	fn   func()
}

func (s *subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.fn)
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

type handler[T any] struct {
	id uuid.UUID
	fn func(T)
}

// hub keeps handlers in subscription order.
type hub[T any] struct {
	mu       sync.Mutex
	handlers []handler[T]
	closed   bool
}

func (h *hub[T]) add(fn func(T)) (Subscription, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return noopSubscription{}, false
	}
	id := uuid.New()
	h.handlers = append(h.handlers, handler[T]{id: id, fn: fn})
	return &subscription{fn: func() { h.remove(id) }}, true
}

func (h *hub[T]) remove(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, hd := range h.handlers {
		if hd.id == id {
			h.handlers = append(h.handlers[:i:i], h.handlers[i+1:]...)
			return
		}
	}
}

func (h *hub[T]) snapshot() []handler[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	out := make([]handler[T], len(h.handlers))
	copy(out, h.handlers)
	return out
}

func (h *hub[T]) emit(v T) {
	for _, hd := range h.snapshot() {
		hd.fn(v)
	}
}

func (h *hub[T]) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.handlers = nil
}

func (h *hub[T]) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers)
}

// Subject is a fire-and-forget event channel. It holds no value; late
// subscribers see only later emissions.
type Subject[T any] struct {
	h hub[T]
}

// NewSubject returns an open subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe registers fn for future emissions.
func (s *Subject[T]) Subscribe(fn func(T)) Subscription {
	if s == nil {
		return noopSubscription{}
	}
	sub, _ := s.h.add(fn)
	return sub
}

// Emit delivers v to every current subscriber. Emitting on a closed subject is a no-op.
func (s *Subject[T]) Emit(v T) {
	if s == nil {
		return
	}
	s.h.emit(v)
}

// Close drops every subscriber and ignores later emissions.
func (s *Subject[T]) Close() {
	if s == nil {
		return
	}
	s.h.close()
}

// Subscribers reports how many handlers are attached.
func (s *Subject[T]) Subscribers() int {
	if s == nil {
		return 0
	}
	return s.h.len()
}

// Signal is a payload-less subject.
type Signal = Subject[struct{}]

// NewSignal returns an open signal.
func NewSignal() *Signal {
	return NewSubject[struct{}]()
}

// Fire emits on a payload-less subject.
func Fire(s *Signal) {
	s.Emit(struct{}{})
}
