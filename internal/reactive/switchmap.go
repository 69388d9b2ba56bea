package reactive

import (
	"context"
	"errors"
	"sync"
)

// Query produces a result for one trigger value.
type Query[In, Out any] func(ctx context.Context, in In) (Out, error)

// Executor runs a query cycle. The default starts a goroutine per cycle.
type Executor func(run func())

// Go runs each cycle on its own goroutine.
func Go(run func()) { go run() }

// Inline runs each cycle on the emitting goroutine.
func Inline(run func()) { run() }

type options struct {
	exec    Executor
	onError func(error)
}

// Option configures SwitchMap.
type Option func(*options)

// WithExecutor overrides how query cycles are scheduled.
func WithExecutor(exec Executor) Option {
	return func(o *options) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithErrorSink receives query errors. Errors caused by supersession are not reported.
func WithErrorSink(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// switcher tracks the generation of the latest trigger so a superseded
// cycle can neither publish nor report.
type switcher struct {
	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	closed   bool
	pending  []delivery
	draining bool
}

type delivery struct {
	gen uint64
	run func()
}

func (s *switcher) next(parent context.Context) (context.Context, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, 0, false
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	s.cancel = cancel
	return ctx, s.gen, true
}

// finish queues deliver if gen is still current. Deliveries run one at a time
// in queue order without the lock held, so a subscriber may re-trigger the
// same source; whatever it queues runs after the current delivery returns.
// An entry superseded while queued is dropped.
func (s *switcher) finish(gen uint64, deliver func()) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, delivery{gen: gen, run: deliver})
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for {
		if s.closed || len(s.pending) == 0 {
			s.pending = nil
			s.draining = false
			s.mu.Unlock()
			return
		}
		d := s.pending[0]
		s.pending = s.pending[1:]
		current := d.gen == s.gen
		s.mu.Unlock()
		if current {
			d.run()
		}
		s.mu.Lock()
	}
}

func (s *switcher) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SwitchMap issues exactly one query per emission of src and publishes the
// result of the latest emission only. A new emission cancels the context of
// the previous in-flight query and discards its result. Everything is
// released when bag closes.
func SwitchMap[In, Out any](ctx context.Context, bag *Bag, src Source[In], q Query[In, Out], opts ...Option) *Stream[Out] {
	o := options{exec: Go}
	for _, opt := range opts {
		opt(&o)
	}

	out := newStream[Out]()
	sw := &switcher{}

	sub := src.Subscribe(func(in In) {
		qctx, gen, ok := sw.next(ctx)
		if !ok {
			return
		}
		o.exec(func() {
			res, err := q(qctx, in)
			if err != nil {
				if errors.Is(err, context.Canceled) && qctx.Err() != nil {
					return
				}
				sw.finish(gen, func() {
					if o.onError != nil {
						o.onError(err)
					}
				})
				return
			}
			sw.finish(gen, func() { out.publish(res) })
		})
	})

	bag.Add(sub)
	bag.AddFunc(sw.stop)
	bag.AddFunc(out.close)
	return out
}
