package reactive

import "sync"

// Bag collects subscriptions and cleanup funcs and releases them together,
// newest first.
type Bag struct {
	mu       sync.Mutex
	releases []func()
	closed   bool
}

// Add registers sub for release. Adding to a closed bag releases sub at once.
func (b *Bag) Add(sub Subscription) {
	if sub == nil {
		return
	}
	b.AddFunc(sub.Unsubscribe)
}

// AddFunc registers fn to run on Close.
func (b *Bag) AddFunc(fn func()) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		fn()
		return
	}
	b.releases = append(b.releases, fn)
	b.mu.Unlock()
}

// Close releases everything once. Later calls are no-ops.
func (b *Bag) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	releases := b.releases
	b.releases = nil
	b.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}

// Len reports how many releases are pending.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.releases)
}
