package location

import (
	"sync"
)

// Feed is an in-process Service. Fixes pushed into it are delivered
// synchronously to every active subscriber.
type Feed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Callback
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]Callback)}
}

// RequestUpdates registers cb for every subsequent Push. The cadence in
// req is up to whoever pushes.
func (f *Feed) RequestUpdates(req Request, cb Callback) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.subs[id] = cb
	return &feedSubscription{feed: f, id: id}, nil
}

// Push delivers one location result to all subscribers.
func (f *Feed) Push(fixes ...Fix) {
	if len(fixes) == 0 {
		return
	}

	f.mu.RLock()
	cbs := make([]Callback, 0, len(f.subs))
	for _, cb := range f.subs {
		cbs = append(cbs, cb)
	}
	f.mu.RUnlock()

	for _, cb := range cbs {
		batch := make([]Fix, len(fixes))
		copy(batch, fixes)
		cb(batch)
	}
}

// Subscribers returns the number of active subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

type feedSubscription struct {
	feed *Feed
	id   int
	once sync.Once
}

func (s *feedSubscription) Stop() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s.id)
		s.feed.mu.Unlock()
	})
}
