package presentation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/weather-card/internal/weather"
)

var (
	// ErrNotFound is returned while no weather data has been loaded.
	ErrNotFound = errors.New("no weather data loaded")
)

// Ordering decides which of several overlapping fetch results is kept.
type Ordering string

const (
	// LastCompletion applies every result as it completes.
	LastCompletion Ordering = "last-completion"
	// LatestIssued drops results issued before the currently applied one.
	LatestIssued Ordering = "latest-issued"
)

// ParseOrdering validates an Ordering name.
func ParseOrdering(s string) (Ordering, error) {
	switch o := Ordering(s); o {
	case LastCompletion, LatestIssued:
		return o, nil
	default:
		return "", fmt.Errorf("unknown ordering %q", s)
	}
}

// State is what the UI renders. Data is meaningful only when Loaded is set.
type State struct {
	Loaded    bool             `json:"loaded"`
	Data      weather.CardData `json:"data"`
	Sequence  uint64           `json:"sequence"`
	UpdatedAt time.Time        `json:"updatedAt"`
	LastError string           `json:"lastError,omitempty"`
}

// Store is a concurrency-safe observable holder for the card state.
// The update flow writes it; the UI reads or subscribes.
type Store struct {
	mu       sync.RWMutex
	state    State
	ordering Ordering

	// failedSeq is the sequence of the newest recorded failure.
	failedSeq uint64

	nextSub int
	subs    map[int]chan State
}

// NewStore creates a Store in the no-data state.
func NewStore(ordering Ordering) *Store {
	if ordering == "" {
		ordering = LastCompletion
	}
	return &Store{
		ordering: ordering,
		subs:     make(map[int]chan State),
	}
}

// Apply sets the loaded flag and card data together. It reports false when
// the ordering policy rejects the result as stale.
func (s *Store) Apply(seq uint64, card weather.CardData) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ordering == LatestIssued && s.state.Loaded && seq < s.state.Sequence {
		return false
	}

	next := State{
		Loaded:    true,
		Data:      card,
		Sequence:  seq,
		UpdatedAt: time.Now().UTC(),
	}
	// Under LatestIssued a failure issued after this result still stands.
	if s.ordering == LatestIssued && seq < s.failedSeq {
		next.LastError = s.state.LastError
	}
	s.state = next
	s.notifyLocked()
	return true
}

// Fail records a fetch failure without touching the loaded flag or data.
func (s *Store) Fail(seq uint64, err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ordering == LatestIssued && (seq < s.state.Sequence || seq < s.failedSeq) {
		return
	}
	if seq > s.failedSeq {
		s.failedSeq = seq
	}
	s.state.LastError = err.Error()
	s.notifyLocked()
}

// Current returns a copy of the state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Latest returns the card data once loaded.
func (s *Store) Latest() (weather.CardData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.state.Loaded {
		return weather.CardData{}, ErrNotFound
	}
	return s.state.Data, nil
}

// Subscribe returns a channel receiving every state change and a function
// that cancels the subscription. A subscriber that falls behind only sees
// the newest state.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
			continue
		default:
		}
		// Replace the pending state with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.state:
		default:
		}
	}
}
