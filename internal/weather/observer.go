package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/i474232898/weather-card/internal/location"
)

// ErrorPolicy decides what happens to a failed fetch.
type ErrorPolicy int

const (
	// DropErrors logs the failure and leaves the presentation state alone.
	DropErrors ErrorPolicy = iota
	// SurfaceErrors additionally reports the failure to the publisher.
	SurfaceErrors
)

// Observer turns location fixes into published weather cards.
// Each fix gets its own fetch; fetches are neither queued nor cancelled.
type Observer struct {
	client    Client
	apiKey    string
	publisher Publisher
	errPolicy ErrorPolicy

	seq atomic.Uint64

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewObserver creates an Observer.
func NewObserver(client Client, apiKey string, publisher Publisher, errPolicy ErrorPolicy) *Observer {
	return &Observer{
		client:    client,
		apiKey:    apiKey,
		publisher: publisher,
		errPolicy: errPolicy,
	}
}

// Register subscribes to location updates. Without coarse or fine permission
// it returns ErrPermissionDenied and does not touch svc.
func (o *Observer) Register(svc location.Service, perms location.Permissions, req location.Request) (location.Subscription, error) {
	if !location.AnyGranted(perms) {
		log.Println("INFO: observer: no location permission granted; not subscribing")
		return nil, ErrPermissionDenied
	}

	sub, err := svc.RequestUpdates(req, o.HandleFixes)
	if err != nil {
		return nil, fmt.Errorf("request location updates: %w", err)
	}
	log.Printf("INFO: observer: subscribed to location updates every %s (%s)", req.EffectiveInterval(), req.Priority)
	return sub, nil
}

// HandleFixes starts one asynchronous fetch per fix and returns immediately.
// Fixes delivered after Close are dropped.
func (o *Observer) HandleFixes(fixes []location.Fix) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		log.Printf("DEBUG: observer: closed; dropping %d fix(es)", len(fixes))
		return
	}
	for _, fix := range fixes {
		seq := o.seq.Add(1)
		o.wg.Add(1)
		go o.update(seq, fix)
	}
}

// Wait blocks until every fetch started so far has finished. Fixes may
// still arrive while waiting; use Close to drain for shutdown.
func (o *Observer) Wait() {
	o.wg.Wait()
}

// Close stops accepting fixes and waits for in-flight fetches.
func (o *Observer) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.wg.Wait()
}

// Fetch performs the fetch step for one fix and derives its card.
func (o *Observer) Fetch(ctx context.Context, fix location.Fix) (CardData, error) {
	snapshot, err := o.client.Current(ctx, fix.Latitude, fix.Longitude, o.apiKey)
	if err != nil {
		return CardData{}, err
	}
	return BuildCard(snapshot), nil
}

func (o *Observer) update(seq uint64, fix location.Fix) {
	defer o.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			o.fail(seq, fix, fmt.Errorf("fetch panicked: %v", r))
		}
	}()

	card, err := o.Fetch(context.Background(), fix)
	if err != nil {
		o.fail(seq, fix, err)
		return
	}

	if !o.publisher.Apply(seq, card) {
		log.Printf("DEBUG: observer: discarded stale result #%d for fix %s", seq, fix.ID)
	}
}

func (o *Observer) fail(seq uint64, fix location.Fix, err error) {
	log.Printf("ERROR: observer: fetch #%d failed for fix %s (%.4f,%.4f): %v", seq, fix.ID, fix.Latitude, fix.Longitude, err)
	if o.errPolicy == SurfaceErrors {
		o.publisher.Fail(seq, err)
	}
}
