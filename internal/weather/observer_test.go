package weather_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-card/internal/location"
	"github.com/i474232898/weather-card/internal/presentation"
	"github.com/i474232898/weather-card/internal/weather"
)

// fakeClient answers by latitude. A gate, when present, blocks the call
// until it is closed.
type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	answers map[float64]weather.WeatherSnapshot
	errs    map[float64]error
	gates   map[float64]chan struct{}
	panics  bool
}

func (f *fakeClient) Current(ctx context.Context, lat, lon float64, apiKey string) (weather.WeatherSnapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, apiKey)
	gate := f.gates[lat]
	f.mu.Unlock()

	if f.panics {
		var s []weather.WeatherSnapshot
		return s[0], nil
	}
	if gate != nil {
		<-gate
	}
	if err := f.errs[lat]; err != nil {
		return weather.WeatherSnapshot{}, err
	}
	return f.answers[lat], nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// countingService records subscriptions without delivering anything.
type countingService struct {
	requests int
}

func (c *countingService) RequestUpdates(req location.Request, cb location.Callback) (location.Subscription, error) {
	c.requests++
	return nil, nil
}

func snapshot(name string, kelvin float64) weather.WeatherSnapshot {
	return weather.WeatherSnapshot{Name: name, Description: "clear sky", TemperatureKelvin: kelvin}
}

func TestRegisterWithoutPermission(t *testing.T) {
	store := presentation.NewStore(presentation.LastCompletion)
	obs := weather.NewObserver(&fakeClient{}, "key", store, weather.DropErrors)
	svc := &countingService{}

	sub, err := obs.Register(svc, location.StaticPermissions{}, location.DefaultRequest())
	if !errors.Is(err, weather.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if sub != nil {
		t.Fatalf("expected no subscription")
	}
	if svc.requests != 0 {
		t.Fatalf("expected no subscription request, got %d", svc.requests)
	}
	if store.Current().Loaded {
		t.Fatalf("state must stay without data")
	}
}

func TestRegisterWithCoarsePermissionOnly(t *testing.T) {
	store := presentation.NewStore(presentation.LastCompletion)
	obs := weather.NewObserver(&fakeClient{}, "key", store, weather.DropErrors)
	svc := &countingService{}

	if _, err := obs.Register(svc, location.StaticPermissions{location.Coarse: true}, location.DefaultRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.requests != 1 {
		t.Fatalf("expected one subscription request, got %d", svc.requests)
	}
}

func TestFixPublishesCard(t *testing.T) {
	client := &fakeClient{answers: map[float64]weather.WeatherSnapshot{
		10: snapshot("Testville", 300.5),
	}}
	store := presentation.NewStore(presentation.LastCompletion)
	obs := weather.NewObserver(client, "secret", store, weather.DropErrors)
	feed := location.NewFeed()

	if _, err := obs.Register(feed, location.StaticPermissions{location.Fine: true}, location.DefaultRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	feed.Push(location.NewFix(10, 20))
	obs.Wait()

	st := store.Current()
	want := weather.CardData{Name: "Testville", Time: "28°C", WeatherDescription: "clear sky", Temperature: 28}
	if !st.Loaded || st.Data != want {
		t.Fatalf("unexpected state: %+v", st)
	}
	if client.calls[0] != "secret" {
		t.Fatalf("expected api key to be passed, got %q", client.calls[0])
	}
}

func TestEveryFixInBatchIsFetched(t *testing.T) {
	client := &fakeClient{answers: map[float64]weather.WeatherSnapshot{
		1: snapshot("a", 280),
		2: snapshot("b", 281),
		3: snapshot("c", 282),
	}}
	store := presentation.NewStore(presentation.LastCompletion)
	obs := weather.NewObserver(client, "k", store, weather.DropErrors)

	obs.HandleFixes([]location.Fix{location.NewFix(1, 0), location.NewFix(2, 0), location.NewFix(3, 0)})
	obs.Wait()

	if client.callCount() != 3 {
		t.Fatalf("expected 3 fetches, got %d", client.callCount())
	}
}

func overlapping(t *testing.T, ordering presentation.Ordering) presentation.State {
	t.Helper()

	gate1, gate2 := make(chan struct{}), make(chan struct{})
	client := &fakeClient{
		answers: map[float64]weather.WeatherSnapshot{
			1: snapshot("F1", 280),
			2: snapshot("F2", 290),
		},
		gates: map[float64]chan struct{}{1: gate1, 2: gate2},
	}
	store := presentation.NewStore(ordering)
	obs := weather.NewObserver(client, "k", store, weather.DropErrors)
	updates, cancel := store.Subscribe()
	defer cancel()

	obs.HandleFixes([]location.Fix{location.NewFix(1, 0)})
	obs.HandleFixes([]location.Fix{location.NewFix(2, 0)})

	close(gate2)
	select {
	case st := <-updates:
		if st.Data.Name != "F2" {
			t.Fatalf("expected F2 to complete first, got %+v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for F2")
	}

	close(gate1)
	obs.Wait()
	return store.Current()
}

func TestOverlappingFetchesLastCompletionWins(t *testing.T) {
	st := overlapping(t, presentation.LastCompletion)
	if st.Data.Name != "F1" {
		t.Fatalf("expected last completed fetch (F1) to win, got %q", st.Data.Name)
	}
}

func TestOverlappingFetchesLatestIssuedWins(t *testing.T) {
	st := overlapping(t, presentation.LatestIssued)
	if st.Data.Name != "F2" {
		t.Fatalf("expected latest issued fetch (F2) to win, got %q", st.Data.Name)
	}
}

func TestFailureLeavesStateUnchanged(t *testing.T) {
	client := &fakeClient{
		answers: map[float64]weather.WeatherSnapshot{1: snapshot("ok", 290)},
		errs:    map[float64]error{2: weather.ErrDecodeFailure},
	}
	store := presentation.NewStore(presentation.LastCompletion)
	obs := weather.NewObserver(client, "k", store, weather.DropErrors)

	obs.HandleFixes([]location.Fix{location.NewFix(2, 0)})
	obs.Wait()
	if store.Current().Loaded {
		t.Fatalf("failed fetch must not load data")
	}

	obs.HandleFixes([]location.Fix{location.NewFix(1, 0)})
	obs.Wait()
	before := store.Current()

	obs.HandleFixes([]location.Fix{location.NewFix(2, 0)})
	obs.Wait()
	after := store.Current()
	if after != before {
		t.Fatalf("failed fetch changed state: %+v -> %+v", before, after)
	}
}

func TestSurfaceErrorsRecordsLastError(t *testing.T) {
	client := &fakeClient{errs: map[float64]error{1: weather.ErrNetworkFailure}}
	store := presentation.NewStore(presentation.LastCompletion)
	obs := weather.NewObserver(client, "k", store, weather.SurfaceErrors)

	obs.HandleFixes([]location.Fix{location.NewFix(1, 0)})
	obs.Wait()

	st := store.Current()
	if st.Loaded || st.LastError != weather.ErrNetworkFailure.Error() {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestPanickingFetchDoesNotCrash(t *testing.T) {
	client := &fakeClient{panics: true}
	store := presentation.NewStore(presentation.LastCompletion)
	obs := weather.NewObserver(client, "k", store, weather.SurfaceErrors)

	obs.HandleFixes([]location.Fix{location.NewFix(1, 0)})
	obs.Wait()

	st := store.Current()
	if st.Loaded || st.LastError == "" {
		t.Fatalf("expected recorded failure without data, got %+v", st)
	}
}

func TestRepeatedFixIsIdempotent(t *testing.T) {
	client := &fakeClient{answers: map[float64]weather.WeatherSnapshot{5: snapshot("same", 295.2)}}
	store := presentation.NewStore(presentation.LastCompletion)
	obs := weather.NewObserver(client, "k", store, weather.DropErrors)

	fix := location.NewFix(5, 5)
	obs.HandleFixes([]location.Fix{fix})
	obs.Wait()
	first := store.Current()

	obs.HandleFixes([]location.Fix{fix})
	obs.Wait()
	second := store.Current()

	if !first.Loaded || !second.Loaded || first.Data != second.Data {
		t.Fatalf("expected equal cards, got %+v and %+v", first.Data, second.Data)
	}
}

// slowClient takes longer than the fix cadence to answer.
type slowClient struct {
	delay time.Duration
	calls atomic.Int32
}

func (s *slowClient) Current(ctx context.Context, lat, lon float64, apiKey string) (weather.WeatherSnapshot, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return snapshot("slow", 290), nil
}

func TestCloseDrainsWhileFixesKeepArriving(t *testing.T) {
	client := &slowClient{delay: 50 * time.Millisecond}
	store := presentation.NewStore(presentation.LastCompletion)
	obs := weather.NewObserver(client, "k", store, weather.DropErrors)
	feed := location.NewFeed()

	sub, err := obs.Register(feed, location.StaticPermissions{location.Fine: true}, location.DefaultRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stopSource := make(chan struct{})
	sourceDone := make(chan struct{})
	go func() {
		defer close(sourceDone)
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopSource:
				return
			case <-ticker.C:
				feed.Push(location.NewFix(1, 2))
			}
		}
	}()
	time.Sleep(30 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		obs.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not return while fixes kept arriving")
	}

	close(stopSource)
	<-sourceDone
	sub.Stop()

	before := client.calls.Load()
	obs.HandleFixes([]location.Fix{location.NewFix(3, 4)})
	obs.Wait()
	if client.calls.Load() != before {
		t.Fatalf("fix handled after Close")
	}
	if !store.Current().Loaded {
		t.Fatalf("in-flight fetches should have completed before Close returned")
	}
}

func TestFailureIsLoggedAsError(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	client := &fakeClient{errs: map[float64]error{7: weather.ErrDecodeFailure}}
	obs := weather.NewObserver(client, "k", presentation.NewStore(presentation.LastCompletion), weather.DropErrors)

	obs.HandleFixes([]location.Fix{location.NewFix(7, 0)})
	obs.Wait()

	out := buf.String()
	if !strings.Contains(out, "ERROR: observer: fetch #1 failed") || !strings.Contains(out, weather.ErrDecodeFailure.Error()) {
		t.Fatalf("unexpected log output %q", out)
	}
}
