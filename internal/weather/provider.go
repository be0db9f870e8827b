package weather

import (
	"context"
)

// Client abstracts the current-weather REST call.
type Client interface {
	Current(ctx context.Context, lat, lon float64, apiKey string) (WeatherSnapshot, error)
}

// Publisher is the contract the presentation state must satisfy.
// seq is the fetch's issue order; implementations decide whether
// an out-of-order result is applied.
type Publisher interface {
	Apply(seq uint64, card CardData) bool
	Fail(seq uint64, err error)
}
