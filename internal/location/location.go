package location

import (
	"time"

	"github.com/google/uuid"
)

// Fix is a single reported location sample.
type Fix struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Time      time.Time `json:"time"`
}

// NewFix stamps a coordinate with a fresh ID and the current UTC time.
func NewFix(lat, lon float64) Fix {
	return Fix{
		ID:        uuid.NewString(),
		Latitude:  lat,
		Longitude: lon,
		Time:      time.Now().UTC(),
	}
}

// Priority trades location accuracy against power use.
type Priority string

const (
	PriorityHighAccuracy          Priority = "high"
	PriorityBalancedPowerAccuracy Priority = "balanced"
	PriorityLowPower              Priority = "low"
	PriorityPassive               Priority = "passive"
)

// ParsePriority accepts the names above; anything else is rejected.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(s); p {
	case PriorityHighAccuracy, PriorityBalancedPowerAccuracy, PriorityLowPower, PriorityPassive:
		return p, true
	default:
		return "", false
	}
}

// Request configures the cadence of continuous location updates.
type Request struct {
	Interval        time.Duration
	FastestInterval time.Duration
	Priority        Priority
}

// DefaultRequest asks for an update every second at balanced priority.
func DefaultRequest() Request {
	return Request{
		Interval:        time.Second,
		FastestInterval: time.Second,
		Priority:        PriorityBalancedPowerAccuracy,
	}
}

// EffectiveInterval is the delivery cadence honouring FastestInterval.
func (r Request) EffectiveInterval() time.Duration {
	iv := r.Interval
	if iv < r.FastestInterval {
		iv = r.FastestInterval
	}
	if iv <= 0 {
		iv = time.Second
	}
	return iv
}

// Callback receives one location result, which may carry several fixes.
type Callback func(fixes []Fix)

// Subscription is returned by RequestUpdates; Stop ends delivery.
type Subscription interface {
	Stop()
}

// Service is the platform's continuous location updates API.
type Service interface {
	RequestUpdates(req Request, cb Callback) (Subscription, error)
}
