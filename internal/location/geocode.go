package location

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"
)

var errGeocoderKey = errors.New("geocoder api key is not configured")

// Address identifies a place to resolve into coordinates.
type Address struct {
	City    string
	Country string
}

// geocodeFunc is swapped in tests.
var geocodeFunc = geocoder.Geocoding

// Geocode resolves an address into a fix using the Google geocoding API.
func Geocode(apiKey string, addr Address) (Fix, error) {
	if apiKey == "" {
		return Fix{}, errGeocoderKey
	}
	if strings.TrimSpace(addr.City) == "" {
		return Fix{}, fmt.Errorf("geocode: city is required")
	}

	geocoder.ApiKey = apiKey
	loc, err := geocodeFunc(geocoder.Address{
		City:    addr.City,
		Country: addr.Country,
	})
	if err != nil {
		return Fix{}, fmt.Errorf("geocode %s,%s: %w", addr.City, addr.Country, err)
	}

	return NewFix(loc.Latitude, loc.Longitude), nil
}
