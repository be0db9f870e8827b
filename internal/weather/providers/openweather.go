package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-card/internal/weather"
)

// DefaultOpenWeatherBaseURL is the provider's public host.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"

const currentWeatherPath = "/data/2.5/weather"

// OpenWeatherClient implements weather.Client for the OpenWeatherMap
// current-weather endpoint. Temperatures are requested in Kelvin (the
// endpoint's default units).
type OpenWeatherClient struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient creates a client. An empty baseURL selects the public host.
func NewOpenWeatherClient(client *http.Client, baseURL string) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}

	return &OpenWeatherClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newBreaker(BreakerSettings{
			Name:        "openweather",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// openWeatherPayload is the consumed subset of the current-weather response.
type openWeatherPayload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

func (c *OpenWeatherClient) Current(ctx context.Context, lat, lon float64, apiKey string) (weather.WeatherSnapshot, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("appid", apiKey)

	u := fmt.Sprintf("%s%s?%s", c.baseURL, currentWeatherPath, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("%w: %v", weather.ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(ctx, c.client, c.circuit, req)
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}
	defer resp.Body.Close()

	var payload openWeatherPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("%w: %v", weather.ErrDecodeFailure, err)
	}

	return payload.snapshot()
}

func (p openWeatherPayload) snapshot() (weather.WeatherSnapshot, error) {
	if p.Main == nil || p.Main.Temp == nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("%w: missing main.temp", weather.ErrDecodeFailure)
	}
	if len(p.Weather) == 0 {
		return weather.WeatherSnapshot{}, fmt.Errorf("%w: empty weather list", weather.ErrDecodeFailure)
	}

	w := p.Weather[0]
	return weather.WeatherSnapshot{
		Name:              p.Name,
		Description:       w.Description,
		Icon:              w.Icon,
		ConditionID:       w.ID,
		Main:              w.Main,
		TemperatureKelvin: *p.Main.Temp,
	}, nil
}
