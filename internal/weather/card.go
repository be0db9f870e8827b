package weather

import (
	"fmt"
	"math"
)

// KelvinOffset is subtracted from the provider's Kelvin reading.
// It is 273, not 273.15; cards show the same values as the watch app.
const KelvinOffset = 273

// RoundHalfUp rounds to the nearest integer with .5 going towards +Inf,
// so 27.5 becomes 28 and -27.5 becomes -27.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// CelsiusFromKelvin converts a Kelvin reading to whole degrees Celsius.
func CelsiusFromKelvin(k float64) float64 {
	return RoundHalfUp(k - KelvinOffset)
}

// TemperatureLabel formats a whole-degree temperature for the card.
func TemperatureLabel(celsius float64) string {
	return fmt.Sprintf("%d°C", int64(celsius))
}

// BuildCard derives the card record from a snapshot.
func BuildCard(s WeatherSnapshot) CardData {
	t := CelsiusFromKelvin(s.TemperatureKelvin)
	return CardData{
		Time:               TemperatureLabel(t),
		Name:               s.Name,
		WeatherDescription: s.Description,
		Temperature:        t,
	}
}
