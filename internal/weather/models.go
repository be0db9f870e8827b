package weather

// WeatherSnapshot is the parsed result of a single current-weather call.
// Condition fields come from the first entry of the provider's weather list.
type WeatherSnapshot struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Icon              string  `json:"icon"`
	ConditionID       int     `json:"conditionId"`
	Main              string  `json:"main"`
	TemperatureKelvin float64 `json:"temperatureKelvin"`
}

// CardData is the presentation-ready record shown on the weather card.
// Time holds the temperature label (e.g. "28°C"), not a clock time.
type CardData struct {
	Time               string  `json:"time"`
	Name               string  `json:"name"`
	WeatherDescription string  `json:"weatherDescription"`
	Temperature        float64 `json:"temperature"`
}
