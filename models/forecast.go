package models

import (
	"time"
)

// TimestampLayout is the layout of the provider's dt_txt field
const TimestampLayout = "2006-01-02 15:04:05"

// Condition is one weather condition attached to a forecast sample
type Condition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"` // provider icon code, e.g. "04d"
}

// Wind holds the optional wind block of a forecast sample
type Wind struct {
	Speed float64 `json:"speed"` // in m/s for metric units
	Deg   int     `json:"deg"`   // wind direction in degrees
}

// MainReadings holds the temperature, humidity and pressure of a forecast sample
type MainReadings struct {
	Temp     float64 `json:"temp"`     // in the requested unit system
	Humidity int     `json:"humidity"` // percentage
	Pressure int     `json:"pressure"` // in hPa
}

// ForecastEntry represents a single forecast sample at a specific time
type ForecastEntry struct {
	DtTxt   string       `json:"dt_txt"`
	Main    MainReadings `json:"main"`
	Weather []Condition  `json:"weather"`
	Wind    *Wind        `json:"wind,omitempty"`

	// Time is dt_txt parsed with TimestampLayout during ingestion
	Time time.Time `json:"-"`
}

// FirstCondition returns the first weather condition, or the zero value if there is none
func (e ForecastEntry) FirstCondition() Condition {
	if len(e.Weather) == 0 {
		return Condition{}
	}
	return e.Weather[0]
}

// WindSpeed returns the wind speed, treating a missing wind block as calm
func (e ForecastEntry) WindSpeed() float64 {
	if e.Wind == nil {
		return 0
	}
	return e.Wind.Speed
}

// ForecastResponse is one complete forecast as returned by a fetch.
// List keeps the provider's chronological order.
type ForecastResponse struct {
	City    string          `json:"city"`    // requested city
	List    []ForecastEntry `json:"list"`    // forecast samples in provider order
	Fetched time.Time       `json:"fetched"` // when this response was received
}
