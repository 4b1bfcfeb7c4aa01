package models

// CurrentConditions is the hero card derived from the first forecast sample
type CurrentConditions struct {
	Temp        int     `json:"temp"`
	Description string  `json:"description"`
	IconURL     string  `json:"iconUrl"`
	Timestamp   string  `json:"timestamp"`
	Humidity    int     `json:"humidity"`  // percentage
	Pressure    int     `json:"pressure"`  // in hPa
	WindSpeed   float64 `json:"windSpeed"` // 0 when the provider omitted wind
}

// HourlyItem is one row of the short-range forecast strip
type HourlyItem struct {
	Time    string `json:"time"` // HH:MM
	Temp    int    `json:"temp"`
	IconURL string `json:"iconUrl"`
}

// DailyItem is one row of the longer-range forecast list
type DailyItem struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Description string `json:"description"`
	Temp        int    `json:"temp"`
	IconURL     string `json:"iconUrl"`
}

// ViewModel is the presentation-ready projection of a ForecastResponse
type ViewModel struct {
	Location string             `json:"location,omitempty"`
	Current  *CurrentConditions `json:"current,omitempty"` // nil until data is available
	Hourly   []HourlyItem       `json:"hourly"`
	Daily    []DailyItem        `json:"daily"`
}

// HasData reports whether the view model carries any forecast
func (v ViewModel) HasData() bool {
	return v.Current != nil
}
