// Package projector turns a fetched forecast into the values a forecast screen displays.
package projector

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"weather-viewer/models"
)

const (
	// HourlyLimit is the number of samples in the hourly strip
	HourlyLimit = 10
	// DailyLimit is the number of samples in the daily list
	DailyLimit = 7

	// VariantLarge is the icon size used on the hero card
	VariantLarge = "4x"
	// VariantSmall is the icon size used in list rows
	VariantSmall = "2x"

	iconBaseURL = "https://openweathermap.org/img/wn/"
)

// IconURL builds the OpenWeatherMap icon URL for a condition code
func IconURL(code, variant string) string {
	return iconBaseURL + code + "@" + variant + ".png"
}

// RoundTemperature rounds half up: 20.5 becomes 21 and -0.5 becomes 0.
func RoundTemperature(t float64) int {
	f := math.Floor(t)
	if t-f >= 0.5 {
		f++
	}
	return int(f)
}

// Capitalize upper-cases the first letter of s
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Project derives the view model for a forecast. An empty forecast yields a
// view model without current conditions and with empty slices.
func Project(resp models.ForecastResponse) models.ViewModel {
	return ProjectFor(resp, "")
}

// ProjectFor is Project with a display label for the location
func ProjectFor(resp models.ForecastResponse, location string) models.ViewModel {
	vm := models.ViewModel{
		Location: location,
		Hourly:   make([]models.HourlyItem, 0, min(HourlyLimit, len(resp.List))),
		Daily:    make([]models.DailyItem, 0, min(DailyLimit, len(resp.List))),
	}
	if len(resp.List) == 0 {
		return vm
	}

	vm.Current = current(resp.List[0])
	for _, entry := range resp.List[:min(HourlyLimit, len(resp.List))] {
		vm.Hourly = append(vm.Hourly, hourly(entry))
	}
	for _, entry := range resp.List[:min(DailyLimit, len(resp.List))] {
		vm.Daily = append(vm.Daily, daily(entry))
	}
	return vm
}

func current(entry models.ForecastEntry) *models.CurrentConditions {
	cond := entry.FirstCondition()
	return &models.CurrentConditions{
		Temp:        RoundTemperature(entry.Main.Temp),
		Description: Capitalize(cond.Description),
		IconURL:     IconURL(cond.Icon, VariantLarge),
		Timestamp:   entry.DtTxt,
		Humidity:    entry.Main.Humidity,
		Pressure:    entry.Main.Pressure,
		WindSpeed:   entry.WindSpeed(),
	}
}

func hourly(entry models.ForecastEntry) models.HourlyItem {
	return models.HourlyItem{
		Time:    timeOfDay(entry),
		Temp:    RoundTemperature(entry.Main.Temp),
		IconURL: IconURL(entry.FirstCondition().Icon, VariantSmall),
	}
}

func daily(entry models.ForecastEntry) models.DailyItem {
	cond := entry.FirstCondition()
	return models.DailyItem{
		Date:        date(entry),
		Description: cond.Description,
		Temp:        RoundTemperature(entry.Main.Temp),
		IconURL:     IconURL(cond.Icon, VariantSmall),
	}
}

// timeOfDay and date format the parsed time when ingestion set it and fall
// back to slicing the raw text for entries built by hand.
func timeOfDay(entry models.ForecastEntry) string {
	if !entry.Time.IsZero() {
		return entry.Time.Format("15:04")
	}
	return slice(entry.DtTxt, 11, 16)
}

func date(entry models.ForecastEntry) string {
	if !entry.Time.IsZero() {
		return entry.Time.Format("2006-01-02")
	}
	return slice(entry.DtTxt, 0, 10)
}

func slice(s string, from, to int) string {
	if len(s) < to {
		return strings.TrimSpace(s[min(from, len(s)):])
	}
	return s[from:to]
}
