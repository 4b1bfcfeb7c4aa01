package datasource

import (
	"context"

	"weather-viewer/models"
)

// ForecastSource is an interface for services that can fetch weather forecasts
type ForecastSource interface {
	// FetchForecast fetches the multi-day forecast for a city
	FetchForecast(ctx context.Context, city string) (models.ForecastResponse, error)

	// Name returns the source's name
	Name() string
}
