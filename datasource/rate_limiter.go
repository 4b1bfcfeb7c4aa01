package datasource

import (
	"context"
	"fmt"

	"weather-viewer/models"

	"golang.org/x/time/rate"
)

// RateLimitedForecastSource wraps a ForecastSource with rate limiting
type RateLimitedForecastSource struct {
	source  ForecastSource
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedForecastSource creates a new rate limited forecast source
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedForecastSource(source ForecastSource, rps float64, burst int) *RateLimitedForecastSource {
	return &RateLimitedForecastSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// FetchForecast fetches forecast data, respecting rate limits
func (r *RateLimitedForecastSource) FetchForecast(ctx context.Context, city string) (models.ForecastResponse, error) {
	// Wait for rate limiter permission; a failed wait means the request never went out
	if err := r.limiter.Wait(ctx); err != nil {
		return models.ForecastResponse{}, &FetchError{
			Kind:     KindNetwork,
			Provider: r.source.Name(),
			Err:      fmt.Errorf("rate limit wait canceled: %w", err),
		}
	}

	// Forward to the underlying source
	return r.source.FetchForecast(ctx, city)
}

// Name returns the source name
func (r *RateLimitedForecastSource) Name() string {
	return r.name
}

var _ ForecastSource = (*RateLimitedForecastSource)(nil)
