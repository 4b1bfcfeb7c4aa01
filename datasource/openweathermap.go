package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weather-viewer/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const (
	// DefaultBaseURL is the OpenWeatherMap 2.5 API root
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	// DefaultUnits is the unit system requested when none is configured
	DefaultUnits = "metric"
)

var supportedUnits = map[string]bool{
	"metric":   true,
	"imperial": true,
	"standard": true,
}

// ValidUnits reports whether OpenWeatherMap accepts the unit system
func ValidUnits(units string) bool {
	return supportedUnits[units]
}

// OpenWeatherMapProvider fetches 5 day / 3 hour forecasts from OpenWeatherMap
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
	now        func() time.Time
}

// Ensure OpenWeatherMapProvider implements ForecastSource
var _ ForecastSource = (*OpenWeatherMapProvider)(nil)

// ProviderOption configures an OpenWeatherMapProvider
type ProviderOption func(*OpenWeatherMapProvider)

// WithBaseURL points the provider at a different API root
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *OpenWeatherMapProvider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithUnits selects the unit system sent with every request
func WithUnits(units string) ProviderOption {
	return func(p *OpenWeatherMapProvider) {
		p.units = units
	}
}

// WithHTTPClient injects the HTTP client used for requests
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *OpenWeatherMapProvider) {
		p.httpClient = client
	}
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(apiKey string, opts ...ProviderOption) *OpenWeatherMapProvider {
	p := &OpenWeatherMapProvider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		units:      DefaultUnits,
		httpClient: &http.Client{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// Units returns the unit system the provider requests
func (p *OpenWeatherMapProvider) Units() string {
	return p.units
}

// forecastBody is the subset of the /forecast payload we consume.
// List is nil when the key is missing; Message is only present on error responses.
type forecastBody struct {
	List    *[]models.ForecastEntry `json:"list"`
	Message string                  `json:"message"`
}

// FetchForecast fetches the forecast for a city.
// It performs exactly one request and never retries.
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, city string) (models.ForecastResponse, error) {
	ctx, span := otel.Tracer("weather-viewer/datasource").Start(ctx, "openweathermap.forecast")
	defer span.End()
	span.SetAttributes(
		attribute.String("weather.city", city),
		attribute.String("weather.units", p.units),
	)

	resp, err := p.fetch(ctx, city)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var fe *FetchError
		if errors.As(err, &fe) && fe.StatusCode != 0 {
			span.SetAttributes(attribute.Int("http.status_code", fe.StatusCode))
		}
		return models.ForecastResponse{}, err
	}

	span.SetAttributes(attribute.Int("weather.entries", len(resp.List)))
	return resp, nil
}

func (p *OpenWeatherMapProvider) fetch(ctx context.Context, city string) (models.ForecastResponse, error) {
	if strings.TrimSpace(city) == "" {
		return models.ForecastResponse{}, p.fail(KindInvalidRequest, errors.New("city must not be empty"))
	}
	if !ValidUnits(p.units) {
		return models.ForecastResponse{}, p.fail(KindInvalidRequest, fmt.Errorf("unsupported units %q", p.units))
	}

	// Build URL
	endpoint := fmt.Sprintf("%s/forecast", p.baseURL)
	params := url.Values{}
	params.Add("q", city)
	params.Add("appid", p.apiKey)
	params.Add("units", p.units)

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return models.ForecastResponse{}, p.fail(KindInvalidRequest, fmt.Errorf("failed to create request: %w", err))
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	// Execute request
	resp, err := p.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, including appid
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = fmt.Errorf("%s %s: %w", urlErr.Op, endpoint, urlErr.Err)
		}
		return models.ForecastResponse{}, p.fail(KindNetwork, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ForecastResponse{}, p.fail(KindDecode, fmt.Errorf("failed to read response body: %w", err))
	}

	// Check for error status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody forecastBody
		_ = json.Unmarshal(body, &errBody)
		return models.ForecastResponse{}, &FetchError{
			Kind:       KindHTTPStatus,
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Message:    errBody.Message,
		}
	}

	// Parse response
	var parsed forecastBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.ForecastResponse{}, p.fail(KindDecode, fmt.Errorf("failed to parse response: %w", err))
	}

	if parsed.List == nil {
		return models.ForecastResponse{}, p.fail(KindDecode, errors.New("response has no forecast list"))
	}

	entries := make([]models.ForecastEntry, len(*parsed.List))
	for i, entry := range *parsed.List {
		t, err := time.Parse(models.TimestampLayout, entry.DtTxt)
		if err != nil {
			return models.ForecastResponse{}, p.fail(KindDecode, fmt.Errorf("entry %d has malformed dt_txt %q: %w", i, entry.DtTxt, err))
		}
		entry.Time = t
		entries[i] = entry
	}

	return models.ForecastResponse{
		City:    city,
		List:    entries,
		Fetched: p.now(),
	}, nil
}

func (p *OpenWeatherMapProvider) fail(kind ErrorKind, err error) *FetchError {
	return &FetchError{Kind: kind, Provider: p.Name(), Err: err}
}
