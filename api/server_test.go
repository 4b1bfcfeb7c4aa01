package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"weather-viewer/collector"
	"weather-viewer/datasource"
	"weather-viewer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastBody = `{"list": [
  {"dt_txt": "2024-06-01 15:00:00", "main": {"temp": 20.5, "humidity": 48, "pressure": 1012},
   "weather": [{"description": "overcast clouds", "icon": "04d"}]}
]}`

// provider fakes the OpenWeatherMap endpoint; status and body can be changed between requests
type provider struct {
	mu     sync.Mutex
	status int
	body   string
}

func (p *provider) set(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status, p.body = status, body
}

func (p *provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	status, body := p.status, p.body
	p.mu.Unlock()
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func setup(t *testing.T) (*provider, *ForecastStore, *httptest.Server) {
	t.Helper()
	upstream := &provider{status: http.StatusOK, body: forecastBody}
	owm := httptest.NewServer(upstream)
	t.Cleanup(owm.Close)

	source := datasource.NewOpenWeatherMapProvider("test-key",
		datasource.WithBaseURL(owm.URL),
		datasource.WithHTTPClient(owm.Client()),
	)
	store := NewForecastStore()
	loader := collector.NewLoader(source, store, "Moscow", "Moscow, Russia", nil)

	ts := httptest.NewServer(NewServer(store, loader, 0, nil).Router())
	t.Cleanup(ts.Close)
	return upstream, store, ts
}

func decode(t *testing.T, resp *http.Response) ForecastResponse {
	t.Helper()
	defer resp.Body.Close()
	var body ForecastResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestGetForecastLoading(t *testing.T) {
	_, _, ts := setup(t)

	resp, err := http.Get(ts.URL + "/api/forecast")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, StateLoading, body.State)
	assert.Nil(t, body.View)
}

func TestRefreshThenGetForecast(t *testing.T) {
	_, _, ts := setup(t)

	resp, err := http.Post(ts.URL+"/api/forecast/refresh", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refreshed := decode(t, resp)
	assert.Equal(t, StateReady, refreshed.State)
	assert.NotEmpty(t, refreshed.FetchID)

	resp, err = http.Get(ts.URL + "/api/forecast")
	require.NoError(t, err)
	body := decode(t, resp)

	assert.Equal(t, StateReady, body.State)
	assert.Equal(t, refreshed.FetchID, body.FetchID)
	require.NotNil(t, body.View)
	require.NotNil(t, body.View.Current)
	assert.Equal(t, "Moscow, Russia", body.View.Location)
	assert.Equal(t, 21, body.View.Current.Temp)
	assert.Equal(t, "Overcast clouds", body.View.Current.Description)
	assert.Equal(t, "https://openweathermap.org/img/wn/04d@4x.png", body.View.Current.IconURL)
	require.Len(t, body.View.Hourly, 1)
	assert.Equal(t, "15:00", body.View.Hourly[0].Time)
	require.Len(t, body.View.Daily, 1)
	assert.Equal(t, "2024-06-01", body.View.Daily[0].Date)
}

func TestFailedRefreshKeepsPriorView(t *testing.T) {
	upstream, store, ts := setup(t)

	resp, err := http.Post(ts.URL+"/api/forecast/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	before := store.Snapshot()
	require.True(t, before.View.HasData())

	for _, tc := range []struct {
		name   string
		status int
		body   string
		kind   datasource.ErrorKind
	}{
		{"not found", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, datasource.KindHTTPStatus},
		{"malformed", http.StatusOK, `{"list": [`, datasource.KindDecode},
	} {
		t.Run(tc.name, func(t *testing.T) {
			upstream.set(tc.status, tc.body)

			resp, err := http.Post(ts.URL+"/api/forecast/refresh", "application/json", nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
			body := decode(t, resp)
			assert.Equal(t, StateError, body.State)
			require.NotNil(t, body.Error)
			assert.Equal(t, string(tc.kind), body.Error.Kind)

			after := store.Snapshot()
			assert.Equal(t, before.View, after.View)
			assert.Equal(t, before.FetchID, after.FetchID)
			assert.Error(t, after.LastError)
		})
	}

	// readers still see the last good forecast
	resp, err = http.Get(ts.URL + "/api/forecast")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Equal(t, StateReady, body.State)
	assert.Equal(t, before.FetchID, body.FetchID)
}

func TestGetForecastErrorBeforeFirstSuccess(t *testing.T) {
	upstream, _, ts := setup(t)
	upstream.set(http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`)

	resp, err := http.Post(ts.URL+"/api/forecast/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/forecast")
	require.NoError(t, err)
	body := decode(t, resp)

	assert.Equal(t, StateError, body.State)
	require.NotNil(t, body.Error)
	assert.Equal(t, string(datasource.KindHTTPStatus), body.Error.Kind)
	assert.Contains(t, body.Error.Message, "Couldn't load forecast")
}

func TestGetForecastEmptyList(t *testing.T) {
	upstream, _, ts := setup(t)
	upstream.set(http.StatusOK, `{"list": []}`)

	resp, err := http.Post(ts.URL+"/api/forecast/refresh", "application/json", nil)
	require.NoError(t, err)
	body := decode(t, resp)

	assert.Equal(t, StateEmpty, body.State)
	require.NotNil(t, body.View)
	assert.Nil(t, body.View.Current)
	assert.Empty(t, body.View.Hourly)
	assert.Empty(t, body.View.Daily)
}

func TestHealthCheck(t *testing.T) {
	_, _, ts := setup(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

type supersededRefresher struct{}

func (supersededRefresher) Refresh(ctx context.Context) (models.ViewModel, error) {
	return models.ViewModel{}, collector.ErrSuperseded
}

func TestRefreshSupersededConflict(t *testing.T) {
	ts := httptest.NewServer(NewServer(NewForecastStore(), supersededRefresher{}, 0, nil).Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/forecast/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
