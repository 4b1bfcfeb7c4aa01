package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"weather-viewer/datasource"
	"weather-viewer/models"
	"weather-viewer/projector"

	"go.uber.org/zap"
)

// ErrSuperseded is returned by Refresh when a newer refresh started before this one finished
var ErrSuperseded = errors.New("refresh superseded by a newer one")

// Sink receives the outcome of each refresh
type Sink interface {
	Publish(view models.ViewModel) string
	RecordError(err error)
}

// Loader fetches the forecast for one city, projects it and publishes the result.
// At most one fetch is outstanding: a new refresh cancels the pending one.
type Loader struct {
	source       datasource.ForecastSource
	sink         Sink
	city         string
	location     string
	logger       *zap.SugaredLogger
	fetchTimeout time.Duration

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewLoader creates a loader for city. location is the label shown with the forecast.
func NewLoader(source datasource.ForecastSource, sink Sink, city, location string, logger *zap.SugaredLogger) *Loader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loader{
		source:   source,
		sink:     sink,
		city:     city,
		location: location,
		logger:   logger,
	}
}

// SetFetchTimeout bounds each fetch. Zero leaves it to the transport.
func (l *Loader) SetFetchTimeout(timeout time.Duration) {
	l.fetchTimeout = timeout
}

// Start triggers the initial load in the background.
// The returned function cancels a pending load and waits for it to finish.
func (l *Loader) Start(ctx context.Context) func() {
	loadCtx, cancelLoad := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// errors are already logged and recorded by Refresh
		_, _ = l.Refresh(loadCtx)
	}()

	return func() {
		cancelLoad()
		wg.Wait()
	}
}

// Refresh fetches and publishes a new view model. On failure the published
// view model is left untouched and the classified error is returned.
func (l *Loader) Refresh(ctx context.Context) (models.ViewModel, error) {
	fetchCtx, cancel, gen := l.begin(ctx)
	defer l.finish(gen, cancel)

	started := time.Now()
	resp, err := l.source.FetchForecast(fetchCtx, l.city)
	if err != nil {
		if ctx.Err() != nil && !l.superseded(gen) {
			// the consumer went away; nothing to show the failure to
			return models.ViewModel{}, ctx.Err()
		}

		l.mu.Lock()
		if gen != l.generation {
			l.mu.Unlock()
			return models.ViewModel{}, ErrSuperseded
		}
		l.sink.RecordError(err)
		l.mu.Unlock()

		l.logger.Errorw("Couldn't load forecast",
			"city", l.city,
			"source", l.source.Name(),
			"kind", datasource.KindOf(err),
			"error", err)
		return models.ViewModel{}, fmt.Errorf("refresh forecast for %s: %w", l.city, err)
	}

	view := projector.ProjectFor(resp, l.location)

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		return models.ViewModel{}, ErrSuperseded
	}
	fetchID := l.sink.Publish(view)
	l.mu.Unlock()

	if !view.HasData() {
		l.logger.Warnw("Forecast has no entries", "city", l.city, "fetchId", fetchID)
	}
	l.logger.Infow("Updated forecast",
		"city", l.city,
		"source", l.source.Name(),
		"entries", len(resp.List),
		"fetchId", fetchID,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return view, nil
}

// begin cancels any pending fetch and registers a new one
func (l *Loader) begin(ctx context.Context) (context.Context, context.CancelFunc, uint64) {
	var (
		fetchCtx context.Context
		cancel   context.CancelFunc
	)
	if l.fetchTimeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, l.fetchTimeout)
	} else {
		fetchCtx, cancel = context.WithCancel(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	l.cancel = cancel
	return fetchCtx, cancel, l.generation
}

func (l *Loader) superseded(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen != l.generation
}

func (l *Loader) finish(gen uint64, cancel context.CancelFunc) {
	l.mu.Lock()
	if gen == l.generation {
		l.cancel = nil
	}
	l.mu.Unlock()
	cancel()
}
