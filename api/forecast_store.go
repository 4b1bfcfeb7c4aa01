package api

import (
	"sync"
	"time"

	"weather-viewer/models"

	"github.com/google/uuid"
)

// Snapshot is a consistent copy of the store's contents
type Snapshot struct {
	View      models.ViewModel
	FetchID   string    // id of the fetch that produced View
	Updated   time.Time // when View was published
	LastError error     // most recent failure, cleared by the next success
	ErrorAt   time.Time
}

// Ready reports whether a forecast has been published
func (s Snapshot) Ready() bool {
	return s.View.HasData() || s.FetchID != ""
}

// ForecastStore holds the latest view model. Each publish replaces it wholesale;
// failures are recorded next to it without touching it.
type ForecastStore struct {
	view       models.ViewModel
	fetchID    string
	updated    time.Time
	lastErr    error
	errorAt    time.Time
	mutex      sync.RWMutex
	now        func() time.Time
	newFetchID func() string
}

// NewForecastStore creates an empty store in the "loading" state
func NewForecastStore() *ForecastStore {
	return &ForecastStore{
		view: models.ViewModel{
			Hourly: []models.HourlyItem{},
			Daily:  []models.DailyItem{},
		},
		now:        time.Now,
		newFetchID: uuid.NewString,
	}
}

// Publish replaces the current view model and returns the id assigned to it
func (s *ForecastStore) Publish(view models.ViewModel) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.view = view
	s.fetchID = s.newFetchID()
	s.updated = s.now()
	s.lastErr = nil
	s.errorAt = time.Time{}
	return s.fetchID
}

// RecordError remembers a failed fetch. The published view model is kept.
func (s *ForecastStore) RecordError(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.lastErr = err
	s.errorAt = s.now()
}

// Snapshot returns the current contents of the store
func (s *ForecastStore) Snapshot() Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return Snapshot{
		View:      s.view,
		FetchID:   s.fetchID,
		Updated:   s.updated,
		LastError: s.lastErr,
		ErrorAt:   s.errorAt,
	}
}

// View returns the latest view model
func (s *ForecastStore) View() models.ViewModel {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.view
}
