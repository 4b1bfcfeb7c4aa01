package api

import (
	"errors"
	"testing"
	"time"

	"weather-viewer/models"

	"github.com/stretchr/testify/assert"
)

func TestForecastStoreLifecycle(t *testing.T) {
	store := NewForecastStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ids := []string{"first", "second"}
	store.newFetchID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	snap := store.Snapshot()
	assert.False(t, snap.Ready())
	assert.Empty(t, snap.View.Hourly)

	view := models.ViewModel{Current: &models.CurrentConditions{Temp: 3}}
	assert.Equal(t, "first", store.Publish(view))

	boom := errors.New("boom")
	store.RecordError(boom)
	snap = store.Snapshot()
	assert.True(t, snap.Ready())
	assert.Equal(t, view, snap.View)
	assert.Equal(t, "first", snap.FetchID)
	assert.Equal(t, now, snap.Updated)
	assert.Same(t, boom, snap.LastError)

	next := models.ViewModel{Current: &models.CurrentConditions{Temp: 4}}
	assert.Equal(t, "second", store.Publish(next))
	snap = store.Snapshot()
	assert.Equal(t, next, store.View())
	assert.NoError(t, snap.LastError, "a successful publish clears the last error")
}
