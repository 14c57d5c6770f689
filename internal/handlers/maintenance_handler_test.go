package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
	"github.com/ternarybob/affilink/internal/interfaces"
	"github.com/ternarybob/affilink/internal/models"
	"github.com/ternarybob/affilink/internal/services/maintenance"
	"github.com/ternarybob/affilink/internal/services/scraper"
)

// failingListStorage simulates a storage iterator failure
type failingListStorage struct {
	*fakeStorage
}

func (f *failingListStorage) List(ctx context.Context) ([]*models.Link, error) {
	return nil, fmt.Errorf("iterator failed")
}

// blockingListStorage holds the first run inside List until released
type blockingListStorage struct {
	*fakeStorage
	entered chan struct{}
	release chan struct{}
}

func (b *blockingListStorage) List(ctx context.Context) ([]*models.Link, error) {
	close(b.entered)
	<-b.release
	return b.fakeStorage.List(ctx)
}

func newTestMaintenanceHandler(t *testing.T, storage interfaces.LinkStorage) *MaintenanceHandler {
	t.Helper()

	logger := arbor.NewLogger()
	scraperCfg := common.ScraperConfig{
		UserAgent:      "test-agent",
		RequestTimeout: 2 * time.Second,
		MaxRedirects:   5,
	}
	maintCfg := common.MaintenanceConfig{
		Enabled:       true,
		Schedule:      "0 3 * * *",
		RequestPacing: time.Millisecond,
	}

	svc := maintenance.NewService(storage, scraper.NewService(scraperCfg, logger), maintCfg, logger)
	return NewMaintenanceHandler(svc)
}

func TestMaintenanceRunHandlerStorageFailure(t *testing.T) {
	handler := newTestMaintenanceHandler(t, &failingListStorage{fakeStorage: newFakeStorage()})

	rec := httptest.NewRecorder()
	handler.RunHandler(rec, httptest.NewRequest(http.MethodPost, "/api/maintenance/run", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d for a storage failure", rec.Code, http.StatusInternalServerError)
	}
}

func TestMaintenanceRunHandlerAlreadyRunning(t *testing.T) {
	storage := &blockingListStorage{
		fakeStorage: newFakeStorage(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	handler := newTestMaintenanceHandler(t, storage)

	done := make(chan struct{})
	go func() {
		defer close(done)
		rec := httptest.NewRecorder()
		handler.RunHandler(rec, httptest.NewRequest(http.MethodPost, "/api/maintenance/run", nil))
	}()

	// The first run is parked inside List; a second trigger must conflict
	<-storage.entered
	rec := httptest.NewRecorder()
	handler.RunHandler(rec, httptest.NewRequest(http.MethodPost, "/api/maintenance/run", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d while a run is in progress", rec.Code, http.StatusConflict)
	}

	close(storage.release)
	<-done
}

func TestMaintenanceRunHandlerRejectsGet(t *testing.T) {
	handler := newTestMaintenanceHandler(t, newFakeStorage())

	rec := httptest.NewRecorder()
	handler.RunHandler(rec, httptest.NewRequest(http.MethodGet, "/api/maintenance/run", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
