package maintenance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
	"github.com/ternarybob/affilink/internal/interfaces"
	"github.com/ternarybob/affilink/internal/models"
	"github.com/ternarybob/affilink/internal/services/scraper"
)

// stubStorage is a minimal in-memory LinkStorage for maintenance tests
type stubStorage struct {
	mu    sync.Mutex
	links map[string]*models.Link
	order []string
}

func newStubStorage(links ...*models.Link) *stubStorage {
	s := &stubStorage{links: make(map[string]*models.Link)}
	for _, link := range links {
		clone := *link
		s.links[link.ID] = &clone
		s.order = append(s.order, link.ID)
	}
	return s
}

func (s *stubStorage) Create(ctx context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *link
	s.links[link.ID] = &clone
	s.order = append(s.order, link.ID)
	return nil
}

func (s *stubStorage) Get(ctx context.Context, id string) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok {
		return nil, interfaces.ErrLinkNotFound
	}
	clone := *link
	return &clone, nil
}

func (s *stubStorage) Update(ctx context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.links[link.ID]
	if !ok {
		return interfaces.ErrLinkNotFound
	}
	if stored.Clicks > link.Clicks {
		link.Clicks = stored.Clicks
	}
	link.UpdatedAt = time.Now()
	clone := *link
	s.links[link.ID] = &clone
	return nil
}

func (s *stubStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, id)
	return nil
}

func (s *stubStorage) List(ctx context.Context) ([]*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*models.Link, 0, len(s.order))
	for _, id := range s.order {
		if link, ok := s.links[id]; ok {
			clone := *link
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (s *stubStorage) ListActive(ctx context.Context) ([]*models.Link, error) {
	all, _ := s.List(ctx)
	var result []*models.Link
	for _, link := range all {
		if link.IsActive {
			result = append(result, link)
		}
	}
	return result, nil
}

func (s *stubStorage) FindBySourceAndActive(ctx context.Context, source string, active bool) ([]*models.Link, error) {
	all, _ := s.List(ctx)
	var result []*models.Link
	for _, link := range all {
		if link.Source == source && link.IsActive == active {
			result = append(result, link)
		}
	}
	return result, nil
}

func (s *stubStorage) IncrementClicks(ctx context.Context, id string) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok {
		return nil, interfaces.ErrLinkNotFound
	}
	link.Clicks++
	clone := *link
	return &clone, nil
}

func (s *stubStorage) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links), nil
}

func (s *stubStorage) Close() error { return nil }

func priceOnlyHTML(price string) string {
	return `<html><body>
<span id="productTitle">Test Product</span>
<div id="corePriceDisplay_desktop_feature_div">
  <span class="a-price"><span class="a-offscreen">` + price + `</span></span>
</div>
</body></html>`
}

const unavailableHTML = `<html><body>
<span id="productTitle">Test Product</span>
<div id="availability"><span>Currently unavailable.</span></div>
</body></html>`

func newTestMaintenance(t *testing.T, storage interfaces.LinkStorage, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	scraperCfg := common.ScraperConfig{
		UserAgent:       "test-agent",
		RequestTimeout:  5 * time.Second,
		MaxRedirects:    5,
		BotRetryBackoff: 10 * time.Millisecond,
		MaxBodySize:     1024 * 1024,
	}
	maintCfg := common.MaintenanceConfig{
		Enabled:       true,
		Schedule:      "0 3 * * *",
		RequestPacing: time.Millisecond,
	}

	logger := arbor.NewLogger()
	svc := NewService(storage, scraper.NewService(scraperCfg, logger), maintCfg, logger)
	return svc, server
}

func activeLink(id, canonicalURL string, price *float64) *models.Link {
	now := time.Now()
	return &models.Link{
		ID:            id,
		Source:        "amazon",
		CanonicalURL:  canonicalURL,
		AffiliateURL:  canonicalURL + "?tag=mysite-21",
		Title:         "Test Product",
		Price:         price,
		PriceCurrency: "INR",
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestRunDailyRecordsPriceChange(t *testing.T) {
	oldPrice := 999.0
	storage := newStubStorage()

	svc, server := newTestMaintenance(t, storage, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(priceOnlyHTML("₹899.00")))
	}))
	storage.Create(context.Background(), activeLink("lnk_1", server.URL+"/dp/B0TESTAB12", &oldPrice))

	report, err := svc.RunDaily(context.Background())
	if err != nil {
		t.Fatalf("RunDaily() error = %v", err)
	}
	if report.Processed != 1 || report.Updated != 1 || report.Failed != 0 {
		t.Errorf("report = %+v, want 1 processed, 1 updated", report)
	}

	link, _ := storage.Get(context.Background(), "lnk_1")
	if link.Price == nil || *link.Price != 899.0 {
		t.Errorf("Price = %v, want 899", link.Price)
	}
	if link.PreviousPrice == nil || *link.PreviousPrice != 999.0 {
		t.Errorf("PreviousPrice = %v, want 999", link.PreviousPrice)
	}
	if link.PriceChangeReason != models.PriceChangeReasonMaintenance {
		t.Errorf("PriceChangeReason = %q, want %q", link.PriceChangeReason, models.PriceChangeReasonMaintenance)
	}
	if link.LastCheckedAt == nil {
		t.Error("LastCheckedAt should advance")
	}
}

func TestRunDailyLeavesUnchangedPriceAlone(t *testing.T) {
	samePrice := 899.0
	storage := newStubStorage()

	svc, server := newTestMaintenance(t, storage, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(priceOnlyHTML("₹899.00")))
	}))
	storage.Create(context.Background(), activeLink("lnk_1", server.URL+"/dp/B0TESTAB12", &samePrice))

	report, err := svc.RunDaily(context.Background())
	if err != nil {
		t.Fatalf("RunDaily() error = %v", err)
	}
	if report.Updated != 0 {
		t.Errorf("Updated = %d, want 0 for an unchanged price", report.Updated)
	}

	link, _ := storage.Get(context.Background(), "lnk_1")
	if link.PreviousPrice != nil {
		t.Errorf("PreviousPrice = %v, want nil when price did not move", link.PreviousPrice)
	}
	if link.LastCheckedAt == nil {
		t.Error("LastCheckedAt should advance even without changes")
	}
}

func TestRunDailyDeactivatesUnavailable(t *testing.T) {
	price := 899.0
	storage := newStubStorage()

	svc, server := newTestMaintenance(t, storage, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(unavailableHTML))
	}))
	storage.Create(context.Background(), activeLink("lnk_1", server.URL+"/dp/B0TESTAB12", &price))

	if _, err := svc.RunDaily(context.Background()); err != nil {
		t.Fatalf("RunDaily() error = %v", err)
	}

	link, _ := storage.Get(context.Background(), "lnk_1")
	if link.IsActive {
		t.Error("link should be deactivated")
	}
	if link.StatusReason != models.StatusReasonUnavailable {
		t.Errorf("StatusReason = %q, want %q", link.StatusReason, models.StatusReasonUnavailable)
	}
}

func TestRunDailyReactivatesAvailableAgain(t *testing.T) {
	storage := newStubStorage()

	svc, server := newTestMaintenance(t, storage, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(priceOnlyHTML("₹899.00")))
	}))

	link := activeLink("lnk_1", server.URL+"/dp/B0TESTAB12", nil)
	link.Deactivate(models.StatusReasonUnavailable)
	storage.Create(context.Background(), link)

	if _, err := svc.RunDaily(context.Background()); err != nil {
		t.Fatalf("RunDaily() error = %v", err)
	}

	got, _ := storage.Get(context.Background(), "lnk_1")
	if !got.IsActive {
		t.Error("link should be reactivated when the product is available again")
	}
	if got.StatusReason != "" {
		t.Errorf("StatusReason = %q, want cleared", got.StatusReason)
	}
}

func TestRunDailySkipsManuallyDeactivated(t *testing.T) {
	storage := newStubStorage()

	svc, server := newTestMaintenance(t, storage, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(priceOnlyHTML("₹899.00")))
	}))

	link := activeLink("lnk_1", server.URL+"/dp/B0TESTAB12", nil)
	link.Deactivate("deactivated_manually")
	storage.Create(context.Background(), link)

	report, err := svc.RunDaily(context.Background())
	if err != nil {
		t.Fatalf("RunDaily() error = %v", err)
	}
	if report.Processed != 0 {
		t.Errorf("Processed = %d, want 0 for a manually deactivated link", report.Processed)
	}

	got, _ := storage.Get(context.Background(), "lnk_1")
	if got.IsActive {
		t.Error("manually deactivated link must stay inactive")
	}
}

func TestRunDailyDeactivatesGoneProduct(t *testing.T) {
	price := 899.0
	storage := newStubStorage()

	svc, server := newTestMaintenance(t, storage, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	storage.Create(context.Background(), activeLink("lnk_1", server.URL+"/dp/B0TESTAB12", &price))

	report, err := svc.RunDaily(context.Background())
	if err != nil {
		t.Fatalf("RunDaily() error = %v", err)
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}

	link, _ := storage.Get(context.Background(), "lnk_1")
	if link.IsActive {
		t.Error("link should be deactivated after a 404")
	}
	if link.StatusReason != models.StatusReasonNotFound {
		t.Errorf("StatusReason = %q, want %q", link.StatusReason, models.StatusReasonNotFound)
	}
	if link.LastError == "" {
		t.Error("LastError should record the failed check")
	}
	if link.LastCheckedAt == nil {
		t.Error("LastCheckedAt should advance despite the failure")
	}
}

func TestRunDailyKeepsClicksCountedDuringRun(t *testing.T) {
	price := 999.0
	storage := newStubStorage()

	// The server stalls mid-fetch so a redirect click lands while the job
	// holds its snapshot of the link.
	fetching := make(chan struct{})
	release := make(chan struct{})
	svc, server := newTestMaintenance(t, storage, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(fetching)
		<-release
		w.Write([]byte(priceOnlyHTML("₹899.00")))
	}))
	storage.Create(context.Background(), activeLink("lnk_1", server.URL+"/dp/B0TESTAB12", &price))

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.RunDaily(context.Background())
	}()

	<-fetching
	if _, err := storage.IncrementClicks(context.Background(), "lnk_1"); err != nil {
		t.Fatalf("IncrementClicks() error = %v", err)
	}
	close(release)
	<-done

	link, _ := storage.Get(context.Background(), "lnk_1")
	if link.Clicks != 1 {
		t.Errorf("Clicks = %d, want 1 after a click during the reconcile pass", link.Clicks)
	}
	if link.Price == nil || *link.Price != 899.0 {
		t.Errorf("Price = %v, want 899 from the reconcile pass", link.Price)
	}
}

func TestRunDailyRejectsConcurrentRun(t *testing.T) {
	price := 899.0
	storage := newStubStorage()

	release := make(chan struct{})
	svc, server := newTestMaintenance(t, storage, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(priceOnlyHTML("₹899.00")))
	}))
	storage.Create(context.Background(), activeLink("lnk_1", server.URL+"/dp/B0TESTAB12", &price))

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.RunDaily(context.Background())
	}()

	// Wait until the first run is blocked inside the fetch
	time.Sleep(50 * time.Millisecond)
	if _, err := svc.RunDaily(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("second RunDaily() error = %v, want ErrRunInProgress", err)
	}

	close(release)
	<-done
}
