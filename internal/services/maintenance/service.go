package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
	"github.com/ternarybob/affilink/internal/interfaces"
	"github.com/ternarybob/affilink/internal/models"
	"github.com/ternarybob/affilink/internal/services/scraper"
	"golang.org/x/time/rate"
)

// ErrRunInProgress is returned when a reconciliation pass is already running
var ErrRunInProgress = errors.New("maintenance run already in progress")

// Service runs the reconciliation job: it re-scrapes every active link,
// records price deltas and availability flips, and fills in metadata that is
// still missing. Links are processed strictly one at a time; the pacer keeps
// the load on the scraped site flat.
type Service struct {
	storage interfaces.LinkStorage
	scraper *scraper.Service
	config  common.MaintenanceConfig
	logger  arbor.ILogger
	cron    *cron.Cron
	pacer   *rate.Limiter

	mu        sync.Mutex
	isRunning bool
}

// NewService creates the maintenance service
func NewService(
	storage interfaces.LinkStorage,
	scraperService *scraper.Service,
	config common.MaintenanceConfig,
	logger arbor.ILogger,
) *Service {
	pacing := config.RequestPacing
	if pacing <= 0 {
		pacing = time.Second
	}

	return &Service{
		storage: storage,
		scraper: scraperService,
		config:  config,
		logger:  logger,
		cron:    cron.New(),
		pacer:   rate.NewLimiter(rate.Every(pacing), 1),
	}
}

// Start registers the daily run on the configured cron schedule
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Maintenance job disabled by configuration")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunDaily(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled maintenance run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.config.Schedule).Msg("Maintenance job scheduled")
	return nil
}

// Stop halts the cron scheduler, waiting for a running job to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunDaily iterates all active links sequentially and reconciles each one.
// Per-item failures are recorded on the link and never abort the run. The
// job is idempotent and safe to re-run after a partial pass.
func (s *Service) RunDaily(ctx context.Context) (*models.MaintenanceReport, error) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.isRunning = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	report := &models.MaintenanceReport{StartedAt: time.Now()}

	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list links for maintenance: %w", err)
	}

	s.logger.Info().Int("count", len(candidates)).Msg("Maintenance run started")

	for _, link := range candidates {
		if err := ctx.Err(); err != nil {
			// Unprocessed links simply keep a stale LastCheckedAt
			s.logger.Warn().Err(err).Msg("Maintenance run cancelled")
			break
		}

		if err := s.pacer.Wait(ctx); err != nil {
			break
		}

		report.Processed++
		updated, err := s.reconcileLink(ctx, link)
		if err != nil {
			report.Failed++
			s.logger.Warn().Err(err).Str("link_id", link.ID).Msg("Link reconciliation failed")
			continue
		}
		if updated {
			report.Updated++
		}
	}

	report.FinishedAt = time.Now()
	report.Duration = report.FinishedAt.Sub(report.StartedAt)

	s.logger.Info().
		Int("processed", report.Processed).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("Maintenance run completed")

	return report, nil
}

// candidates returns every active link plus the links this job itself
// deactivated, so a product that comes back in stock can be reactivated.
// Manually deactivated links are left alone.
func (s *Service) candidates(ctx context.Context) ([]*models.Link, error) {
	all, err := s.storage.List(ctx)
	if err != nil {
		return nil, err
	}

	var result []*models.Link
	for _, link := range all {
		if link.IsActive ||
			link.StatusReason == models.StatusReasonUnavailable ||
			link.StatusReason == models.StatusReasonNotFound {
			result = append(result, link)
		}
	}
	return result, nil
}

// reconcileLink re-scrapes one link and writes back any changes. Returns
// whether anything beyond LastCheckedAt changed. Errors during the fetch are
// recorded in LastError and the link is still written so the check timestamp
// advances.
func (s *Service) reconcileLink(ctx context.Context, link *models.Link) (bool, error) {
	now := time.Now()
	link.LastCheckedAt = &now

	meta, err := s.scraper.ScrapeProduct(ctx, link.CanonicalURL)
	if err != nil {
		link.LastError = err.Error()

		// A 404 from the marketplace means the product is gone
		if fe, ok := scraper.AsFetchError(err); ok && fe.Kind == scraper.FetchHTTPError && fe.StatusCode == 404 {
			if link.IsActive {
				link.Deactivate(models.StatusReasonNotFound)
			}
		}

		if updateErr := s.storage.Update(ctx, link); updateErr != nil {
			return false, updateErr
		}
		return false, err
	}

	link.LastError = ""
	changed := s.applyRefresh(link, meta)

	if err := s.storage.Update(ctx, link); err != nil {
		return false, fmt.Errorf("failed to persist reconciled link: %w", err)
	}
	return changed, nil
}

// applyRefresh merges freshly scraped metadata into the stored link:
// price deltas are bookkept, availability flips are applied, and metadata is
// fill-only so a weaker scrape never overwrites curated or present values.
func (s *Service) applyRefresh(link *models.Link, meta *scraper.ProductMetadata) bool {
	changed := false

	// Price delta
	price := scraper.ParsePrice(meta.PriceRaw)
	if price.Amount != nil {
		if link.Price == nil || *link.Price != *price.Amount {
			link.RecordPriceChange(*price.Amount, price.Currency, price.Raw, models.PriceChangeReasonMaintenance)
			changed = true
			s.logger.Info().
				Str("link_id", link.ID).
				Float64("price", *price.Amount).
				Msg("Price change recorded")
		}
	}

	// Availability
	if meta.Unavailable {
		if link.IsActive {
			link.Deactivate(models.StatusReasonUnavailable)
			changed = true
			s.logger.Info().Str("link_id", link.ID).Msg("Link deactivated: unavailable")
		}
	} else if !link.IsActive &&
		(link.StatusReason == models.StatusReasonUnavailable || link.StatusReason == models.StatusReasonNotFound) {
		link.Reactivate()
		changed = true
		s.logger.Info().Str("link_id", link.ID).Msg("Link reactivated: available again")
	}

	// Fill-only metadata refresh
	if link.ImageURL == "" && meta.ImageURL != "" {
		link.ImageURL = meta.ImageURL
		changed = true
	}
	if len(link.Images) == 0 && len(meta.Images) > 0 {
		link.Images = meta.Images
		changed = true
	}
	if link.Rating == nil && meta.Rating != nil {
		link.Rating = meta.Rating
		changed = true
	}
	if link.ReviewsCount == nil && meta.ReviewsCount != nil {
		link.ReviewsCount = meta.ReviewsCount
		changed = true
	}
	if link.ShortDescription == "" && meta.ShortDescription != "" {
		link.ShortDescription = meta.ShortDescription
		changed = true
	}
	if link.LongDescription == "" && meta.LongDescription != "" {
		link.LongDescription = meta.LongDescription
		changed = true
	}
	if len(link.CategoryPath) == 0 && len(meta.Breadcrumbs) > 0 {
		link.CategoryPath = meta.Breadcrumbs
		changed = true
	}

	return changed
}
