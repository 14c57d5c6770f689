package scraper

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
)

// Service combines the normalizer, fetcher and extractor into the single
// product scraping pipeline used by both link creation and maintenance.
type Service struct {
	normalizer *Normalizer
	fetcher    *Fetcher
	extractor  *Extractor
	config     common.ScraperConfig
	logger     arbor.ILogger
}

// NewService creates the scraping pipeline from configuration
func NewService(config common.ScraperConfig, logger arbor.ILogger) *Service {
	return &Service{
		normalizer: NewNormalizer(config.ShortLinkDomains),
		fetcher:    NewFetcher(config, logger),
		extractor:  NewExtractor(logger),
		config:     config,
		logger:     logger,
	}
}

// Normalizer returns the URL normalizer
func (s *Service) Normalizer() *Normalizer {
	return s.normalizer
}

// Fetcher returns the page fetcher
func (s *Service) Fetcher() *Fetcher {
	return s.fetcher
}

// Resolve canonicalizes a submitted URL, resolving short links via redirect
// first. Resolution failures fall back to normalizing the input as-is.
func (s *Service) Resolve(ctx context.Context, rawURL string) NormalizeResult {
	if s.normalizer.IsShortLink(rawURL) {
		final, err := s.fetcher.ResolveRedirect(ctx, rawURL)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", rawURL).Msg("Short link resolution failed")
			return s.normalizer.Normalize(rawURL)
		}
		return s.normalizer.Normalize(final)
	}
	return s.normalizer.Normalize(rawURL)
}

// ScrapeProduct fetches the product page and extracts metadata. On a
// bot-protection page it retries once after a fixed backoff; if the retry is
// also blocked the classified error is returned so the caller can degrade to
// partial data instead of failing the operation.
func (s *Service) ScrapeProduct(ctx context.Context, productURL string) (*ProductMetadata, error) {
	html, err := s.fetcher.Fetch(ctx, productURL)
	if err != nil {
		fe, ok := AsFetchError(err)
		if !ok || fe.Kind != FetchBotProtection {
			return nil, err
		}

		backoff := s.config.BotRetryBackoff
		if backoff <= 0 {
			backoff = 3 * time.Second
		}
		s.logger.Info().
			Str("url", productURL).
			Dur("backoff", backoff).
			Msg("Retrying after bot protection backoff")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		html, err = s.fetcher.Fetch(ctx, productURL)
		if err != nil {
			return nil, err
		}
	}

	return s.extractor.Extract(html)
}
