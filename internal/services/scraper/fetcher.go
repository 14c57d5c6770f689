package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
)

// botProtectionMarkers are phrases the marketplace serves on anti-scraping
// interstitials instead of real product content.
var botProtectionMarkers = []string{
	"To discuss automated access to Amazon data",
	"Enter the characters you see below",
	"Robot Check",
	"api-services-support@amazon.com",
}

// Fetcher performs outbound product page requests with browser-like headers,
// bounded timeout and redirect following, and classifies the response.
type Fetcher struct {
	client *http.Client
	config common.ScraperConfig
	logger arbor.ILogger
}

// NewFetcher creates a fetcher from scraper configuration
func NewFetcher(config common.ScraperConfig, logger arbor.ILogger) *Fetcher {
	maxRedirects := config.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}

	client := &http.Client{
		Timeout: config.RequestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &Fetcher{
		client: client,
		config: config,
		logger: logger,
	}
}

// Fetch GETs the URL and returns the HTML body, or a classified *FetchError:
// BotProtectionDetected, HttpError(status) or NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", &FetchError{Kind: FetchNetworkError, Err: err}
	}
	f.setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug().Err(err).Str("url", targetURL).Msg("Fetch failed")
		return "", &FetchError{Kind: FetchNetworkError, Err: err}
	}
	defer resp.Body.Close()

	maxBody := f.config.MaxBodySize
	if maxBody <= 0 {
		maxBody = 8 * 1024 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", &FetchError{Kind: FetchNetworkError, Err: err}
	}

	html := string(body)

	if isBotProtectionPage(html) {
		f.logger.Warn().Str("url", targetURL).Msg("Bot protection page detected")
		return "", &FetchError{Kind: FetchBotProtection, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Debug().
			Str("url", targetURL).
			Int("status_code", resp.StatusCode).
			Msg("Fetch returned error status")
		return "", &FetchError{Kind: FetchHTTPError, StatusCode: resp.StatusCode}
	}

	return html, nil
}

// ResolveRedirect follows redirects from a short link and returns the final
// destination URL.
func (f *Fetcher) ResolveRedirect(ctx context.Context, shortURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return "", &FetchError{Kind: FetchNetworkError, Err: err}
	}
	f.setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{Kind: FetchNetworkError, Err: err}
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	final := resp.Request.URL.String()
	f.logger.Debug().
		Str("short_url", shortURL).
		Str("final_url", final).
		Msg("Short link resolved")

	return final, nil
}

func (f *Fetcher) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func isBotProtectionPage(html string) bool {
	for _, marker := range botProtectionMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}
