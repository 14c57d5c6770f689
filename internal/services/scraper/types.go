package scraper

import (
	"errors"
	"fmt"
)

// FetchErrorKind is the closed classification of fetch failures. Callers
// switch on the kind explicitly instead of probing ad hoc error fields.
type FetchErrorKind string

const (
	// FetchBotProtection means the upstream served an anti-scraping page
	FetchBotProtection FetchErrorKind = "bot_protection"
	// FetchHTTPError means the upstream returned a non-success status
	FetchHTTPError FetchErrorKind = "http_error"
	// FetchNetworkError means the request failed before a response arrived
	FetchNetworkError FetchErrorKind = "network_error"
)

// FetchError classifies a failed page fetch
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchBotProtection:
		return "bot protection detected"
	case FetchHTTPError:
		return fmt.Sprintf("http error: status %d", e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("network error: %v", e.Err)
		}
		return "network error"
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError extracts a FetchError from an error chain
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ProductMetadata holds everything the extractor could read from a product
// page. Every field is optional; absent fields stay zero-valued.
type ProductMetadata struct {
	Title            string   `json:"title,omitempty"`
	Brand            string   `json:"brand,omitempty"`
	ImageURL         string   `json:"image_url,omitempty"`
	Images           []string `json:"images,omitempty"`
	PriceRaw         string   `json:"price_raw,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	ReviewsCount     *int     `json:"reviews_count,omitempty"`
	Bullets          []string `json:"bullets,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	LongDescription  string   `json:"long_description,omitempty"`
	Breadcrumbs      []string `json:"breadcrumbs,omitempty"`
	Unavailable      bool     `json:"unavailable,omitempty"`
}

// PriceInfo is a normalized price parsed from locale-ambiguous raw text.
// Amount is nil when no finite number could be parsed; Raw is always kept
// for audit.
type PriceInfo struct {
	Amount   *float64 `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Raw      string   `json:"raw,omitempty"`
}
