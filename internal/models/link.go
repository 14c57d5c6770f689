package models

import (
	"time"
)

// LinkStatusReason values recorded when a link is deactivated or reactivated
const (
	StatusReasonUnavailable = "unavailable_on_check"
	StatusReasonNotFound    = "not_found_on_check"
)

// PriceChangeReasonMaintenance is recorded when the reconciliation job moves
// the current price into PreviousPrice.
const PriceChangeReasonMaintenance = "maintenance_refresh"

// Link represents a tracked affiliate product link. It is the central entity:
// created from a submitted product URL, refreshed by the maintenance job, and
// mutated by redirect click counting.
type Link struct {
	// Identity
	ID     string `json:"id" badgerhold:"key"` // lnk_<uuid>, never reused
	Source string `json:"source"`              // Partner identifier, e.g. "amazon"

	// URLs
	CanonicalURL string `json:"canonical_url"` // Normalized, identifier-based
	RawURL       string `json:"raw_url"`       // As submitted
	AffiliateURL string `json:"affiliate_url"` // Canonical + tracking tag

	// Merchandising
	Title            string   `json:"title"`
	ShortTitle       string   `json:"short_title"`
	Brand            string   `json:"brand,omitempty"`
	ImageURL         string   `json:"image_url,omitempty"`
	Images           []string `json:"images,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	LongDescription  string   `json:"long_description,omitempty"`
	CategoryPath     []string `json:"category_path,omitempty"` // Breadcrumbs as scraped

	// Classification (closed taxonomy, default "other")
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`

	// Commerce
	Price                 *float64 `json:"price,omitempty"`
	PriceCurrency         string   `json:"price_currency,omitempty"`
	PriceRaw              string   `json:"price_raw,omitempty"` // Original scraped text, kept for audit
	PreviousPrice         *float64 `json:"previous_price,omitempty"`
	PreviousPriceCurrency string   `json:"previous_price_currency,omitempty"`
	PriceChangeReason     string   `json:"price_change_reason,omitempty"`

	// Popularity
	Rating       *float64 `json:"rating,omitempty"`
	ReviewsCount *int     `json:"reviews_count,omitempty"`

	// Lifecycle
	IsActive      bool       `json:"is_active"`
	StatusReason  string     `json:"status_reason,omitempty"` // Non-empty whenever IsActive is false
	Clicks        int64      `json:"clicks"`
	Note          string     `json:"note,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Deactivate marks the link inactive with the given reason
func (l *Link) Deactivate(reason string) {
	l.IsActive = false
	l.StatusReason = reason
}

// Reactivate marks the link active and clears the status reason
func (l *Link) Reactivate() {
	l.IsActive = true
	l.StatusReason = ""
}

// RecordPriceChange moves the current price into the previous-price fields and
// stores the new price. PreviousPrice is only ever written here, in the same
// update that changes Price.
func (l *Link) RecordPriceChange(amount float64, currency string, raw string, reason string) {
	l.PreviousPrice = l.Price
	l.PreviousPriceCurrency = l.PriceCurrency
	l.Price = &amount
	if currency != "" {
		l.PriceCurrency = currency
	}
	if raw != "" {
		l.PriceRaw = raw
	}
	l.PriceChangeReason = reason
}
