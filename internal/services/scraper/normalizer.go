package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// productIDPattern matches the marketplace product identifier embedded in
// /dp/<ID> and /gp/product/<ID> path shapes.
var productIDPattern = regexp.MustCompile(`(?i)/(?:dp|gp/product)/([A-Z0-9]{10})(?:[/?]|$)`)

// NormalizeResult is the outcome of canonicalizing a product URL
type NormalizeResult struct {
	CanonicalURL string `json:"canonical_url"`
	ProductID    string `json:"product_id,omitempty"`
}

// Normalizer canonicalizes submitted product URLs to a stable
// identifier-based form.
type Normalizer struct {
	shortLinkDomains map[string]bool
}

// NewNormalizer creates a normalizer aware of the given short-link hosts
func NewNormalizer(shortLinkDomains []string) *Normalizer {
	domains := make(map[string]bool, len(shortLinkDomains))
	for _, d := range shortLinkDomains {
		domains[strings.ToLower(d)] = true
	}
	return &Normalizer{shortLinkDomains: domains}
}

// Normalize reduces a product URL to its identifier-based canonical form,
// stripping all query parameters. When no identifier is found, or the URL
// cannot be parsed at all, the input is returned unchanged so unrecognized
// formats keep working.
func (n *Normalizer) Normalize(rawURL string) NormalizeResult {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return NormalizeResult{CanonicalURL: rawURL}
	}

	match := productIDPattern.FindStringSubmatch(parsed.Path + "/")
	if match == nil {
		return NormalizeResult{CanonicalURL: rawURL}
	}

	productID := strings.ToUpper(match[1])
	canonical := fmt.Sprintf("%s://%s/dp/%s", parsed.Scheme, parsed.Host, productID)

	return NormalizeResult{
		CanonicalURL: canonical,
		ProductID:    productID,
	}
}

// IsShortLink reports whether the URL's host is a known short-link domain
// that must be resolved via redirect before normalization.
func (n *Normalizer) IsShortLink(rawURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
	return n.shortLinkDomains[host]
}
