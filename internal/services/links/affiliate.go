package links

import (
	"net/url"
	"strings"
)

// affiliateTagParam is the partner tracking query parameter
const affiliateTagParam = "tag"

// BuildAffiliateURL appends the partner tracking tag to a canonical URL. It is
// a pure function of its inputs and idempotent: a URL that already carries the
// tag parameter is returned unchanged, so applying it twice never produces a
// duplicate parameter.
func BuildAffiliateURL(canonicalURL, tag string) string {
	if tag == "" {
		return canonicalURL
	}

	parsed, err := url.Parse(canonicalURL)
	if err == nil {
		if parsed.Query().Get(affiliateTagParam) != "" {
			return canonicalURL
		}
	} else if strings.Contains(canonicalURL, "?"+affiliateTagParam+"=") ||
		strings.Contains(canonicalURL, "&"+affiliateTagParam+"=") {
		// Unparseable URLs pass through the normalizer raw; keep the
		// idempotence guarantee for them with a plain string check.
		return canonicalURL
	}

	separator := "?"
	if strings.Contains(canonicalURL, "?") {
		separator = "&"
	}
	return canonicalURL + separator + affiliateTagParam + "=" + url.QueryEscape(tag)
}
