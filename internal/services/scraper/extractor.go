package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// fieldStrategy is one attempt at extracting a field. Strategies for a field
// are tried in order; the first non-empty result wins. The marketplace markup
// changes across revisions and page variants, so no single selector is
// reliable and every field must degrade to empty rather than fail.
type fieldStrategy func(doc *goquery.Document) string

// priceSelectors is ordered newest/most-specific to oldest/most-generic
var priceSelectors = []string{
	"#corePriceDisplay_desktop_feature_div .a-price .a-offscreen",
	"#corePrice_feature_div .a-price .a-offscreen",
	".priceToPay .a-offscreen",
	"#priceblock_dealprice",
	"#priceblock_ourprice",
	"#priceblock_saleprice",
	"#price_inside_buybox",
	".a-price .a-offscreen",
}

var (
	// currencyScanPattern is the page-wide fallback when no price selector matches
	currencyScanPattern = regexp.MustCompile(`(?:₹|\$|€|£|Rs\.?)\s?[0-9][0-9,]*(?:\.[0-9]{1,2})?`)
	ratingPattern       = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*out of`)
	decimalPattern      = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	reviewCountPattern  = regexp.MustCompile(`[0-9][0-9,]*`)
	// thumbSuffixPattern strips thumbnail-size suffixes like ._AC_US40_. or ._SS40_.
	thumbSuffixPattern = regexp.MustCompile(`\._[^./]+_\.`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// Extractor reads merchandising metadata out of raw product page HTML using
// an ordered cascade of strategies per field.
type Extractor struct {
	logger arbor.ILogger
}

// NewExtractor creates a metadata extractor
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract parses the HTML and runs every field cascade. All result fields are
// optional; a field whose cascade finds nothing stays zero-valued.
func (e *Extractor) Extract(html string) (*ProductMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse product HTML: %w", err)
	}

	meta := &ProductMetadata{
		Title:       e.firstNonEmpty(doc, titleStrategies),
		Brand:       e.firstNonEmpty(doc, brandStrategies),
		ImageURL:    e.firstNonEmpty(doc, imageStrategies),
		PriceRaw:    e.extractPriceRaw(doc),
		Breadcrumbs: e.extractBreadcrumbs(doc),
		Unavailable: e.extractUnavailable(doc),
	}

	meta.Images = e.extractGallery(doc, meta.ImageURL)
	meta.Rating = e.extractRating(doc)
	meta.ReviewsCount = e.extractReviewsCount(doc)

	meta.Bullets = e.extractBullets(doc)
	if len(meta.Bullets) > 0 {
		meta.ShortDescription = meta.Bullets[0]
		joined := meta.Bullets
		if len(joined) > 5 {
			joined = joined[:5]
		}
		meta.LongDescription = strings.Join(joined, " ")
	}

	e.logger.Debug().
		Str("title", meta.Title).
		Str("price_raw", meta.PriceRaw).
		Int("images", len(meta.Images)).
		Int("breadcrumbs", len(meta.Breadcrumbs)).
		Msg("Product metadata extracted")

	return meta, nil
}

// titleStrategies: structured product title, then meta title, then document title
var titleStrategies = []fieldStrategy{
	func(doc *goquery.Document) string {
		return cleanText(doc.Find("#productTitle").First().Text())
	},
	func(doc *goquery.Document) string {
		return cleanText(doc.Find("meta[name='title']").AttrOr("content", ""))
	},
	func(doc *goquery.Document) string {
		return cleanText(doc.Find("title").First().Text())
	},
}

var brandStrategies = []fieldStrategy{
	func(doc *goquery.Document) string {
		return cleanText(doc.Find("tr.po-brand td.a-span9").First().Text())
	},
	func(doc *goquery.Document) string {
		byline := cleanText(doc.Find("#bylineInfo").First().Text())
		byline = strings.TrimPrefix(byline, "Brand: ")
		byline = strings.TrimPrefix(byline, "Visit the ")
		byline = strings.TrimSuffix(byline, " Store")
		return byline
	},
}

// imageStrategies: landing image, high-resolution data attribute, meta image
var imageStrategies = []fieldStrategy{
	func(doc *goquery.Document) string {
		img := doc.Find("#landingImage").First()
		if hires := img.AttrOr("data-old-hires", ""); hires != "" {
			return hires
		}
		return img.AttrOr("src", "")
	},
	func(doc *goquery.Document) string {
		return doc.Find("img[data-old-hires]").First().AttrOr("data-old-hires", "")
	},
	func(doc *goquery.Document) string {
		return doc.Find("meta[property='og:image']").AttrOr("content", "")
	},
}

func (e *Extractor) firstNonEmpty(doc *goquery.Document, strategies []fieldStrategy) string {
	for _, strategy := range strategies {
		if result := strategy(doc); result != "" {
			return result
		}
	}
	return ""
}

// extractGallery collects thumbnail strip images, normalizes away the
// thumbnail-size suffixes, deduplicates, and puts the primary image first
// whether or not the strip carries it.
func (e *Extractor) extractGallery(doc *goquery.Document, primary string) []string {
	seen := make(map[string]bool)
	var images []string

	doc.Find("#altImages img").Each(func(i int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			return
		}
		full := thumbSuffixPattern.ReplaceAllString(src, ".")
		if !seen[full] {
			seen[full] = true
			images = append(images, full)
		}
	})

	if primary != "" {
		gallery := make([]string, 0, len(images)+1)
		gallery = append(gallery, primary)
		for _, img := range images {
			if img != primary {
				gallery = append(gallery, img)
			}
		}
		images = gallery
	}

	return images
}

func (e *Extractor) extractPriceRaw(doc *goquery.Document) string {
	for _, selector := range priceSelectors {
		if text := cleanText(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}

	// Page-wide currency symbol scan as the last resort
	if body := doc.Find("body").Text(); body != "" {
		if match := currencyScanPattern.FindString(body); match != "" {
			return strings.TrimSpace(match)
		}
	}

	return ""
}

func (e *Extractor) extractRating(doc *goquery.Document) *float64 {
	label := doc.Find("#acrPopover").AttrOr("title", "")
	if label == "" {
		label = doc.Find("span[data-hook='rating-out-of-text']").First().Text()
	}
	if label == "" {
		label = doc.Find("#averageCustomerReviews .a-icon-alt").First().Text()
	}
	if label == "" {
		return nil
	}

	match := ratingPattern.FindStringSubmatch(label)
	var raw string
	if match != nil {
		raw = match[1]
	} else {
		raw = decimalPattern.FindString(label)
	}
	if raw == "" {
		return nil
	}

	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &rating
}

func (e *Extractor) extractReviewsCount(doc *goquery.Document) *int {
	label := cleanText(doc.Find("#acrCustomerReviewText").First().Text())
	if label == "" {
		label = cleanText(doc.Find("span[data-hook='total-review-count']").First().Text())
	}
	if label == "" {
		return nil
	}

	raw := reviewCountPattern.FindString(label)
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ",", "")

	count, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &count
}

func (e *Extractor) extractBullets(doc *goquery.Document) []string {
	var bullets []string
	doc.Find("#feature-bullets li span.a-list-item").Each(func(i int, s *goquery.Selection) {
		text := cleanText(s.Text())
		if text == "" {
			return
		}
		// Fitment prompts are boilerplate, not product copy
		if strings.HasPrefix(text, "Make sure this fits") {
			return
		}
		bullets = append(bullets, text)
	})
	return bullets
}

func (e *Extractor) extractBreadcrumbs(doc *goquery.Document) []string {
	var crumbs []string
	doc.Find("#wayfinding-breadcrumbs_feature_div a").Each(func(i int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			crumbs = append(crumbs, text)
		}
	})
	return crumbs
}

func (e *Extractor) extractUnavailable(doc *goquery.Document) bool {
	availability := strings.ToLower(cleanText(doc.Find("#availability").First().Text()))
	return strings.Contains(availability, "currently unavailable")
}

// cleanText trims and collapses whitespace runs to single spaces
func cleanText(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
