package links

import (
	"strings"
)

// fillerPhrases mark scraped copy that says nothing about the product
var fillerPhrases = []string{
	"click here",
	"buy now",
	"best quality product",
	"great product",
	"see product description",
}

// isLowQualityDescription reports whether scraped text is worth sending to the
// rewrite collaborator: too short, or padded with generic filler.
func isLowQualityDescription(shortDesc, longDesc string, minLength int) bool {
	if len(strings.TrimSpace(longDesc)) < minLength {
		return true
	}

	combined := strings.ToLower(shortDesc + " " + longDesc)
	for _, phrase := range fillerPhrases {
		if strings.Contains(combined, phrase) {
			return true
		}
	}
	return false
}

// shortTitleFromTitle derives the truncated display title from the full title
func shortTitleFromTitle(title string, maxWords int) string {
	if maxWords <= 0 {
		return title
	}
	words := strings.Fields(title)
	if len(words) <= maxWords {
		return title
	}
	return strings.Join(words[:maxWords], " ")
}
