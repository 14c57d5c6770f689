package scraper

import (
	"strings"
)

// CategoryOther is the default for unclassifiable products
const CategoryOther = "other"

// taxonomy is the closed set of categories and their subcategories. Manual
// categories from callers must validate against this set.
var taxonomy = map[string][]string{
	"electronics": {"mobiles", "computers", "audio", "cameras", "wearables", "accessories", CategoryOther},
	"fashion":     {"shoes", "clothing", "watches", "bags", CategoryOther},
	"home":        {"kitchen", "furniture", "decor", "appliances", CategoryOther},
	"beauty":      {"skincare", "haircare", "makeup", "grooming", CategoryOther},
	"sports":      {"fitness", "outdoor", "running", CategoryOther},
	"books":       {"fiction", "nonfiction", CategoryOther},
	"toys":        {CategoryOther},
	"grocery":     {CategoryOther},
	CategoryOther: {CategoryOther},
}

// categoryRule maps keyword phrases to a category pair. Rules are ordered most
// specific first so "running shoe" wins over the generic "shoe".
type categoryRule struct {
	keywords    []string
	category    string
	subcategory string
}

var categoryRules = []categoryRule{
	// Specific phrases first
	{[]string{"running shoe", "running shoes"}, "sports", "running"},
	{[]string{"smart watch", "smartwatch", "fitness band", "fitness tracker"}, "electronics", "wearables"},
	{[]string{"air fryer", "pressure cooker", "mixer grinder", "cookware"}, "home", "kitchen"},
	{[]string{"washing machine", "refrigerator", "microwave", "air conditioner", "vacuum cleaner"}, "home", "appliances"},
	{[]string{"dumbbell", "yoga mat", "treadmill", "exercise"}, "sports", "fitness"},
	{[]string{"trekking", "camping", "hiking"}, "sports", "outdoor"},
	{[]string{"headphone", "earphone", "earbud", "speaker", "soundbar"}, "electronics", "audio"},
	{[]string{"laptop", "keyboard", "monitor", "mouse", "desktop", "ssd", "pen drive"}, "electronics", "computers"},
	{[]string{"smartphone", "mobile phone", "cell phone", "iphone"}, "electronics", "mobiles"},
	{[]string{"camera", "dslr", "tripod", "lens"}, "electronics", "cameras"},
	{[]string{"charger", "power bank", "usb cable", "phone case", "screen protector"}, "electronics", "accessories"},
	{[]string{"shampoo", "conditioner", "hair oil"}, "beauty", "haircare"},
	{[]string{"moisturizer", "sunscreen", "face wash", "serum", "skin care", "skincare"}, "beauty", "skincare"},
	{[]string{"lipstick", "foundation", "mascara", "makeup"}, "beauty", "makeup"},
	{[]string{"trimmer", "razor", "beard", "shaving"}, "beauty", "grooming"},
	{[]string{"watch", "watches"}, "fashion", "watches"},
	{[]string{"backpack", "handbag", "wallet", "luggage"}, "fashion", "bags"},
	{[]string{"sneaker", "sandal", "loafer", "shoe", "shoes", "footwear"}, "fashion", "shoes"},
	{[]string{"t-shirt", "tshirt", "shirt", "jeans", "dress", "jacket", "kurta", "saree", "clothing"}, "fashion", "clothing"},
	{[]string{"sofa", "mattress", "bookshelf", "table", "chair", "furniture"}, "home", "furniture"},
	{[]string{"curtain", "wall art", "lamp", "cushion", "decor"}, "home", "decor"},
	{[]string{"novel", "fiction"}, "books", "fiction"},
	{[]string{"book", "books", "paperback", "hardcover"}, "books", "nonfiction"},
	{[]string{"toy", "toys", "lego", "puzzle", "board game"}, "toys", CategoryOther},
	{[]string{"grocery", "gourmet", "snack", "coffee", "tea"}, "grocery", CategoryOther},
	{[]string{"electronics"}, "electronics", CategoryOther},
	{[]string{"sports"}, "sports", CategoryOther},
}

// Classify infers a category pair from breadcrumb labels and the title.
// Deterministic: identical input always yields the same pair. Unmatched input
// defaults to ("other", "other").
func Classify(breadcrumbs []string, title string) (string, string) {
	text := strings.ToLower(strings.Join(breadcrumbs, " ") + " " + title)

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.category, rule.subcategory
			}
		}
	}

	return CategoryOther, CategoryOther
}

// ValidCategory reports whether the pair exists in the closed taxonomy. An
// empty subcategory validates against "other".
func ValidCategory(category, subcategory string) bool {
	subs, ok := taxonomy[category]
	if !ok {
		return false
	}
	if subcategory == "" {
		return true
	}
	for _, s := range subs {
		if s == subcategory {
			return true
		}
	}
	return false
}
