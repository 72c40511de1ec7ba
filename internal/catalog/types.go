// Package catalog talks to the external product-search API and turns its
// records into display-ready items.
package catalog

import (
	"regexp"
	"strings"
)

const (
	// DefaultBaseURL is the public product-search endpoint.
	DefaultBaseURL = "https://dummyjson.com/products/search"

	// ResultLimit caps the number of products requested per search.
	ResultLimit = 20

	// FallbackImageURL is used when a product carries no usable image.
	FallbackImageURL = "https://picsum.photos/seed/powerlift/600/400"

	// DefaultUserAgent identifies the client to the search API.
	DefaultUserAgent = "doorsmith/1.0 (+https://github.com/doorsmith)"

	// UntitledProduct replaces a missing title.
	UntitledProduct = "Untitled"
)

// RawProduct is one unprocessed record from the search API. Fields the API
// omitted or sent with the wrong type are left at their zero value.
type RawProduct struct {
	ID          int
	Title       string
	Brand       string
	Category    string
	Description string
	Price       *float64
	Thumbnail   string
	Images      []string
}

// MaterialTag classifies a product by keyword matching on its text.
// The zero value means "unset" and is only meaningful as a filter.
type MaterialTag string

const (
	MaterialUnset MaterialTag = ""
	MaterialWood  MaterialTag = "Wood"
	MaterialMetal MaterialTag = "Metal"
	MaterialOther MaterialTag = "Other"
)

// Materials lists the tags a DisplayItem can carry, in display order.
var Materials = []MaterialTag{MaterialWood, MaterialMetal, MaterialOther}

// String returns the display label.
func (m MaterialTag) String() string {
	if m == MaterialUnset {
		return "Any"
	}
	return string(m)
}

// DisplayItem is the normalized, render-ready form of a RawProduct.
// It is immutable once created.
//
// ID comes from the API and may repeat (records without an id decode to 0).
// Key is the item's position in its result set, assigned when the results
// are accepted; actions on a card address the item by Key.
type DisplayItem struct {
	Key         int
	ID          int
	Title       string
	Description string
	BasePrice   float64
	ImageURL    string
	Material    MaterialTag
	Brand       string
	Category    string
}

var (
	woodKeywords  = []string{"wood"}
	metalKeywords = []string{"metal", "steel"}

	// oak only counts as a whole word; "cloak" and "soak" are not wood.
	oakWord = regexp.MustCompile(`\boak\b`)
)

// TagMaterial derives the material tag from a title and description.
// Wood is checked before metal/steel, so "Wood and Steel" is Wood.
func TagMaterial(title, description string) MaterialTag {
	combined := strings.ToLower(title + " " + description)
	switch {
	case containsAny(combined, woodKeywords), oakWord.MatchString(combined):
		return MaterialWood
	case containsAny(combined, metalKeywords):
		return MaterialMetal
	default:
		return MaterialOther
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
