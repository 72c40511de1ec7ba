package catalog

import (
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// descriptionPolicy strips all markup from untrusted product text.
var descriptionPolicy = bluemonday.StrictPolicy()

// MapProduct normalizes one raw record. It never fails: every missing or
// unusable field falls back to a default. An empty fallbackImage uses
// FallbackImageURL.
func MapProduct(raw RawProduct, fallbackImage string) DisplayItem {
	if fallbackImage == "" {
		fallbackImage = FallbackImageURL
	}

	title := cleanText(raw.Title)
	if title == "" {
		title = cleanText(raw.Brand)
	}
	if title == "" {
		title = UntitledProduct
	}
	description := cleanText(raw.Description)

	return DisplayItem{
		ID:          raw.ID,
		Title:       title,
		Description: description,
		BasePrice:   basePrice(raw.Price),
		ImageURL:    imageURL(raw, fallbackImage),
		Material:    TagMaterial(title, description),
		Brand:       cleanText(raw.Brand),
		Category:    cleanText(raw.Category),
	}
}

// MapProducts maps every record, preserving API order.
func MapProducts(raws []RawProduct, fallbackImage string) []DisplayItem {
	items := make([]DisplayItem, 0, len(raws))
	for _, raw := range raws {
		items = append(items, MapProduct(raw, fallbackImage))
	}
	return items
}

func basePrice(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0 {
		return 0
	}
	return *p
}

func imageURL(raw RawProduct, fallback string) string {
	if thumb := strings.TrimSpace(raw.Thumbnail); thumb != "" {
		return thumb
	}
	for _, img := range raw.Images {
		if img = strings.TrimSpace(img); img != "" {
			return img
		}
	}
	return fallback
}

// cleanText removes markup, decodes entities and collapses whitespace.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(descriptionPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}
