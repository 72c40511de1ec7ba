// Package results holds the active query's items and derives the displayed
// list from them.
package results

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"doorsmith/internal/catalog"

	"golang.org/x/text/cases"
)

// SortKey selects the ordering of the displayed list.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortName      SortKey = "name"
)

// SortKeys lists every sort key in cycling order.
var SortKeys = []SortKey{SortRelevance, SortPriceAsc, SortPriceDesc, SortName}

// Label returns a short human-readable name.
func (k SortKey) Label() string {
	switch k {
	case SortPriceAsc:
		return "Price: low to high"
	case SortPriceDesc:
		return "Price: high to low"
	case SortName:
		return "Name"
	default:
		return "Relevance"
	}
}

// FilterSortConfig is the user's current filter and ordering choice.
// The zero value shows everything in API order.
type FilterSortConfig struct {
	Material catalog.MaterialTag
	Sort     SortKey
}

// Apply filters and sorts items without mutating them. Sorting is stable so
// ties keep their input order.
func Apply(items []catalog.DisplayItem, cfg FilterSortConfig) []catalog.DisplayItem {
	out := make([]catalog.DisplayItem, 0, len(items))
	for _, item := range items {
		if cfg.Material == catalog.MaterialUnset || item.Material == cfg.Material {
			out = append(out, item)
		}
	}

	switch cfg.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b catalog.DisplayItem) int {
			return cmp.Compare(a.BasePrice, b.BasePrice)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b catalog.DisplayItem) int {
			return cmp.Compare(b.BasePrice, a.BasePrice)
		})
	case SortName:
		sortByName(out)
	}
	return out
}

// sortByName orders items by case-folded title.
func sortByName(items []catalog.DisplayItem) {
	fold := cases.Fold()
	keys := make(map[string]string, len(items))
	for _, item := range items {
		if _, ok := keys[item.Title]; !ok {
			keys[item.Title] = fold.String(item.Title)
		}
	}
	slices.SortStableFunc(items, func(a, b catalog.DisplayItem) int {
		return strings.Compare(keys[a.Title], keys[b.Title])
	})
}

// ParseSortKey accepts the CLI and config spellings of a sort key.
// An empty string is relevance.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relevance", "default", "none":
		return SortRelevance, nil
	case "price-asc", "price_asc", "asc", "price":
		return SortPriceAsc, nil
	case "price-desc", "price_desc", "desc":
		return SortPriceDesc, nil
	case "name", "title", "alpha":
		return SortName, nil
	default:
		return SortRelevance, fmt.Errorf("unknown sort key %q (valid: relevance, price-asc, price-desc, name)", s)
	}
}

// ParseMaterial accepts a material filter spelling. Empty, "any" and "all"
// clear the filter; "steel" is an alias for Metal.
func ParseMaterial(s string) (catalog.MaterialTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return catalog.MaterialUnset, nil
	case "wood":
		return catalog.MaterialWood, nil
	case "metal", "steel":
		return catalog.MaterialMetal, nil
	case "other":
		return catalog.MaterialOther, nil
	default:
		return catalog.MaterialUnset, fmt.Errorf("unknown material %q (valid: wood, metal, other)", s)
	}
}

// NextSortKey returns the key after k, wrapping around.
func NextSortKey(k SortKey) SortKey {
	i := slices.Index(SortKeys, k)
	return SortKeys[(i+1)%len(SortKeys)]
}

// NextMaterial cycles unset -> Wood -> Metal -> Other -> unset.
func NextMaterial(m catalog.MaterialTag) catalog.MaterialTag {
	i := slices.Index(catalog.Materials, m)
	if i == len(catalog.Materials)-1 {
		return catalog.MaterialUnset
	}
	return catalog.Materials[i+1]
}
