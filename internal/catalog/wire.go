package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"doorsmith/internal/logging"
)

// decodeEnvelope parses a search response body. A missing or null products
// field is an empty result; a non-object body or a non-array products field
// is a ParseError. Individual records are decoded leniently.
func decodeEnvelope(body []byte) ([]RawProduct, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{Err: err}
	}
	if envelope == nil {
		return nil, &ParseError{Err: errors.New("response is not a JSON object")}
	}

	raw, ok := envelope["products"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []RawProduct{}, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("products is not an array: %w", err)}
	}

	products := make([]RawProduct, 0, len(records))
	for i, rec := range records {
		var fields map[string]any
		if err := json.Unmarshal(rec, &fields); err != nil || fields == nil {
			logging.CatalogWarn("Skipping product record %d: not an object", i)
			continue
		}
		products = append(products, rawFromFields(fields))
	}
	return products, nil
}

func rawFromFields(f map[string]any) RawProduct {
	p := RawProduct{
		Title:       stringField(f, "title"),
		Brand:       stringField(f, "brand"),
		Category:    stringField(f, "category"),
		Description: stringField(f, "description"),
		Thumbnail:   stringField(f, "thumbnail"),
	}
	if id, ok := f["id"].(float64); ok && id == math.Trunc(id) {
		p.ID = int(id)
	}
	if price, ok := f["price"].(float64); ok {
		p.Price = &price
	}
	if images, ok := f["images"].([]any); ok {
		for _, img := range images {
			if s, ok := img.(string); ok {
				p.Images = append(p.Images, s)
			}
		}
	}
	return p
}

func stringField(f map[string]any, key string) string {
	s, _ := f[key].(string)
	return s
}
