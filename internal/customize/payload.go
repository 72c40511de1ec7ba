package customize

import (
	"slices"
	"time"

	"doorsmith/internal/catalog"

	"github.com/google/uuid"
)

// Dimensions carries the optional width and height; unset values encode as null.
type Dimensions struct {
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// Payload is the structured record emitted by "add to build".
type Payload struct {
	BuildID    string     `json:"build_id"`
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	BasePrice  float64    `json:"basePrice"`
	ImageURL   string     `json:"imageUrl"`
	Timestamp  time.Time  `json:"timestamp"`
	Dimensions Dimensions `json:"dimensions"`
	Material   string     `json:"material"`
	Color      string     `json:"color"`
	Hardware   []string   `json:"hardware"`
	Summary    string     `json:"summary"`
}

// NewPayload captures item and sel at time at. Unset material and color use
// Placeholder; hardware is never nil.
func NewPayload(item catalog.DisplayItem, sel Selection, at time.Time) Payload {
	hardware := slices.Clone(sel.Hardware)
	if hardware == nil {
		hardware = []string{}
	}
	return Payload{
		BuildID:   uuid.NewString(),
		ID:        item.ID,
		Title:     item.Title,
		BasePrice: item.BasePrice,
		ImageURL:  item.ImageURL,
		Timestamp: at.UTC(),
		Dimensions: Dimensions{
			Width:  copyFloat(sel.Width),
			Height: copyFloat(sel.Height),
		},
		Material: sel.MaterialLabel(),
		Color:    sel.ColorLabel(),
		Hardware: hardware,
		Summary:  Compose(&item, sel),
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
