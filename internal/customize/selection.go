// Package customize holds the customization panel state and composes order
// summaries from it.
package customize

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Placeholder is shown for any customization field that is not set.
const Placeholder = "N/A"

// Selection is the customization panel's current values. Every field is
// independently optional and no cross-field validation is done. Methods
// return a modified copy.
type Selection struct {
	Width    *float64
	Height   *float64
	Material string
	Color    string
	Hardware []string
}

// ParseDimension parses a positive number. Anything else yields nil.
func ParseDimension(text string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil
	}
	return &v
}

// WithWidth sets the width from user text; unparsable or non-positive unsets it.
func (s Selection) WithWidth(text string) Selection {
	s.Width = ParseDimension(text)
	return s
}

// WithHeight sets the height from user text; unparsable or non-positive unsets it.
func (s Selection) WithHeight(text string) Selection {
	s.Height = ParseDimension(text)
	return s
}

func (s Selection) WithMaterial(material string) Selection {
	s.Material = strings.TrimSpace(material)
	return s
}

func (s Selection) WithColor(color string) Selection {
	s.Color = strings.TrimSpace(color)
	return s
}

// ToggleHardware adds name if absent, removes it otherwise. Insertion order
// is kept so summaries list hardware in the order it was picked.
func (s Selection) ToggleHardware(name string) Selection {
	name = strings.TrimSpace(name)
	if name == "" {
		return s
	}
	if i := slices.Index(s.Hardware, name); i >= 0 {
		s.Hardware = slices.Delete(slices.Clone(s.Hardware), i, i+1)
		return s
	}
	s.Hardware = append(slices.Clone(s.Hardware), name)
	return s
}

// HasHardware reports whether name is selected.
func (s Selection) HasHardware(name string) bool {
	return slices.Contains(s.Hardware, name)
}

// WidthLabel returns the width with its unit, or the placeholder.
func (s Selection) WidthLabel() string { return dimensionLabel(s.Width) }

// HeightLabel returns the height with its unit, or the placeholder.
func (s Selection) HeightLabel() string { return dimensionLabel(s.Height) }

func (s Selection) MaterialLabel() string { return orPlaceholder(s.Material) }

func (s Selection) ColorLabel() string { return orPlaceholder(s.Color) }

// HardwareLabel joins the selected hardware, or returns the placeholder.
func (s Selection) HardwareLabel() string {
	if len(s.Hardware) == 0 {
		return Placeholder
	}
	return strings.Join(s.Hardware, ", ")
}

// IsEmpty reports whether no field has been set.
func (s Selection) IsEmpty() bool {
	return s.Width == nil && s.Height == nil && s.Material == "" && s.Color == "" && len(s.Hardware) == 0
}

func dimensionLabel(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " ft"
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// Options are the choices the customization panel offers.
type Options struct {
	Materials []string
	Hardware  []string
}

// DefaultOptions returns the built-in panel choices.
func DefaultOptions() Options {
	return Options{
		Materials: []string{"Wood", "Metal", "Glass", "Composite"},
		Hardware:  []string{"Handle", "Hinges", "Lock", "Peephole", "Kick plate"},
	}
}

// NextMaterial cycles through the offered materials, returning "" (unset)
// after the last one.
func (o Options) NextMaterial(current string) string {
	if len(o.Materials) == 0 {
		return ""
	}
	i := slices.Index(o.Materials, current)
	if i == len(o.Materials)-1 {
		return ""
	}
	return o.Materials[i+1]
}
