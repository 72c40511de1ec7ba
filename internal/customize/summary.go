package customize

import (
	"fmt"
	"strings"

	"doorsmith/internal/catalog"

	"github.com/dustin/go-humanize"
)

// NoProductSelected is the summary when there is no target product.
const NoProductSelected = "No product selected."

// FormatPrice renders a price with thousands separators and two decimals.
func FormatPrice(p float64) string {
	return "$" + humanize.FormatFloat("#,###.##", p)
}

// Compose builds the one-line order summary. Fields always appear in the
// order product, dimensions, material, color, hardware; unset ones use
// Placeholder.
func Compose(item *catalog.DisplayItem, sel Selection) string {
	if item == nil {
		return NoProductSelected
	}
	return fmt.Sprintf("%s (#%d, %s) | Dimensions: %s x %s | Material: %s | Color: %s | Hardware: %s",
		item.Title,
		item.ID,
		FormatPrice(item.BasePrice),
		sel.WidthLabel(),
		sel.HeightLabel(),
		sel.MaterialLabel(),
		sel.ColorLabel(),
		sel.HardwareLabel(),
	)
}

// Markdown renders the same content as Compose as a markdown block for the
// summary panel.
func Markdown(item *catalog.DisplayItem, sel Selection) string {
	if item == nil {
		return "_" + NoProductSelected + "_\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(item.Title))
	fmt.Fprintf(&b, "**#%d** · %s · %s\n\n", item.ID, FormatPrice(item.BasePrice), item.Material)
	b.WriteString("| Option | Value |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| Dimensions | %s x %s |\n", sel.WidthLabel(), sel.HeightLabel())
	fmt.Fprintf(&b, "| Material | %s |\n", escapeMarkdown(sel.MaterialLabel()))
	fmt.Fprintf(&b, "| Color | %s |\n", escapeMarkdown(sel.ColorLabel()))
	fmt.Fprintf(&b, "| Hardware | %s |\n", escapeMarkdown(sel.HardwareLabel()))
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
