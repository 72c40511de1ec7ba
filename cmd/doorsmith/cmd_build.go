package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"doorsmith/internal/buildlog"
	"doorsmith/internal/configurator"
	"doorsmith/internal/customize"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildPick     int
	buildWidth    string
	buildHeight   string
	buildMaterial string
	buildColor    string
	buildHardware []string
	buildPreview  bool
	buildFilter   string
	buildSort     string

	// now is replaced in tests.
	now = time.Now
)

// buildCmd adds a customized product to the build without the TUI
var buildCmd = &cobra.Command{
	Use:   "build [query]",
	Short: "Customize a search result and add it to the build",
	Long: `Searches the catalog, picks the Nth displayed result, applies the
customization flags and emits the add-to-build payload to the build sinks
(zap log, build log file, bus). With --preview only the order summary is
printed and nothing is emitted.

Example:
  doorsmith build oak door --pick 2 --width 3 --height 6.5 --material Wood --hardware Handle,Lock`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().IntVar(&buildPick, "pick", 1, "1-based index of the displayed result to customize")
	buildCmd.Flags().StringVar(&buildWidth, "width", "", "Width in feet")
	buildCmd.Flags().StringVar(&buildHeight, "height", "", "Height in feet")
	buildCmd.Flags().StringVar(&buildMaterial, "material", "", "Material choice (e.g. Wood, Metal, Glass)")
	buildCmd.Flags().StringVar(&buildColor, "color", "", "Color (free text, e.g. #333333)")
	buildCmd.Flags().StringSliceVar(&buildHardware, "hardware", nil, "Hardware options, comma separated")
	buildCmd.Flags().BoolVar(&buildPreview, "preview", false, "Only print the order summary")
	buildCmd.Flags().StringVar(&buildFilter, "filter", "", "Material filter applied before picking: wood, metal, other")
	buildCmd.Flags().StringVar(&buildSort, "sort", "", "Sort applied before picking")
}

func selectionFromFlags() customize.Selection {
	sel := customize.Selection{}.
		WithWidth(buildWidth).
		WithHeight(buildHeight).
		WithMaterial(buildMaterial).
		WithColor(buildColor)
	for _, hw := range buildHardware {
		if !sel.HasHardware(hw) {
			sel = sel.ToggleHardware(hw)
		}
	}
	return sel
}

func runBuild(cmd *cobra.Command, args []string) error {
	filter, err := filterFromFlags(buildFilter, buildSort)
	if err != nil {
		return err
	}

	c := currentConfig()
	ctx, cancel := context.WithTimeout(context.Background(), c.GetTimeout())
	defer cancel()

	state, err := searchState(ctx, newClient(), joinArgs(args), filter)
	if err != nil {
		return err
	}

	items := state.Displayed()
	if buildPick < 1 || buildPick > len(items) {
		return fmt.Errorf("--pick %d out of range: %d result(s) displayed", buildPick, len(items))
	}
	item := items[buildPick-1]

	state, _ = configurator.Update(state, configurator.SelectionChanged{Selection: selectionFromFlags()})

	if buildPreview {
		state, _ = configurator.Update(state, configurator.PreviewRequested{Key: item.Key})
		fmt.Println(renderMarkdown(customize.Markdown(state.Focus, state.Selection)))
		fmt.Println(state.Summary)
		return nil
	}

	state, eff := configurator.Update(state, configurator.AddToBuildRequested{Key: item.Key, At: now()})
	emit, ok := eff.(configurator.EmitEffect)
	if !ok {
		return fmt.Errorf("product #%d could not be added to the build", item.ID)
	}

	sinks := buildlog.Open(c.Build, logger)
	defer func() {
		if cerr := sinks.Close(); cerr != nil {
			logger.Warn("Closing build sinks", zap.Error(cerr))
		}
	}()
	if err := sinks.Emit(ctx, emit.Payload); err != nil {
		return fmt.Errorf("emit build %s: %w", emit.Payload.BuildID, err)
	}

	fmt.Println(state.Notice)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(emit.Payload)
}

// renderMarkdown renders the order summary for a terminal, falling back to the raw markdown.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("notty"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
