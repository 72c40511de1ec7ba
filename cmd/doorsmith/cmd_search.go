package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"doorsmith/cmd/doorsmith/ui"
	"doorsmith/cmd/doorsmith/workbench"
	"doorsmith/internal/catalog"
	"doorsmith/internal/configurator"
	"doorsmith/internal/customize"
	"doorsmith/internal/results"
	"doorsmith/internal/view"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	searchMaterial string
	searchSort     string
	searchJSON     bool
)

// searchCmd runs one search and prints the refined results
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog and print the results",
	Long: `Runs a single catalog search, applies the material filter and sort, and
prints the results as a table (or JSON with --json).

Example:
  doorsmith search oak door --material wood --sort price-asc`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchMaterial, "material", "", "Material filter: wood, metal, other")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "Sort: relevance, price-asc, price-desc, name (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
}

// searchItem is the JSON shape of one result.
type searchItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"basePrice"`
	ImageURL    string  `json:"imageUrl"`
	Material    string  `json:"material"`
}

func filterFromFlags(material, sort string) (results.FilterSortConfig, error) {
	mat, err := results.ParseMaterial(material)
	if err != nil {
		return results.FilterSortConfig{}, err
	}
	key := currentConfig().GetDefaultSort()
	if sort != "" {
		if key, err = results.ParseSortKey(sort); err != nil {
			return results.FilterSortConfig{}, err
		}
	}
	return results.FilterSortConfig{Material: mat, Sort: key}, nil
}

// searchState drives the configurator through one search and returns the
// settled state.
func searchState(ctx context.Context, searcher workbench.Searcher, query string, filter results.FilterSortConfig) (configurator.State, error) {
	state, eff := configurator.Update(configurator.New(filter), configurator.SearchSubmitted{Query: query})
	fetch, ok := eff.(configurator.FetchEffect)
	if !ok {
		return state, errors.New(state.Notice)
	}

	logger.Debug("Searching catalog", zap.String("query", fetch.Query), zap.Uint64("seq", fetch.Seq))
	raws, err := searcher.Search(ctx, fetch.Query)
	if err != nil {
		state, _ = configurator.Update(state, configurator.SearchFailed{Seq: fetch.Seq, Err: err})
		return state, fmt.Errorf("search failed (%s): %w", catalog.Kind(err), err)
	}

	items := catalog.MapProducts(raws, currentConfig().Catalog.FallbackImage)
	state, _ = configurator.Update(state, configurator.SearchSucceeded{Seq: fetch.Seq, Items: items})
	logger.Info("Search complete",
		zap.String("query", fetch.Query),
		zap.Int("results", len(items)),
		zap.Int("shown", len(state.Displayed())))
	return state, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	filter, err := filterFromFlags(searchMaterial, searchSort)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), currentConfig().GetTimeout())
	defer cancel()

	state, err := searchState(ctx, newClient(), joinArgs(args), filter)
	if err != nil {
		return err
	}

	items := state.Displayed()
	if searchJSON {
		out := make([]searchItem, 0, len(items))
		for _, it := range items {
			out = append(out, searchItem{
				ID:          it.ID,
				Title:       it.Title,
				Description: it.Description,
				BasePrice:   it.BasePrice,
				ImageURL:    it.ImageURL,
				Material:    it.Material.String(),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	scr := view.Render(state)
	if scr.Kind != view.KindPopulated {
		fmt.Println(scr.Message)
		return nil
	}

	styles := ui.DefaultStyles()
	table := ui.NewSimpleTable(
		fmt.Sprintf("Results for %q (%s, %s)", state.Results.Query(), scr.Filter, scr.Sort),
		[]string{"#", "ID", "Title", "Price", "Material"},
	)
	for i, it := range items {
		table.AddRow(strconv.Itoa(i+1), strconv.Itoa(it.ID), ui.Clip(it.Title, 40), customize.FormatPrice(it.BasePrice), it.Material.String())
	}
	fmt.Println(table.View(styles))
	fmt.Println(scr.Status)
	return nil
}
