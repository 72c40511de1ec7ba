package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"doorsmith/internal/catalog"
	"doorsmith/internal/config"
	"doorsmith/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	searchURL  string
	timeout    time.Duration

	// Loaded configuration, after flag overrides
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "doorsmith",
	Short: "doorsmith - terminal door configurator",
	Long: `doorsmith searches a product catalog for doors, lets you filter and sort
the results, customize dimensions, material, color and hardware, and emits
"add to build" payloads to the build log.

Run without arguments to start the interactive configurator.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		// The interactive configurator owns the terminal; it logs to files only.
		if !cmd.HasParent() {
			logger = zap.NewNop()
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .doorsmith/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&searchURL, "search-url", "", "Product search endpoint (or set DOORSMITH_SEARCH_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Search request timeout (default from config)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file, applies flag overrides and sets up file logging.
func loadConfig() error {
	loaded, err := config.Load(resolvedConfigPath())
	if err != nil {
		return err
	}
	if searchURL != "" {
		loaded.Catalog.BaseURL = searchURL
	}
	if timeout > 0 {
		loaded.Catalog.Timeout = timeout.String()
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	if err := logging.Initialize(logging.Options{
		Dir:        cfg.Logging.Dir,
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	logging.Boot("Config loaded from %s (search=%s)", resolvedConfigPath(), cfg.Catalog.BaseURL)
	return nil
}

func currentConfig() *config.Config {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return cfg
}

func newClient() *catalog.Client {
	c := currentConfig()
	return catalog.NewClient(catalog.Options{
		BaseURL:   c.Catalog.BaseURL,
		UserAgent: c.Catalog.UserAgent,
		Timeout:   c.GetTimeout(),
	})
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
