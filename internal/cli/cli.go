package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/subsidy-scrape/internal/browser"
	"github.com/pfrederiksen/subsidy-scrape/internal/config"
	"github.com/pfrederiksen/subsidy-scrape/internal/fetch"
	"github.com/pfrederiksen/subsidy-scrape/internal/logger"
	"github.com/pfrederiksen/subsidy-scrape/internal/pipeline"
	"github.com/pfrederiksen/subsidy-scrape/internal/table"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

type options struct {
	data       string
	configPath string
	outputDir  string
	browserURL string
	format     string
	logLevel   string
	verbose    bool
	listModes  bool
}

// openBrowser acquires the session for rendered modes. Replaced in tests.
var openBrowser = func(ctx context.Context, endpoint string) (fetch.Driver, func(), error) {
	s, err := browser.Open(ctx, endpoint)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "subsidy-scrape",
		Short: "Scrape per-state subsidy and spending tables",
		Long: `Fetches one page per state for the selected dataset, extracts the
chart or table data embedded in it and writes one tab-separated file per state.

Datasets are enumerated modes; run with --list-modes to see them.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.data, "data", "", "Dataset mode to scrape, e.g. livestock or spending (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML file with extra modes and settings")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for output tables (default from config, \".\")")
	cmd.Flags().StringVar(&opts.browserURL, "browser-url", "", "DevTools endpoint for rendered modes (default "+browser.DefaultEndpoint+")")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Summary format: text or json")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging (same as --log-level debug)")
	cmd.Flags().BoolVar(&opts.listModes, "list-modes", false, "List available modes and exit")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	if opts.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if opts.browserURL != "" {
		cfg.Browser.Endpoint = opts.browserURL
	}

	if opts.listModes {
		return WriteModes(cmd.OutOrStdout(), cfg)
	}

	name := strings.TrimSpace(opts.data)
	if name == "" {
		return errors.New("--data is required")
	}
	mode, err := cfg.Mode(name)
	if err != nil {
		return err
	}
	regions, err := mode.Catalog.Regions()
	if err != nil {
		return err
	}

	store, err := table.NewStore(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fetcher, release, err := newFetcher(ctx, cfg, mode)
	if err != nil {
		return err
	}
	defer release()

	logger.Info("run started", logger.Fields{
		"mode":       mode.Name,
		"catalog":    string(mode.Catalog),
		"output_dir": store.Dir(),
	})

	runner := pipeline.New(mode, fetcher, store)
	runner.Metrics = logger.NewMetrics()
	report, runErr := runner.Run(ctx, regions)

	metrics := runner.Metrics.Snapshot()
	logger.Info("run finished", metrics.Fields())

	if err := WriteOutput(cmd.OutOrStdout(), report, &metrics, format, opts.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if runErr != nil {
		return runErr
	}
	return nil
}

// newFetcher builds the fetcher for mode. The returned release func must be
// called once the run is over, whatever its outcome.
func newFetcher(ctx context.Context, cfg *config.Config, mode config.Mode) (fetch.Fetcher, func(), error) {
	switch mode.Source {
	case config.SourceDirect:
		return fetch.NewHTTPFetcher(cfg.HTTPTimeout, cfg.UserAgent), func() {}, nil
	case config.SourceRendered:
		driver, release, err := openBrowser(ctx, cfg.Browser.Endpoint)
		if err != nil {
			return nil, nil, fmt.Errorf("opening browser session: %w", err)
		}
		f := fetch.NewBrowserFetcher(driver, mode.Marker, cfg.Browser.Poll())
		f.OnWait = func(url string, attempt int) {
			logger.Debug("waiting for rendered content", logger.Fields{
				"url":     url,
				"attempt": attempt,
				"marker":  mode.Marker,
			})
		}
		return f, release, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q", mode.Source)
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
