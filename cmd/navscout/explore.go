package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/navscout/internal/browser"
	"github.com/nao1215/navscout/internal/config"
	"github.com/nao1215/navscout/internal/crawler"
	"github.com/nao1215/navscout/internal/database"
	"github.com/nao1215/navscout/internal/explorer"
	navlog "github.com/nao1215/navscout/internal/log"
	"github.com/nao1215/navscout/internal/model"
	"github.com/nao1215/navscout/internal/report"
	"github.com/spf13/cobra"
)

// NewExploreCmd creates the explore command.
func NewExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore [start-url]",
		Short: "Map the pages and menus of an authenticated web application",
		Long: `Explore opens a browser session, restores a saved login, and visits every
page reachable from the start URL on the same origin, breadth-first.

Logout links are recorded but never followed. Pages that fail to load are
retried with a fixed delay, then listed as failed routes. The menus found on
each page are merged into one navigation hierarchy.

Examples:
  # Explore with a saved storage state from a separate login step
  navscout explore --base-url https://login.example.com \
    --auth-state state.json https://app.example.com/dashboard

  # Write the JSON report to a file
  navscout explore -j -o report.json --base-url https://login.example.com \
    --start-url https://app.example.com/

  # Reuse a logged-in Chromium profile with a visible window
  navscout explore --profile-dir ~/.config/chromium --headless=false \
    --base-url https://login.example.com https://app.example.com/

Configuration file (.navscout.yaml) example:
  defaults:
    maxRetries: 2
  sites:
    https://app.example.com:
      baseUrl: https://login.example.com
      authState: ./state.json
      maxPages: 200
      ignorePatterns:
        - "/admin/*"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExploreCmd,
	}

	// Target flags
	cmd.Flags().StringP("start-url", "s", "",
		"Post-login page to start from (may also be given as an argument)")
	cmd.Flags().StringP("base-url", "b", "",
		"Authentication origin recorded in the report")
	cmd.Flags().StringP("auth-state", "a", "",
		"Saved browser storage state (cookies and localStorage) to restore")

	// Exploration flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of routes to discover")
	cmd.Flags().IntP("max-retries", "r", config.DefaultMaxRetries,
		"Retries for a page that fails to load")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryDelay,
		"Delay before a failed page is retried")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page load")
	cmd.Flags().StringSlice("ignore", nil,
		"Path glob whose links are not followed (repeatable)")
	cmd.Flags().StringSlice("follow", nil,
		"Only follow links whose path matches this glob (repeatable)")

	// Browser flags
	cmd.Flags().Bool("headless", true,
		"Run the browser without a window")
	cmd.Flags().String("browser-bin", "",
		"Chromium binary to launch (default: auto-detect)")
	cmd.Flags().String("profile-dir", "",
		"Chromium user data directory to reuse")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .navscout.yaml in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed; JSON and Markdown also print a text summary)")
	cmd.Flags().Bool("no-history", false,
		"Do not store the report in the history database")

	return cmd
}

// runExploreCmd executes the explore command.
func runExploreCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runExplore(ctx, cfg, newOpener(cfg, logger), cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogJSONFlag retrieves the log-json flag from the command or its parent.
func getLogJSONFlag(cmd *cobra.Command) bool {
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs, err = cmd.Root().PersistentFlags().GetBool("log-json")
		if err != nil {
			return false
		}
	}
	return jsonLogs
}

// buildConfig creates a Config from defaults, the configuration file, and
// cobra command flags, in that order of precedence from lowest to highest.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = getLogJSONFlag(cmd)

	var err error

	cfg.StartURL, err = cmd.Flags().GetString("start-url")
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		if cfg.StartURL != "" && cfg.StartURL != args[0] {
			return nil, fmt.Errorf("start URL given twice: %q and %q", cfg.StartURL, args[0])
		}
		cfg.StartURL = args[0]
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// Otherwise silently continue without one.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		origin, err := crawler.Origin(cfg.StartURL)
		if err != nil {
			// Validate reports a bad start URL; only defaults apply here.
			cfg.ApplySite(file.Defaults)
		} else {
			cfg.ApplySite(file.GetSiteConfig(origin))
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// applyFlags copies explicitly set flags onto cfg. Flags left at their
// defaults do not override values from the configuration file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	stringFlags := map[string]*string{
		"base-url":    &cfg.BaseURL,
		"auth-state":  &cfg.AuthStatePath,
		"browser-bin": &cfg.BrowserBin,
		"profile-dir": &cfg.ProfileDir,
		"output":      &cfg.ReportFile,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	intFlags := map[string]*int{
		"max-pages":   &cfg.MaxPages,
		"max-retries": &cfg.MaxRetries,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	durationFlags := map[string]*time.Duration{
		"retry-delay": &cfg.RetryDelay,
		"timeout":     &cfg.Timeout,
	}
	for name, dst := range durationFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetDuration(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	sliceFlags := map[string]*[]string{
		"ignore": &cfg.IgnorePatterns,
		"follow": &cfg.FollowPatterns,
	}
	for name, dst := range sliceFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	var err error
	if flags.Changed("headless") {
		if cfg.Headless, err = flags.GetBool("headless"); err != nil {
			return err
		}
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.SaveHistory = !noHistory

	return nil
}

// setupLogger creates the secure structured logger for CLI output.
func setupLogger(verbose, jsonLogs bool) *slog.Logger {
	if jsonLogs {
		return navlog.NewSecureJSONLogger(os.Stderr, verbose)
	}
	return navlog.NewSecureLogger(os.Stderr, verbose)
}

// newOpener creates the Chromium-backed session opener for cfg.
func newOpener(cfg *config.Config, logger *slog.Logger) *browser.RodOpener {
	return browser.NewRodOpener(
		browser.WithHeadless(cfg.Headless),
		browser.WithBrowserBin(cfg.BrowserBin),
		browser.WithProfileDir(cfg.ProfileDir),
		browser.WithViewport(cfg.ViewportWidth, cfg.ViewportHeight),
		browser.WithLogger(logger),
	)
}

// settingsFromConfig maps the CLI configuration onto explorer settings.
func settingsFromConfig(cfg *config.Config) explorer.Settings {
	return explorer.Settings{
		BaseURL:        cfg.BaseURL,
		StartURL:       cfg.StartURL,
		AuthStatePath:  cfg.AuthStatePath,
		MaxPages:       cfg.MaxPages,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
		Timeout:        cfg.Timeout,
		Headless:       cfg.Headless,
		IgnorePatterns: cfg.IgnorePatterns,
		FollowPatterns: cfg.FollowPatterns,
	}
}

// runExplore runs one exploration and emits its report. A cancelled run
// still writes and stores the partial report before returning the error.
func runExplore(ctx context.Context, cfg *config.Config, opener browser.Opener, stdout io.Writer, logger *slog.Logger) error {
	fmt.Fprintf(os.Stderr, "Exploring %s...\n", cfg.StartURL)

	e := explorer.New(opener, settingsFromConfig(cfg), explorer.WithLogger(logger))
	result, exploreErr := e.Explore(ctx)
	if result == nil {
		return fmt.Errorf("exploration failed: %w", exploreErr)
	}

	fmt.Fprintf(os.Stderr, "Exploration finished in %s: %d routes, %d failed, %d logout links skipped\n\n",
		(time.Duration(result.Summary.DurationMs) * time.Millisecond).Round(time.Millisecond),
		result.Summary.TotalDiscovered,
		result.Summary.TotalFailed,
		result.Summary.TotalSkippedLogout,
	)

	if err := outputReport(cfg, result, stdout); err != nil {
		return errors.Join(exploreErr, fmt.Errorf("failed to write report: %w", err))
	}

	if cfg.SaveHistory {
		// The run context may already be cancelled; the partial report is
		// still worth keeping.
		if err := saveHistory(context.WithoutCancel(ctx), cfg.DBDir, result, logger); err != nil {
			logger.Error("failed to save report to history", "error", err)
		}
	}

	if exploreErr != nil {
		return fmt.Errorf("exploration interrupted: %w", exploreErr)
	}
	return nil
}

// outputReport outputs the report in the requested format. A JSON or
// Markdown report written to a file is accompanied by the text report on
// stdout.
func outputReport(cfg *config.Config, result *model.Report, stdout io.Writer) error {
	if cfg.ReportFile == "" {
		_, err := newReportWriter(cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose, stdout).Write(result)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports list internal application routes, so only the owner may read them.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	writers := []report.Writer{newReportWriter(cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose, f)}
	if cfg.JSONReport || cfg.MarkdownReport {
		writers = append(writers, report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)))
	}

	_, err = report.NewMultiWriter(writers...).Write(result)
	return err
}

// newReportWriter picks the writer for the selected format. Plain text is
// the default.
func newReportWriter(jsonReport, markdownReport, verbose bool, output io.Writer) report.Writer {
	switch {
	case jsonReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case markdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(verbose))
	}
}

// saveHistory stores the report in the history database.
func saveHistory(ctx context.Context, dbDir string, result *model.Report, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveReport(ctx, result)
	if err != nil {
		return err
	}

	logger.Info("report saved to history", "run_id", id, "domain", result.ExplorationDomain)
	return nil
}
