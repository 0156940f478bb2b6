package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nao1215/navscout/internal/config"
	"github.com/nao1215/navscout/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "List stored exploration reports",
		Long: `History lists the explorations stored in the local database, newest first.

Every report emitted by 'navscout explore' is stored unless --no-history is
given. The history is an archive only and never affects a new exploration.

Examples:
  # List every stored run
  navscout history

  # List runs for one application
  navscout history https://app.example.com

  # List every application explored so far
  navscout history domains

  # Print a stored report (a unique ID prefix is enough)
  navscout history show 3f2c9a1e

  # Delete a stored run
  navscout history delete 3f2c9a1e-0d4b-4a44-8f0e-9c1b2d3e4f50`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryListCmd,
	}

	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(),
		"Directory holding the history database")

	cmd.AddCommand(newHistoryDomainsCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

func newHistoryDomainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List explored domains",
		Args:  cobra.NoArgs,
		RunE:  runHistoryDomainsCmd,
	}
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a stored report",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")

	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored report",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDeleteCmd,
	}
}

// openHistory opens the existing history database. It returns nil without
// an error when no database has been created yet.
func openHistory(cmd *cobra.Command) (*database.HistoryDB, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// runHistoryListCmd lists stored runs.
func runHistoryListCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if db == nil {
		fmt.Fprintln(out, "No exploration history found.")
		return nil
	}
	defer db.Close()

	domain := ""
	if len(args) > 0 {
		domain = args[0]
	}

	runs, err := db.ListRuns(cmd.Context(), domain)
	if err != nil {
		return err
	}

	printRuns(out, domain, runs)
	return nil
}

// printRuns writes the run listing.
func printRuns(out io.Writer, domain string, runs []database.RunSummary) {
	if len(runs) == 0 {
		if domain != "" {
			fmt.Fprintf(out, "No exploration history found for %s\n", domain)
		} else {
			fmt.Fprintln(out, "No exploration history found.")
		}
		return
	}

	if domain != "" {
		fmt.Fprintf(out, "Exploration history for %s (%d runs):\n\n", domain, len(runs))
	} else {
		fmt.Fprintf(out, "Exploration history (%d runs):\n\n", len(runs))
	}

	fmt.Fprintf(out, "  %-8s  %-20s  %-32s  %6s  %6s  %6s  %s\n",
		"ID", "Date", "Domain", "Routes", "Failed", "Menus", "Status")
	for _, r := range runs {
		status := "complete"
		if r.Cancelled {
			status = "cancelled"
		}
		fmt.Fprintf(out, "  %-8s  %-20s  %-32s  %6d  %6d  %6d  %s\n",
			shortID(r.ID),
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.ExplorationDomain,
			r.Discovered,
			r.Failed,
			r.Menus,
			status,
		)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// runHistoryDomainsCmd lists the exploration domains with stored runs.
func runHistoryDomainsCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if db == nil {
		fmt.Fprintln(out, "No exploration history found.")
		return nil
	}
	defer db.Close()

	domains, err := db.ListDomains(cmd.Context())
	if err != nil {
		return err
	}
	if len(domains) == 0 {
		fmt.Fprintln(out, "No exploration history found.")
		return nil
	}

	fmt.Fprintf(out, "Explored domains (%d):\n\n", len(domains))
	for _, domain := range domains {
		fmt.Fprintf(out, "  %s\n", domain)
	}
	return nil
}

// runHistoryShowCmd prints one stored report.
func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	jsonReport, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownReport, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonReport && markdownReport {
		return config.ErrConflictingReportFormats
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("%w: %s", database.ErrRunNotFound, args[0])
	}
	defer db.Close()

	stored, err := db.GetReport(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	_, err = newReportWriter(jsonReport, markdownReport, getVerboseFlag(cmd), cmd.OutOrStdout()).Write(stored)
	return err
}

// runHistoryDeleteCmd removes one stored run.
func runHistoryDeleteCmd(cmd *cobra.Command, args []string) error {
	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("%w: %s", database.ErrRunNotFound, args[0])
	}
	defer db.Close()

	if err := db.DeleteRun(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
	return nil
}
