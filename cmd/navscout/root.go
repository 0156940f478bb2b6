package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for navscout.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "navscout",
		Short: "Route and menu explorer for authenticated web applications",
		Long: `navscout explores a web application behind a login and reports every
reachable page on its origin together with the menu hierarchy that links them.

Authentication is not performed here. Log in once with any browser automation
tool, save the storage state (cookies and localStorage), and pass it with
--auth-state. Logout links are never followed.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	// Add subcommands
	cmd.AddCommand(NewExploreCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
