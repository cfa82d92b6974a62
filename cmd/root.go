package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI and the MCP server
func SetVersion(v string) {
	version = v
}

// newRootCmd builds the command tree. Tests build a fresh tree per case.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "teamdates",
		Short: "Collect and compare the dates a team is available",
		Long: `teamdates records which calendar dates each team member can make and
shows which dates suit the most people.

It can run as:
  - A CLI tool for picking dates and viewing the summary (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "teamdates version %s\n" .Version}}`)

	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(newPickCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd := newRootCmd()

	// If no subcommand is provided, show the summary by default
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"summary"})
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "teamdates version %s\n", version)
		},
	}
}
