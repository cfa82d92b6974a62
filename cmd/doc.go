// Package cmd implements the command-line interface for teamdates.
//
// This package provides the following commands:
//   - pick: Replace the dates a team member is available on
//   - show: Print one member's dates
//   - summary: Show how many people picked each date, best dates marked
//   - users: List everyone who picked a date
//   - serve: Start the MCP server to provide tools for AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The summary command is the default command when no subcommand is specified.
// Storage and logging settings are persistent flags with environment and
// YAML config file fallbacks.
package cmd
