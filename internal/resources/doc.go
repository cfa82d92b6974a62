// Package resources exposes read-only availability views as MCP resources:
// the summary, the best dates and the participant list. Each resource is
// rendered as JSON from the store at read time.
package resources
