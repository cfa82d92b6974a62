// Package batch provides helpers for MCP tools that operate on several
// items in one call.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Running an operation per item while tolerating partial failures
//   - Formatting batch results in a consistent structure
package batch
