// Package server provides the MCP server context and the HTTP servers of
// teamdates.
//
// # Key Components
//
// ServerContext carries the availability store, metrics recorder, audit
// logger and read-only flag to MCP tool and resource handlers.
//
// HTTPServer exposes the MCP server over the streamable HTTP transport on
// /mcp, next to the health endpoints:
//   - /healthz: liveness
//   - /readyz: readiness, including a storage backend ping
//   - /healthz/detailed: uptime, backend and check details
//
// RateLimiter optionally limits each client to a token bucket on /mcp.
//
// MetricsServer serves Prometheus metrics on a dedicated port.
package server
