package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// MCPEndpointPath is where the streamable HTTP transport is mounted.
const MCPEndpointPath = "/mcp"

// HTTPServer serves the MCP server over streamable HTTP together with the
// health endpoints.
type HTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	serverContext *ServerContext
	health        *HealthChecker
	rateLimiter   *RateLimiter

	mu         sync.Mutex
	httpServer *http.Server
}

// NewHTTPServer creates an HTTP server for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext) *HTTPServer {
	return &HTTPServer{
		mcpServer:     mcpServer,
		serverContext: sc,
		health:        NewHealthChecker(sc),
	}
}

// Health returns the health checker, e.g. to flip readiness on shutdown.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// SetRateLimiter limits requests to the MCP endpoint. Health endpoints are
// never limited. Must be called before Handler or Start.
func (s *HTTPServer) SetRateLimiter(rl *RateLimiter) {
	s.rateLimiter = rl
}

// Handler returns the routed handler with request metrics and tracing applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
	)
	var mcpHandler http.Handler = streamable
	if s.rateLimiter != nil {
		mcpHandler = s.rateLimiter.Middleware(mcpHandler)
	}
	mux.Handle(MCPEndpointPath, mcpHandler)
	s.health.RegisterHealthEndpoints(mux)

	return otelhttp.NewHandler(s.metricsMiddleware(mux), "teamdates.http")
}

// Start listens on addr and serves until Shutdown.
func (s *HTTPServer) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	slog.Info("starting streamable HTTP server",
		"addr", ln.Addr().String(),
		"endpoint", MCPEndpointPath)
	return srv.Serve(ln)
}

// Shutdown marks the server not ready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func (s *HTTPServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		if s.serverContext != nil {
			s.serverContext.Metrics().RecordHTTPRequest(r.Context(), r.Method, metricsPath(r.URL.Path), rec.status, time.Since(start))
		}
	})
}

// metricsPath maps a request path to a fixed label set so unknown paths
// cannot grow the number of series.
func metricsPath(path string) string {
	switch path {
	case MCPEndpointPath, "/healthz", "/readyz", "/healthz/detailed":
		return path
	default:
		return "other"
	}
}

// statusRecorder captures the response status. It forwards Flush so the
// streamable transport can stream events.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
