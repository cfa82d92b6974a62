package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/codes"

	"github.com/teemow/teamdates/internal/instrumentation"
	"github.com/teemow/teamdates/internal/logging"
	"github.com/teemow/teamdates/internal/server"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a tool.<name> span,
// invocation metrics and an audit record.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return InstrumentedToolHandlerWithOperation(toolName, "", sc, handler)
}

// InstrumentedToolHandlerWithOperation is InstrumentedToolHandler that also
// records the store operation behind the tool in the audit log.
func InstrumentedToolHandlerWithOperation(toolName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		args := request.GetArguments()
		user := userFromArgs(args)

		spanAttrs := instrumentation.NewSpanAttributeBuilder().
			WithReadOnly(sc.ReadOnly()).
			WithUserHash(logging.AnonymizeName(user)).
			Build()
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, spanAttrs...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithUser(user).
			WithOperation(operation)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			invocation.Error = resultText(result)
			span.SetStatus(codes.Error, invocation.Error)
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocationWithUser(ctx, toolName, status, user, duration)
		auditLogger.LogToolInvocation(invocation)

		return result, err
	}
}

// resultText returns the first text content of result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		switch text := c.(type) {
		case mcp.TextContent:
			return text.Text
		case *mcp.TextContent:
			return text.Text
		}
	}
	return ""
}
