package availability_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/teamdates/internal/availability"
	"github.com/teemow/teamdates/internal/server"
	"github.com/teemow/teamdates/internal/tools/common"
)

// Tool names.
const (
	ToolGetUser   = "availability_get_user"
	ToolGetUsers  = "availability_get_users"
	ToolSave      = "availability_save"
	ToolSummary   = "availability_summary"
	ToolBestDates = "availability_best_dates"
	ToolUsers     = "availability_users"
	ToolTeammates = "availability_teammates"
)

// RegisterAvailabilityTools registers all availability tools with the MCP
// server. availability_save is left out in read-only mode.
func RegisterAvailabilityTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	getUserTool := mcp.NewTool(ToolGetUser,
		mcp.WithDescription("Get the dates a user has marked as available, in ascending order"),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Display name of the participant, matched exactly (case and whitespace)"),
		),
	)
	s.AddTool(getUserTool, wrap(ToolGetUser, availability.OpGetUser, sc, handleGetUser))

	getUsersTool := mcp.NewTool(ToolGetUsers,
		mcp.WithDescription("Get the available dates of several users in one call"),
		mcp.WithArray("users",
			mcp.Required(),
			mcp.Description("Display names of the participants. A single name string is also accepted."),
			mcp.Items(map[string]interface{}{"type": "string"}),
		),
	)
	s.AddTool(getUsersTool, wrap(ToolGetUsers, availability.OpGetUser, sc, handleGetUsers))

	summaryTool := mcp.NewTool(ToolSummary,
		mcp.WithDescription("Get every date with at least one available user, sorted by number of users (descending) then date"),
		mcp.WithString("from",
			mcp.Description("Only include dates on or after this date (YYYY-MM-DD)"),
		),
		mcp.WithString("to",
			mcp.Description("Only include dates on or before this date (YYYY-MM-DD)"),
		),
	)
	s.AddTool(summaryTool, wrap(ToolSummary, availability.OpSummary, sc, handleSummary))

	bestDatesTool := mcp.NewTool(ToolBestDates,
		mcp.WithDescription("Get the date or dates on which the most users are available"),
	)
	s.AddTool(bestDatesTool, wrap(ToolBestDates, availability.OpBestDates, sc, handleBestDates))

	usersTool := mcp.NewTool(ToolUsers,
		mcp.WithDescription("List every user who has picked at least one date, sorted case-insensitively"),
	)
	s.AddTool(usersTool, wrap(ToolUsers, availability.OpUsers, sc, handleUsers))

	teammatesTool := mcp.NewTool(ToolTeammates,
		mcp.WithDescription("List the other users who have already picked dates"),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Display name of the participant to exclude"),
		),
	)
	s.AddTool(teammatesTool, wrap(ToolTeammates, availability.OpTeammates, sc, handleTeammates))
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	saveTool := mcp.NewTool(ToolSave,
		mcp.WithDescription("Replace a user's available dates. Dates not listed are removed; an empty list clears the user's selection."),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Display name of the participant, matched exactly (case and whitespace)"),
		),
		mcp.WithArray("dates",
			mcp.Required(),
			mcp.Description("Dates in YYYY-MM-DD format. A comma-separated string is also accepted."),
			mcp.Items(map[string]interface{}{"type": "string"}),
		),
	)
	s.AddTool(saveTool, wrap(ToolSave, availability.OpSave, sc, handleSave))
}

type handlerFunc func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

func wrap(name, operation string, sc *server.ServerContext, h handlerFunc) common.ToolHandler {
	return common.InstrumentedToolHandlerWithOperation(name, operation, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h(ctx, request, sc)
		})
}
