package availability_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/teamdates/internal/availability"
	"github.com/teemow/teamdates/internal/logging"
	"github.com/teemow/teamdates/internal/server"
	"github.com/teemow/teamdates/internal/tools/batch"
	"github.com/teemow/teamdates/internal/tools/common"
)

func handleGetUser(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	user, err := common.GetUserFromArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dates, err := sc.Store().UserAvailability(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(dates)
}

func handleGetUsers(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	users, err := batch.ParseStringOrArray(request.GetArguments()["users"], "users")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.ProcessBatch(users, func(user string) ([]string, error) {
		return sc.Store().UserAvailability(ctx, user)
	})
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleSave(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.ReadOnly() {
		return mcp.NewToolResultError("server is running in read-only mode"), nil
	}

	args := request.GetArguments()
	user, err := common.GetUserFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dates, err := batch.ParseStringList(args["dates"], "dates")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	saved, err := availability.NormalizeDates(dates)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := sc.Store().SaveUserAvailability(ctx, user, saved); err != nil {
		if errors.Is(err, availability.ErrInvalidDate) || errors.Is(err, availability.ErrEmptyUser) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sc.Logger().Error("availability_save failed", logging.UserHash(user), logging.Err(err))
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save availability: %v", err)), nil
	}

	if len(saved) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Cleared all dates for %s", user)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved %d date(s) for %s", len(saved), user)), nil
}

func handleSummary(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	from := common.GetOptionalString(args, "from")
	to := common.GetOptionalString(args, "to")

	entries, err := sc.Store().SummaryRange(ctx, from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

func handleBestDates(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	best := sc.Store().BestDates(ctx)
	if len(best) == 0 {
		return mcp.NewToolResultText("No dates have been picked yet"), nil
	}
	return jsonResult(best)
}

func handleUsers(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return jsonResult(sc.Store().AllUsers(ctx))
}

func handleTeammates(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	user, err := common.GetUserFromArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mates, err := sc.Store().Teammates(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(mates)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
