package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/teamdates/internal/server"
)

// Resource URIs.
const (
	SummaryURI   = "availability://summary"
	BestDatesURI = "availability://best-dates"
	UsersURI     = "availability://users"
)

// RegisterAvailabilityResources registers read-only views of the team's
// availability.
func RegisterAvailabilityResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	summaryResource := mcp.NewResource(
		SummaryURI,
		"Availability Summary",
		mcp.WithResourceDescription("Every picked date with the users who picked it, most popular first"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(summaryResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(request, sc.Store().Summary(ctx))
	})

	bestResource := mcp.NewResource(
		BestDatesURI,
		"Best Dates",
		mcp.WithResourceDescription("The dates picked by the most users"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(bestResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(request, sc.Store().BestDates(ctx))
	})

	usersResource := mcp.NewResource(
		UsersURI,
		"Participants",
		mcp.WithResourceDescription("Everyone who has picked at least one date"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(usersResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(request, sc.Store().AllUsers(ctx))
	})

	return nil
}

func jsonContents(request mcp.ReadResourceRequest, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
