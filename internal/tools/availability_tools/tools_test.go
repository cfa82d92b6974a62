package availability_tools

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/teamdates/internal/availability"
	"github.com/teemow/teamdates/internal/server"
	"github.com/teemow/teamdates/internal/storage"
	"github.com/teemow/teamdates/internal/tools/batch"
)

func newTestContext(t *testing.T, backend *storage.MemoryBackend, opts ...server.Option) *server.ServerContext {
	t.Helper()
	if backend == nil {
		backend = storage.NewMemoryBackend()
	}
	store, err := availability.NewStore(availability.Config{Backend: backend})
	require.NoError(t, err)
	sc, err := server.NewServerContext(context.Background(), store, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestRegisterAvailabilityTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
	}{
		{
			name:     "read-write",
			readOnly: false,
			want:     []string{ToolBestDates, ToolGetUser, ToolGetUsers, ToolSave, ToolSummary, ToolTeammates, ToolUsers},
		},
		{
			name:     "read-only omits save",
			readOnly: true,
			want:     []string{ToolBestDates, ToolGetUser, ToolGetUsers, ToolSummary, ToolTeammates, ToolUsers},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestContext(t, nil, server.WithReadOnly(tt.readOnly))
			mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0", mcpserver.WithToolCapabilities(true))

			require.NoError(t, RegisterAvailabilityTools(mcpSrv, sc, tt.readOnly))
			assert.Equal(t, tt.want, listToolNames(t, mcpSrv))
		})
	}
}

func listToolNames(t *testing.T, s *mcpserver.MCPServer) []string {
	t.Helper()
	names := make([]string, 0)
	for name := range s.ListTools() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestHandleSaveAndGetUser(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t, nil)

	result, err := handleSave(ctx, call(ToolSave, map[string]interface{}{
		"user":  "Alice",
		"dates": []interface{}{"2024-01-11", "2024-01-10"},
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "Saved 2 date(s) for Alice", resultText(t, result))

	result, err = handleGetUser(ctx, call(ToolGetUser, map[string]interface{}{"user": "Alice"}), sc)
	require.NoError(t, err)
	var dates []string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &dates))
	assert.Equal(t, []string{"2024-01-10", "2024-01-11"}, dates)
}

func TestHandleSave_ClearsWithEmptyDates(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t, nil)
	require.NoError(t, sc.Store().SaveUserAvailability(ctx, "Alice", []string{"2024-01-10"}))

	result, err := handleSave(ctx, call(ToolSave, map[string]interface{}{
		"user":  "Alice",
		"dates": []interface{}{},
	}), sc)
	require.NoError(t, err)
	assert.Equal(t, "Cleared all dates for Alice", resultText(t, result))
	assert.Empty(t, sc.Store().AllUsers(ctx))
}

func TestHandlers_UserNamesUsedExactly(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	sc := newTestContext(t, backend)
	require.NoError(t, sc.Store().SaveUserAvailability(ctx, "Alice", []string{"2024-01-09"}))

	result, err := handleSave(ctx, call(ToolSave, map[string]interface{}{
		"user":  " Alice ",
		"dates": []interface{}{"2024-01-10"},
	}), sc)
	require.NoError(t, err)
	assert.Equal(t, "Saved 1 date(s) for  Alice ", resultText(t, result))

	result, err = handleGetUser(ctx, call(ToolGetUser, map[string]interface{}{"user": " Alice "}), sc)
	require.NoError(t, err)
	assert.JSONEq(t, `["2024-01-10"]`, resultText(t, result))

	result, err = handleGetUser(ctx, call(ToolGetUser, map[string]interface{}{"user": "Alice"}), sc)
	require.NoError(t, err)
	assert.JSONEq(t, `["2024-01-09"]`, resultText(t, result))

	result, err = handleGetUsers(ctx, call(ToolGetUsers, map[string]interface{}{
		"users": []interface{}{" Alice "},
	}), sc)
	require.NoError(t, err)
	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &br))
	require.Len(t, br.Results, 1)
	assert.Equal(t, []interface{}{"2024-01-10"}, br.Results[0].Result)

	result, err = handleSave(ctx, call(ToolSave, map[string]interface{}{
		"user":  " Alice ",
		"dates": []interface{}{},
	}), sc)
	require.NoError(t, err)
	assert.Equal(t, "Cleared all dates for  Alice ", resultText(t, result))

	data, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2024-01-09":{"Alice":true}}`, string(data))
}

func TestHandleSave_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		args        map[string]interface{}
		setup       func(b *storage.MemoryBackend)
		opts        []server.Option
		errContains string
	}{
		{
			name:        "missing user",
			args:        map[string]interface{}{"dates": "2024-01-10"},
			errContains: "user is required",
		},
		{
			name:        "invalid date",
			args:        map[string]interface{}{"user": "Alice", "dates": "2024-13-01"},
			errContains: "invalid date",
		},
		{
			name:        "invalid date rejected before storage",
			args:        map[string]interface{}{"user": "Alice", "dates": []interface{}{"2024-01-10", "nope"}},
			setup:       func(b *storage.MemoryBackend) { b.FailLoad(errors.New("unreachable")) },
			errContains: "invalid date",
		},
		{
			name:        "bad dates type",
			args:        map[string]interface{}{"user": "Alice", "dates": 5},
			errContains: "dates must be a string or array of strings",
		},
		{
			name:        "write failure",
			args:        map[string]interface{}{"user": "Alice", "dates": "2024-01-10"},
			setup:       func(b *storage.MemoryBackend) { b.FailSave(errors.New("disk full")) },
			errContains: "Failed to save availability",
		},
		{
			name:        "read-only",
			args:        map[string]interface{}{"user": "Alice", "dates": "2024-01-10"},
			opts:        []server.Option{server.WithReadOnly(true)},
			errContains: "read-only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := storage.NewMemoryBackend()
			if tt.setup != nil {
				tt.setup(backend)
			}
			sc := newTestContext(t, backend, tt.opts...)

			result, err := handleSave(ctx, call(ToolSave, tt.args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.errContains)
		})
	}
}

func TestHandleSummary(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t, storage.NewMemoryBackendWithData([]byte(
		`{"2024-01-10":{"Alice":true,"Bob":true},"2024-01-11":{"Alice":true},"2024-01-09":{"Carol":true}}`)))

	result, err := handleSummary(ctx, call(ToolSummary, nil), sc)
	require.NoError(t, err)
	var entries []availability.SummaryEntry
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, availability.SummaryEntry{Date: "2024-01-10", Count: 2, Users: []string{"Alice", "Bob"}}, entries[0])
	assert.Equal(t, "2024-01-09", entries[1].Date)
	assert.Equal(t, "2024-01-11", entries[2].Date)

	result, err = handleSummary(ctx, call(ToolSummary, map[string]interface{}{"from": "2024-01-10"}), sc)
	require.NoError(t, err)
	entries = nil
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &entries))
	assert.Len(t, entries, 2)

	result, err = handleSummary(ctx, call(ToolSummary, map[string]interface{}{"to": "soon"}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleBestDates(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t, nil)

	result, err := handleBestDates(ctx, call(ToolBestDates, nil), sc)
	require.NoError(t, err)
	assert.Equal(t, "No dates have been picked yet", resultText(t, result))

	require.NoError(t, sc.Store().SaveUserAvailability(ctx, "Alice", []string{"2024-01-10", "2024-01-12"}))
	require.NoError(t, sc.Store().SaveUserAvailability(ctx, "Bob", []string{"2024-01-10", "2024-01-12"}))
	require.NoError(t, sc.Store().SaveUserAvailability(ctx, "Carol", []string{"2024-01-11"}))

	result, err = handleBestDates(ctx, call(ToolBestDates, nil), sc)
	require.NoError(t, err)
	var best []availability.SummaryEntry
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &best))
	require.Len(t, best, 2)
	assert.Equal(t, "2024-01-10", best[0].Date)
	assert.Equal(t, "2024-01-12", best[1].Date)
}

func TestHandleUsersAndTeammates(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t, nil)
	require.NoError(t, sc.Store().SaveUserAvailability(ctx, "bob", []string{"2024-01-10"}))
	require.NoError(t, sc.Store().SaveUserAvailability(ctx, "Alice", []string{"2024-01-10"}))

	result, err := handleUsers(ctx, call(ToolUsers, nil), sc)
	require.NoError(t, err)
	assert.JSONEq(t, `["Alice","bob"]`, resultText(t, result))

	result, err = handleTeammates(ctx, call(ToolTeammates, map[string]interface{}{"user": "Alice"}), sc)
	require.NoError(t, err)
	assert.JSONEq(t, `["bob"]`, resultText(t, result))

	result, err = handleTeammates(ctx, call(ToolTeammates, map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetUsers(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t, nil)
	require.NoError(t, sc.Store().SaveUserAvailability(ctx, "Alice", []string{"2024-01-10"}))

	result, err := handleGetUsers(ctx, call(ToolGetUsers, map[string]interface{}{
		"users": []interface{}{"Alice", "Bob"},
	}), sc)
	require.NoError(t, err)

	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &br))
	assert.Equal(t, 2, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, "Alice", br.Results[0].ID)
	assert.Equal(t, []interface{}{"2024-01-10"}, br.Results[0].Result)

	result, err = handleGetUsers(ctx, call(ToolGetUsers, map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.True(t, strings.Contains(resultText(t, result), "users is required"))
}

func TestHandleGetUser_MissingUser(t *testing.T) {
	sc := newTestContext(t, nil)

	result, err := handleGetUser(context.Background(), call(ToolGetUser, map[string]interface{}{"user": ""}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
