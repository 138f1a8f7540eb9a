package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"slackmcp/internal/domain"
	"slackmcp/internal/infra/catalog"
)

type fakeDispatcher struct {
	lastDesc domain.Descriptor
	lastArgs map[string]any
	result   domain.Result
	err      error
}

func (f *fakeDispatcher) Execute(ctx context.Context, desc domain.Descriptor, args map[string]any) (domain.Result, error) {
	f.lastDesc = desc
	f.lastArgs = args
	if f.err != nil {
		return domain.Result{}, f.err
	}
	return f.result, nil
}

func connectClient(t *testing.T, ctx context.Context, server *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ct, st := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func TestGatewayListsEveryCatalogTool(t *testing.T) {
	ctx := context.Background()
	gw := New(&fakeDispatcher{}, nil)
	session := connectClient(t, ctx, gw.buildServer())

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, res.Tools, len(catalog.All()))
}

func TestGatewayToolCallReturnsPayloadWithCursor(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{
		result: domain.Result{
			Fields:     map[string]any{"channels": []any{map[string]any{"id": "C1"}}},
			NextCursor: "cursor-2",
		},
	}
	gw := New(dispatcher, nil)
	session := connectClient(t, ctx, gw.buildServer())

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "slack_list_conversations",
		Arguments: json.RawMessage(`{"limit": 10}`),
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "slack_list_conversations", dispatcher.lastDesc.Name)
	require.Equal(t, map[string]any{"limit": float64(10)}, dispatcher.lastArgs)

	require.Len(t, res.Content, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*mcp.TextContent).Text), &payload))
	require.Equal(t, "cursor-2", payload["next_cursor"])
	require.Contains(t, payload, "channels")
}

func TestGatewayToolErrorCarriesTaxonomy(t *testing.T) {
	ctx := context.Background()
	upstreamErr := domain.E(domain.KindUpstream, "dispatch.call", "slack_users_info: user_not_found", nil)
	upstreamErr.Meta = map[string]string{"upstream_code": "user_not_found"}
	dispatcher := &fakeDispatcher{err: upstreamErr}
	gw := New(dispatcher, nil)
	session := connectClient(t, ctx, gw.buildServer())

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "slack_users_info",
		Arguments: json.RawMessage(`{"user": "U1"}`),
	})
	require.NoError(t, err, "taxonomy errors surface as tool errors, not protocol errors")
	require.True(t, res.IsError)

	text := res.Content[0].(*mcp.TextContent).Text
	require.Contains(t, text, "upstream")
	require.Contains(t, text, "user_not_found")
}

func TestToolHandlerRejectsMalformedArguments(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	gw := New(dispatcher, nil)

	desc, err := catalog.Resolve("slack_auth_test")
	require.NoError(t, err)

	handler := gw.toolHandler(desc)
	res, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      desc.Name,
			Arguments: json.RawMessage(`["not", "an", "object"]`),
		},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, res.Content[0].(*mcp.TextContent).Text, "arguments must be a JSON object")
	require.Empty(t, dispatcher.lastDesc.Name)
}

func TestErrorResultPlainError(t *testing.T) {
	res := errorResult(errors.New("boom"))
	require.True(t, res.IsError)
	require.Equal(t, "boom", res.Content[0].(*mcp.TextContent).Text)
}
