// Package gateway exposes the catalog over MCP on stdio.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"slackmcp/internal/domain"
	"slackmcp/internal/infra/catalog"
)

// Dispatcher executes one tool call.
type Dispatcher interface {
	Execute(ctx context.Context, desc domain.Descriptor, args map[string]any) (domain.Result, error)
}

type Gateway struct {
	dispatcher Dispatcher
	logger     *zap.Logger
	server     *mcp.Server
}

func New(dispatcher Dispatcher, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		dispatcher: dispatcher,
		logger:     logger.Named("gateway"),
	}
}

// Run registers every catalog tool and serves MCP on stdio until ctx is
// cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	server := g.buildServer()
	g.logger.Info("gateway starting (stdio transport)", zap.Int("tools", len(catalog.All())))
	return server.Run(ctx, &mcp.StdioTransport{})
}

func (g *Gateway) buildServer() *mcp.Server {
	g.server = mcp.NewServer(&mcp.Implementation{
		Name:    "slackmcpd",
		Version: "0.1.0",
	}, &mcp.ServerOptions{HasTools: true})

	for _, desc := range catalog.All() {
		tool := &mcp.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: catalog.InputSchema(desc),
		}
		g.server.AddTool(tool, g.toolHandler(desc))
	}
	return g.server
}

func (g *Gateway) toolHandler(desc domain.Descriptor) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(domain.E(domain.KindValidation, "gateway.decode",
					"arguments must be a JSON object", err)), nil
			}
		}

		result, err := g.dispatcher.Execute(ctx, desc, args)
		if err != nil {
			return errorResult(err), nil
		}

		payload := result.Fields
		if result.NextCursor != "" {
			enriched := make(map[string]any, len(payload)+1)
			for name, value := range payload {
				enriched[name] = value
			}
			enriched["next_cursor"] = result.NextCursor
			payload = enriched
		}

		encoded, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return errorResult(err), nil
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: string(encoded)}},
			StructuredContent: payload,
		}, nil
	}
}

// errorResult renders err as a tool error rather than a protocol error so
// the agent sees the taxonomy kind and can decide whether to retry.
func errorResult(err error) *mcp.CallToolResult {
	text := err.Error()
	if code := domain.UpstreamCode(err); code != "" {
		text = fmt.Sprintf("%s [upstream error: %s]", text, code)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
