package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
	"github.com/alanyoungcy/predictionmcp/internal/service"
)

// Tool names are part of the public contract.
const (
	GetMarketsName    = "getMarkets"
	SearchMarketsName = "searchMarkets"
)

// MarketService is the aggregation surface the market tools need. It is
// declared locally so the tools do not depend on the concrete service.
type MarketService interface {
	List(ctx context.Context, q domain.MarketQuery) ([]domain.RawMarket, error)
	Search(ctx context.Context, q domain.MarketQuery) ([]domain.RawMarket, error)
}

// ListJSON runs a listing and returns the formatted markets as a JSON string.
func ListJSON(ctx context.Context, markets MarketService, q domain.MarketQuery) (string, error) {
	raw, err := markets.List(ctx, q)
	if err != nil {
		return "", err
	}
	return service.MarshalMarkets(service.FormatMarkets(raw))
}

// SearchJSON runs a search and returns the formatted markets as a JSON string.
func SearchJSON(ctx context.Context, markets MarketService, q domain.MarketQuery) (string, error) {
	raw, err := markets.Search(ctx, q)
	if err != nil {
		return "", err
	}
	return service.MarshalMarkets(service.FormatMarkets(raw))
}

// sourceNames lists the accepted source selectors for the tool schema.
func sourceNames() []string {
	names := make([]string, 0, len(domain.Sources))
	for _, s := range domain.Sources {
		names = append(names, string(s))
	}
	return names
}

func paginationOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("limit",
			mcp.Description("Number of markets to fetch"),
			mcp.DefaultNumber(domain.DefaultLimit),
			mcp.Min(1),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of markets to skip"),
			mcp.DefaultNumber(domain.DefaultOffset),
			mcp.Min(0),
		),
		mcp.WithString("source",
			mcp.Description("Source of the markets"),
			mcp.Enum(sourceNames()...),
			mcp.DefaultString(string(domain.SourceAll)),
		),
	}
}

// GetMarketsTool lists recent markets from Polymarket, Kalshi, or both.
type GetMarketsTool struct {
	markets MarketService
	logger  *slog.Logger
}

// NewGetMarketsTool creates the getMarkets tool.
func NewGetMarketsTool(markets MarketService, logger *slog.Logger) *GetMarketsTool {
	return &GetMarketsTool{markets: markets, logger: logger.With(slog.String("tool", GetMarketsName))}
}

// Build implements MCPTool.
func (t *GetMarketsTool) Build() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Get the list of markets from Polymarket or Kalshi"),
		mcp.WithReadOnlyHintAnnotation(true),
	}, paginationOptions()...)
	return mcp.NewTool(GetMarketsName, opts...)
}

// Invoke implements MCPTool.
func (t *GetMarketsTool) Invoke(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := ParseMarketQuery(request.GetArguments(), false)
	if err != nil {
		t.logger.DebugContext(ctx, "tools: rejected arguments", slog.String("error", err.Error()))
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}

	t.logger.DebugContext(ctx, "tools: call",
		slog.Int("limit", q.Limit),
		slog.Int("offset", q.Offset),
		slog.String("source", string(q.Source)),
	)

	payload, err := ListJSON(ctx, t.markets, q)
	if err != nil {
		t.logger.ErrorContext(ctx, "tools: getMarkets failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("getMarkets: %w", err)
	}
	return mcp.NewToolResultText(payload), nil
}

// SearchMarketsTool searches markets by text on Polymarket, Kalshi, or both.
type SearchMarketsTool struct {
	markets MarketService
	logger  *slog.Logger
}

// NewSearchMarketsTool creates the searchMarkets tool.
func NewSearchMarketsTool(markets MarketService, logger *slog.Logger) *SearchMarketsTool {
	return &SearchMarketsTool{markets: markets, logger: logger.With(slog.String("tool", SearchMarketsName))}
}

// Build implements MCPTool.
func (t *SearchMarketsTool) Build() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Search for markets from Polymarket or Kalshi"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Query to search for"),
			mcp.MinLength(1),
		),
	}, paginationOptions()...)
	return mcp.NewTool(SearchMarketsName, opts...)
}

// Invoke implements MCPTool.
func (t *SearchMarketsTool) Invoke(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := ParseMarketQuery(request.GetArguments(), true)
	if err != nil {
		t.logger.DebugContext(ctx, "tools: rejected arguments", slog.String("error", err.Error()))
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}

	t.logger.DebugContext(ctx, "tools: call",
		slog.String("query", q.Query),
		slog.Int("limit", q.Limit),
		slog.Int("offset", q.Offset),
		slog.String("source", string(q.Source)),
	)

	payload, err := SearchJSON(ctx, t.markets, q)
	if err != nil {
		t.logger.ErrorContext(ctx, "tools: searchMarkets failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searchMarkets: %w", err)
	}
	return mcp.NewToolResultText(payload), nil
}
