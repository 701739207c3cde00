package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

// stubService records the queries it receives and returns canned data.
type stubService struct {
	markets []domain.RawMarket
	err     error
	calls   int
	last    domain.MarketQuery
}

func (s *stubService) List(_ context.Context, q domain.MarketQuery) ([]domain.RawMarket, error) {
	s.calls++
	s.last = q
	return s.markets, s.err
}

func (s *stubService) Search(_ context.Context, q domain.MarketQuery) ([]domain.RawMarket, error) {
	s.calls++
	s.last = q
	return s.markets, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestGetMarketsScenario(t *testing.T) {
	svc := &stubService{markets: []domain.RawMarket{
		{Title: "Will X happen?", Liquidity: 1500, Volume24h: 200, URL: "https://a/1"},
		{Title: "Will Y?", URL: "https://a/2"},
	}}
	tool := NewGetMarketsTool(svc, discardLogger())

	res, err := tool.Invoke(context.Background(), callRequest(GetMarketsName, map[string]any{
		"limit":  float64(2),
		"offset": float64(0),
		"source": "polymarket",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t,
		`[{"question":"Will X happen?","liquidity":"$1,500","icon":"","volume24hr":"$200","marketLink":"https://a/1"},`+
			`{"question":"Will Y?","liquidity":"$0","icon":"","volume24hr":"$0","marketLink":"https://a/2"}]`,
		resultText(t, res))
	assert.Equal(t, domain.MarketQuery{Limit: 2, Offset: 0, Source: domain.SourcePolymarket}, svc.last)
}

func TestGetMarketsDefaults(t *testing.T) {
	svc := &stubService{}
	tool := NewGetMarketsTool(svc, discardLogger())

	res, err := tool.Invoke(context.Background(), callRequest(GetMarketsName, nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(t, res))
	assert.Equal(t, domain.MarketQuery{Limit: 10, Offset: 0, Source: domain.SourceAll}, svc.last)
}

func TestGetMarketsRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"zero limit", map[string]any{"limit": float64(0)}},
		{"fractional limit", map[string]any{"limit": 2.5}},
		{"negative offset", map[string]any{"offset": float64(-1)}},
		{"string limit", map[string]any{"limit": "10"}},
		{"unknown source", map[string]any{"source": "manifold"}},
		{"numeric source", map[string]any{"source": float64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			res, err := NewGetMarketsTool(svc, discardLogger()).Invoke(context.Background(), callRequest(GetMarketsName, tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), "invalid arguments")
			assert.Zero(t, svc.calls, "service must not be called")
		})
	}
}

func TestSearchMarketsRequiresQuery(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing", map[string]any{}},
		{"empty", map[string]any{"query": ""}},
		{"blank", map[string]any{"query": "   "}},
		{"not a string", map[string]any{"query": float64(3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			res, err := NewSearchMarketsTool(svc, discardLogger()).Invoke(context.Background(), callRequest(SearchMarketsName, tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Zero(t, svc.calls)
		})
	}
}

func TestSearchMarketsPassesQuery(t *testing.T) {
	svc := &stubService{markets: []domain.RawMarket{{Title: "Election", URL: "https://k/1", Volume24h: 1234567}}}
	res, err := NewSearchMarketsTool(svc, discardLogger()).Invoke(context.Background(), callRequest(SearchMarketsName, map[string]any{
		"query":  "election",
		"limit":  float64(5),
		"source": "kalshi",
	}))
	require.NoError(t, err)
	assert.Equal(t,
		`[{"question":"Election","liquidity":"$0","icon":"","volume24hr":"$1,234,567","marketLink":"https://k/1"}]`,
		resultText(t, res))
	assert.Equal(t, domain.MarketQuery{Query: "election", Limit: 5, Offset: 0, Source: domain.SourceKalshi}, svc.last)
}

func TestToolsPropagateUpstreamFailure(t *testing.T) {
	upstream := errors.New("upstream down")
	svc := &stubService{err: upstream, markets: []domain.RawMarket{{Title: "partial"}}}

	res, err := NewGetMarketsTool(svc, discardLogger()).Invoke(context.Background(), callRequest(GetMarketsName, nil))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, upstream))

	res, err = NewSearchMarketsTool(svc, discardLogger()).Invoke(context.Background(), callRequest(SearchMarketsName, map[string]any{"query": "x"}))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, upstream))
}

func TestToolSchemasListSources(t *testing.T) {
	svc := &stubService{}
	for _, tool := range []mcp.Tool{
		NewGetMarketsTool(svc, discardLogger()).Build(),
		NewSearchMarketsTool(svc, discardLogger()).Build(),
	} {
		prop, ok := tool.InputSchema.Properties["source"].(map[string]any)
		require.True(t, ok, tool.Name)
		assert.Equal(t, []string{"polymarket", "kalshi", "all"}, prop["enum"], tool.Name)
		assert.Equal(t, "all", prop["default"], tool.Name)
	}
}

func TestParseMarketQueryIntegers(t *testing.T) {
	q, err := ParseMarketQuery(map[string]any{"limit": 3, "offset": int64(7)}, false)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Limit)
	assert.Equal(t, 7, q.Offset)
}

func TestMCPServerInProcess(t *testing.T) {
	svc := &stubService{markets: []domain.RawMarket{{Title: "Will Y?", URL: "https://a/2"}}}
	srv := NewMCPServer(ServerInfo{Name: "test", Version: "0.0.0"},
		NewGetMarketsTool(svc, discardLogger()),
		NewSearchMarketsTool(svc, discardLogger()),
	)

	ctx := context.Background()
	c, err := client.NewInProcessClient(srv)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "0.0.0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)

	list, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	names := make([]string, 0, len(list.Tools))
	for _, tl := range list.Tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, []string{GetMarketsName, SearchMarketsName}, names)

	res, err := c.CallTool(ctx, callRequest(SearchMarketsName, map[string]any{"query": "y"}))
	require.NoError(t, err)
	assert.Equal(t, `[{"question":"Will Y?","liquidity":"$0","icon":"","volume24hr":"$0","marketLink":"https://a/2"}]`, resultText(t, res))
}
