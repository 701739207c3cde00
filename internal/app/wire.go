package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyoungcy/predictionmcp/internal/config"
	"github.com/alanyoungcy/predictionmcp/internal/domain"
	"github.com/alanyoungcy/predictionmcp/internal/platform/kalshi"
	"github.com/alanyoungcy/predictionmcp/internal/platform/polymarket"
	"github.com/alanyoungcy/predictionmcp/internal/service"
	"github.com/alanyoungcy/predictionmcp/internal/tools"
)

// Dependencies bundles everything the transports need. It is constructed
// once by Wire and shared by the HTTP, stdio and CLI entry points.
type Dependencies struct {
	Providers []domain.MarketProvider
	Markets   *service.MarketService
	Tools     []tools.MCPTool
	MCP       *mcpserver.MCPServer
}

// ToolNames returns the names of the registered MCP tools.
func (d *Dependencies) ToolNames() []string {
	names := make([]string, 0, len(d.Tools))
	for _, t := range d.Tools {
		names = append(names, t.Build().Name)
	}
	return names
}

// SourceNames returns the sources of the configured providers.
func (d *Dependencies) SourceNames() []string {
	names := make([]string, 0, len(d.Providers))
	for _, p := range d.Providers {
		names = append(names, string(p.Source()))
	}
	return names
}

// Wire constructs the platform clients, the aggregation service, and the MCP
// server from cfg.
func Wire(cfg *config.Config, info tools.ServerInfo, logger *slog.Logger) (*Dependencies, error) {
	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout.Duration}

	gamma := polymarket.NewGammaClient(cfg.Polymarket.GammaHost,
		polymarket.WithHTTPClient(httpClient),
		polymarket.WithWebURL(cfg.Polymarket.WebHost),
		polymarket.WithSearchPaging(cfg.Upstream.SearchPageSize, cfg.Upstream.SearchMaxPages),
	)

	kalshiOpts := []kalshi.Option{
		kalshi.WithHTTPClient(httpClient),
		kalshi.WithWebURL(cfg.Kalshi.WebHost),
		kalshi.WithSearchPaging(cfg.Upstream.SearchPageSize, cfg.Upstream.SearchMaxPages),
	}
	if cfg.Kalshi.ApiKey != "" {
		kalshiOpts = append(kalshiOpts, kalshi.WithAPIKey(cfg.Kalshi.ApiKey))
	}
	kc := kalshi.NewClient(cfg.Kalshi.BaseURL, kalshiOpts...)
	if cfg.Kalshi.RsaPrivateKeyPath != "" {
		pemBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("wire: kalshi private key: %w", err)
		}
		if err := kc.SetRSAPrivateKey(pemBytes); err != nil {
			return nil, fmt.Errorf("wire: kalshi private key: %w", err)
		}
		logger.Info("kalshi request signing enabled")
	}

	providers := []domain.MarketProvider{gamma, kc}
	markets := service.NewMarketService(logger.With(slog.String("component", "market_service")), providers...)

	mcpTools := []tools.MCPTool{
		tools.NewGetMarketsTool(markets, logger),
		tools.NewSearchMarketsTool(markets, logger),
	}

	return &Dependencies{
		Providers: providers,
		Markets:   markets,
		Tools:     mcpTools,
		MCP:       tools.NewMCPServer(info, mcpTools...),
	}, nil
}
