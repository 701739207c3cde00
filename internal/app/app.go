// Package app provides the top-level application lifecycle for the
// prediction markets MCP server. It wires the platform clients, the
// aggregation service and the MCP tools, and runs them behind the HTTP or
// stdio transport.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/predictionmcp/internal/config"
	"github.com/alanyoungcy/predictionmcp/internal/server"
	"github.com/alanyoungcy/predictionmcp/internal/server/handler"
	"github.com/alanyoungcy/predictionmcp/internal/tools"
)

const shutdownTimeout = 5 * time.Second

// App is the root application object. It owns the configuration, the logger
// and the wired dependencies.
type App struct {
	cfg    *config.Config
	info   tools.ServerInfo
	logger *slog.Logger
	deps   *Dependencies
}

// New wires the dependencies for cfg and returns an App ready to serve.
func New(cfg *config.Config, info tools.ServerInfo, logger *slog.Logger) (*App, error) {
	deps, err := Wire(cfg, info, logger)
	if err != nil {
		return nil, fmt.Errorf("app: wire dependencies: %w", err)
	}
	return &App{
		cfg:    cfg,
		info:   info,
		logger: logger.With(slog.String("component", "app")),
		deps:   deps,
	}, nil
}

// Deps returns the wired dependencies.
func (a *App) Deps() *Dependencies {
	return a.deps
}

// RunHTTP listens on the configured address and serves until ctx is
// cancelled.
func (a *App) RunHTTP(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP transport on ln. When ctx is cancelled the server is
// shut down gracefully and Serve returns nil.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := a.newHTTPServer()

	a.logger.InfoContext(ctx, "mcp endpoint ready",
		slog.String("url", fmt.Sprintf("http://%s%s", ln.Addr().String(), a.cfg.Server.Path)),
		slog.Any("tools", a.deps.ToolNames()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

func (a *App) newHTTPServer() *server.Server {
	mcpHandler := mcpserver.NewStreamableHTTPServer(a.deps.MCP,
		mcpserver.WithStateLess(true),
		mcpserver.WithEndpointPath(a.cfg.Server.Path),
	)

	return server.NewServer(
		server.Config{
			Addr:        a.cfg.Server.Addr(),
			Path:        a.cfg.Server.Path,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Health: handler.NewHealthHandler(),
			Status: handler.NewStatusHandler(
				a.info.Name,
				a.info.Version,
				a.cfg.Server.Path,
				a.deps.ToolNames(),
				a.deps.SourceNames(),
			),
			MCP: mcpHandler,
		},
		a.logger,
	)
}

// RunStdio serves MCP over the given reader and writer until ctx is
// cancelled or the input is closed.
func (a *App) RunStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(a.deps.MCP)
	stdio.SetErrorLogger(slog.NewLogLogger(a.logger.Handler(), slog.LevelError))

	a.logger.InfoContext(ctx, "serving mcp over stdio", slog.Any("tools", a.deps.ToolNames()))
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("app: stdio: %w", err)
	}
	return nil
}
