// Package cli implements the predictionmcp command line: the HTTP and stdio
// MCP transports plus one-shot market queries that print the same JSON the
// tools return.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alanyoungcy/predictionmcp/internal/app"
	"github.com/alanyoungcy/predictionmcp/internal/config"
	"github.com/alanyoungcy/predictionmcp/internal/tools"
)

const (
	serverName        = "predictionmcp"
	defaultConfigPath = "config.toml"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	version    string
	configPath string
	logLevel   string
}

// NewRootCmd creates the root command.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{version: version}

	rootCmd := &cobra.Command{
		Use:   serverName,
		Short: "MCP server for Polymarket and Kalshi prediction markets",
		Long: `predictionmcp exposes two read-only MCP tools, getMarkets and searchMarkets,
that query Polymarket and Kalshi and return a normalized list of markets.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newStdioCmd(opts))
	rootCmd.AddCommand(newMarketsCmd(opts))
	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd(opts))

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	return rootCmd
}

// loadConfig reads the configuration file named by --config. The default
// file is optional; an explicitly named one must exist.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := o.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", o.configPath, err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp loads the configuration, builds a logger writing to logOut and
// wires the application.
func (o *options) newApp(cmd *cobra.Command, logOut io.Writer) (*app.App, *config.Config, *slog.Logger, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(logOut, cfg.LogLevel)
	slog.SetDefault(logger)

	a, err := app.New(cfg, tools.ServerInfo{Name: serverName, Version: o.version}, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, cfg, logger, nil
}

// newLogger builds the JSON logger used by every command.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
