package cli

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/alanyoungcy/predictionmcp/internal/config"
	"github.com/alanyoungcy/predictionmcp/internal/domain"
	"github.com/alanyoungcy/predictionmcp/internal/tools"
)

// newServeCmd creates the serve command
func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, logger, err := opts.newApp(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			logger.Info("predictionmcp starting",
				slog.String("version", opts.version),
				slog.String("addr", cfg.Server.Addr()),
			)
			if err := a.RunHTTP(cmd.Context()); err != nil {
				return err
			}
			logger.Info("predictionmcp stopped")
			return nil
		},
	}
}

// newStdioCmd creates the stdio command. Logs go to stderr because stdout
// carries the protocol.
func newStdioCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, _, err := opts.newApp(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return a.RunStdio(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// queryFlags are the pagination flags shared by markets and search.
type queryFlags struct {
	limit  int
	offset int
	source string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", domain.DefaultLimit, "Number of markets to fetch")
	cmd.Flags().IntVar(&f.offset, "offset", domain.DefaultOffset, "Number of markets to skip")
	cmd.Flags().StringVar(&f.source, "source", string(domain.SourceAll), "Source of the markets (polymarket, kalshi, all)")
}

func (f *queryFlags) query(text string, withQuery bool) (domain.MarketQuery, error) {
	src, err := domain.ParseSource(f.source)
	if err != nil {
		return domain.MarketQuery{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	q := domain.MarketQuery{Query: text, Limit: f.limit, Offset: f.offset, Source: src}
	if err := tools.ValidateQuery(q, withQuery); err != nil {
		return domain.MarketQuery{}, err
	}
	return q, nil
}

// newMarketsCmd creates the markets command
func newMarketsCmd(opts *options) *cobra.Command {
	flags := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "markets",
		Short: "Print recent markets as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query("", false)
			if err != nil {
				return err
			}
			a, _, _, err := opts.newApp(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			payload, err := tools.ListJSON(cmd.Context(), a.Deps().Markets, q)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), payload)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// newSearchCmd creates the search command
func newSearchCmd(opts *options) *cobra.Command {
	flags := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Print markets matching QUERY as JSON",
		Long: `Search market titles and descriptions, case-insensitively.
Example: predictionmcp search "fed rate" --source=kalshi --limit=5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query(args[0], true)
			if err != nil {
				return err
			}
			a, _, _, err := opts.newApp(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			payload, err := tools.SearchJSON(cmd.Context(), a.Deps().Markets, q)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), payload)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// newConfigCmd creates the config command
func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(config.RedactedConfig(cfg))
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.loadConfig(cmd); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "configuration ok")
			return err
		},
	})

	return configCmd
}

// newVersionCmd creates the version command
func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serverName, opts.version)
		},
	}
}
