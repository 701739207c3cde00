package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

// providerOrder fixes the concatenation order of multi-source results.
var providerOrder = []domain.Source{domain.SourcePolymarket, domain.SourceKalshi}

// MarketService aggregates market listings and searches across the
// configured upstream providers.
type MarketService struct {
	providers map[domain.Source]domain.MarketProvider
	logger    *slog.Logger
}

// NewMarketService creates a MarketService over the given providers. At most
// one provider per source is kept; a later one replaces an earlier one.
func NewMarketService(logger *slog.Logger, providers ...domain.MarketProvider) *MarketService {
	bySource := make(map[domain.Source]domain.MarketProvider, len(providers))
	for _, p := range providers {
		bySource[p.Source()] = p
	}
	return &MarketService{
		providers: bySource,
		logger:    logger,
	}
}

// List returns recent markets from the providers selected by q.Source. With
// SourceAll the providers are queried concurrently and their results are
// concatenated, Polymarket first. Each provider paginates independently with
// the same limit and offset.
func (s *MarketService) List(ctx context.Context, q domain.MarketQuery) ([]domain.RawMarket, error) {
	opts := domain.ListOpts{
		Limit:    q.Limit,
		Offset:   q.Offset,
		SearchIn: domain.SearchInBoth,
	}
	markets, err := s.fanOut(ctx, "list", q.Source, func(ctx context.Context, p domain.MarketProvider) ([]domain.RawMarket, error) {
		return p.FetchMarkets(ctx, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("market_service: list: %w", err)
	}
	return markets, nil
}

// Search returns markets matching q.Query from the providers selected by
// q.Source, with the same ordering and pagination rules as List.
func (s *MarketService) Search(ctx context.Context, q domain.MarketQuery) ([]domain.RawMarket, error) {
	opts := domain.SearchOpts{
		Limit:    q.Limit,
		Offset:   q.Offset,
		SearchIn: domain.SearchInBoth,
	}
	markets, err := s.fanOut(ctx, "search", q.Source, func(ctx context.Context, p domain.MarketProvider) ([]domain.RawMarket, error) {
		return p.SearchMarkets(ctx, q.Query, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("market_service: search: %w", err)
	}
	return markets, nil
}

// selectProviders resolves a source selector to providers in providerOrder.
func (s *MarketService) selectProviders(src domain.Source) ([]domain.MarketProvider, error) {
	if !src.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSource, src)
	}

	var selected []domain.MarketProvider
	for _, candidate := range providerOrder {
		if src != domain.SourceAll && src != candidate {
			continue
		}
		p, ok := s.providers[candidate]
		if !ok {
			if src == domain.SourceAll {
				continue
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrNoProvider, candidate)
		}
		selected = append(selected, p)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoProvider, src)
	}
	return selected, nil
}

// fanOut runs call against every selected provider concurrently and joins
// the results in provider order. The first failure cancels the remaining
// calls and is returned; no partial result is kept.
func (s *MarketService) fanOut(
	ctx context.Context,
	op string,
	src domain.Source,
	call func(context.Context, domain.MarketProvider) ([]domain.RawMarket, error),
) ([]domain.RawMarket, error) {
	providers, err := s.selectProviders(src)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([][]domain.RawMarket, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			markets, err := call(gctx, p)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Source(), err)
			}
			results[i] = markets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "market_service: upstream failed",
			slog.String("op", op),
			slog.String("source", string(src)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]domain.RawMarket, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}

	s.logger.DebugContext(ctx, "market_service: aggregated",
		slog.String("op", op),
		slog.String("source", string(src)),
		slog.Int("providers", len(providers)),
		slog.Int("count", total),
		slog.Duration("duration", time.Since(start)),
	)
	return out, nil
}
