package domain

import "context"

// ListOpts provides pagination and scope for market listings.
type ListOpts struct {
	Limit    int
	Offset   int
	SearchIn SearchScope
}

// SearchOpts provides pagination and scope for text searches.
type SearchOpts struct {
	Limit    int
	Offset   int
	SearchIn SearchScope
}

// MarketProvider is a client for one upstream prediction-market platform.
// Implementations must be safe for concurrent use; they are created once and
// shared by every request.
type MarketProvider interface {
	// Source names the platform the provider talks to.
	Source() Source

	// FetchMarkets returns a page of currently listed markets.
	FetchMarkets(ctx context.Context, opts ListOpts) ([]RawMarket, error)

	// SearchMarkets returns a page of markets whose text matches query.
	SearchMarkets(ctx context.Context, query string, opts SearchOpts) ([]RawMarket, error)
}
