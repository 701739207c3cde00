package domain

import (
	"fmt"
	"strings"
)

// Source identifies an upstream prediction-market platform, or all of them.
type Source string

const (
	SourcePolymarket Source = "polymarket"
	SourceKalshi     Source = "kalshi"
	SourceAll        Source = "all"
)

// Sources lists the accepted source selectors in their documented order.
var Sources = []Source{SourcePolymarket, SourceKalshi, SourceAll}

// ParseSource converts a selector string into a Source. An empty string
// selects SourceAll.
func ParseSource(s string) (Source, error) {
	if s == "" {
		return SourceAll, nil
	}
	src := Source(s)
	if !src.Valid() {
		return "", fmt.Errorf("%w: %q (valid: polymarket, kalshi, all)", ErrInvalidSource, s)
	}
	return src, nil
}

// Valid reports whether s is one of the accepted selectors.
func (s Source) Valid() bool {
	switch s {
	case SourcePolymarket, SourceKalshi, SourceAll:
		return true
	default:
		return false
	}
}

// SearchScope selects which market text fields a text search matches.
type SearchScope string

const (
	SearchInTitle       SearchScope = "title"
	SearchInDescription SearchScope = "description"
	SearchInBoth        SearchScope = "both"
)

// RawMarket is a market record as delivered by an upstream platform adapter.
// Numeric fields absent upstream are left at zero and optional strings are
// left empty.
type RawMarket struct {
	Source         Source
	Title          string
	Description    string
	Liquidity      float64
	Image          string
	Volume24h      float64
	URL            string
	ResolutionDate string
}

// Matches reports whether query occurs, case-insensitively, in the fields
// selected by scope. An empty scope behaves like SearchInBoth.
func (m RawMarket) Matches(query string, scope SearchScope) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	inTitle := strings.Contains(strings.ToLower(m.Title), q)
	inDesc := strings.Contains(strings.ToLower(m.Description), q)

	switch scope {
	case SearchInTitle:
		return inTitle
	case SearchInDescription:
		return inDesc
	default:
		return inTitle || inDesc
	}
}

// Default tool parameters.
const (
	DefaultLimit  = 10
	DefaultOffset = 0
)

// MarketQuery is a validated request for markets. Query is only used by
// searches.
type MarketQuery struct {
	Query  string
	Limit  int
	Offset int
	Source Source
}

// Page returns the window [offset, offset+limit) of markets, clamped to the
// slice bounds. A non-positive limit yields an empty page.
func Page(markets []RawMarket, offset, limit int) []RawMarket {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(markets) {
		return []RawMarket{}
	}
	end := offset + limit
	if end > len(markets) {
		end = len(markets)
	}
	return markets[offset:end]
}
