// Package polymarket implements domain.MarketProvider on top of the
// Polymarket Gamma API, which provides market discovery and metadata.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

const (
	defaultWebURL         = "https://polymarket.com"
	defaultSearchPageSize = 100
	defaultSearchMaxPages = 5
)

// GammaClient is the REST client for the Polymarket Gamma API.
type GammaClient struct {
	baseURL        string
	webURL         string
	httpClient     *http.Client
	searchPageSize int
	searchMaxPages int
}

// Option customises a GammaClient.
type Option func(*GammaClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *GammaClient) { g.httpClient = c }
}

// WithWebURL sets the site root used to build market links.
func WithWebURL(u string) Option {
	return func(g *GammaClient) {
		if u != "" {
			g.webURL = u
		}
	}
}

// WithSearchPaging bounds how many markets a text search scans: at most
// maxPages pages of pageSize markets each.
func WithSearchPaging(pageSize, maxPages int) Option {
	return func(g *GammaClient) {
		if pageSize > 0 {
			g.searchPageSize = pageSize
		}
		if maxPages > 0 {
			g.searchMaxPages = maxPages
		}
	}
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string, opts ...Option) *GammaClient {
	g := &GammaClient{
		baseURL: baseURL,
		webURL:  defaultWebURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		searchPageSize: defaultSearchPageSize,
		searchMaxPages: defaultSearchMaxPages,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Source implements domain.MarketProvider.
func (g *GammaClient) Source() domain.Source {
	return domain.SourcePolymarket
}

// FetchMarkets returns a page of open markets ordered by 24h volume.
// The Gamma listing has no text component, so opts.SearchIn is not sent.
func (g *GammaClient) FetchMarkets(ctx context.Context, opts domain.ListOpts) ([]domain.RawMarket, error) {
	apiMarkets, err := g.getMarkets(ctx, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: fetch markets: %w", err)
	}

	markets := make([]domain.RawMarket, 0, len(apiMarkets))
	for i := range apiMarkets {
		markets = append(markets, apiMarkets[i].ToRawMarket(g.webURL))
	}
	return markets, nil
}

// SearchMarkets scans open markets page by page and returns the
// [offset, offset+limit) window of those whose text matches query.
func (g *GammaClient) SearchMarkets(ctx context.Context, query string, opts domain.SearchOpts) ([]domain.RawMarket, error) {
	want := opts.Offset + opts.Limit
	var matched []domain.RawMarket

	for page := 0; page < g.searchMaxPages && len(matched) < want; page++ {
		apiMarkets, err := g.getMarkets(ctx, g.searchPageSize, page*g.searchPageSize)
		if err != nil {
			return nil, fmt.Errorf("polymarket/gamma: search markets: %w", err)
		}
		for i := range apiMarkets {
			m := apiMarkets[i].ToRawMarket(g.webURL)
			if m.Matches(query, opts.SearchIn) {
				matched = append(matched, m)
			}
		}
		if len(apiMarkets) < g.searchPageSize {
			break
		}
	}

	return domain.Page(matched, opts.Offset, opts.Limit), nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (g *GammaClient) getMarkets(ctx context.Context, limit, offset int) ([]APIMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("order", "volume24hr")
	params.Set("ascending", "false")

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}
	return apiMarkets, nil
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx HTTP status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
