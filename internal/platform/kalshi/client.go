// Package kalshi implements domain.MarketProvider on top of the Kalshi
// trade API.
package kalshi

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

const (
	defaultWebURL   = "https://kalshi.com"
	maxPageSize     = 1000
	defaultMaxPages = 5
)

// Client is the REST client for the Kalshi exchange API. Market data is
// public; requests are signed only when both an API key and an RSA private
// key are configured.
type Client struct {
	baseURL    string
	webURL     string
	apiKeyID   string
	privateKey *rsa.PrivateKey
	httpClient *http.Client
	pageSize   int
	maxPages   int
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(k *Client) { k.httpClient = c }
}

// WithWebURL sets the site root used to build market links.
func WithWebURL(u string) Option {
	return func(k *Client) {
		if u != "" {
			k.webURL = u
		}
	}
}

// WithAPIKey sets the key identifier sent with signed requests.
func WithAPIKey(apiKeyID string) Option {
	return func(k *Client) { k.apiKeyID = apiKeyID }
}

// WithSearchPaging bounds how many markets a search scans: at most maxPages pages
// of pageSize markets each. pageSize is capped at the API maximum of 1000.
// Listings are not bounded by it.
func WithSearchPaging(pageSize, maxPages int) Option {
	return func(k *Client) {
		if pageSize > 0 {
			k.pageSize = min(pageSize, maxPageSize)
		}
		if maxPages > 0 {
			k.maxPages = maxPages
		}
	}
}

// NewClient creates a new Kalshi REST client.
//
// baseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		webURL:  defaultWebURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pageSize: 100,
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRSAPrivateKey loads an RSA private key from PEM-encoded bytes and
// configures the client for RSA-signed authentication.
func (c *Client) SetRSAPrivateKey(pemBytes []byte) error {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return fmt.Errorf("kalshi: no PEM block found in private key")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS1 as fallback.
		pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if pkcs1Err != nil {
			return fmt.Errorf("kalshi: parse private key: %w (pkcs1: %v)", err, pkcs1Err)
		}
		c.privateKey = pkcs1Key
		return nil
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return fmt.Errorf("kalshi: expected RSA private key, got %T", key)
	}
	c.privateKey = rsaKey
	return nil
}

// Source implements domain.MarketProvider.
func (c *Client) Source() domain.Source {
	return domain.SourceKalshi
}

// FetchMarkets returns the [offset, offset+limit) window of open markets.
// Kalshi paginates by cursor, so the offset is applied by skipping records
// across pages. The listing follows the cursor until the window is filled or
// the markets run out.
func (c *Client) FetchMarkets(ctx context.Context, opts domain.ListOpts) ([]domain.RawMarket, error) {
	markets, err := c.list(ctx, opts.Offset+opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("kalshi: fetch markets: %w", err)
	}
	return domain.Page(markets, opts.Offset, opts.Limit), nil
}

// SearchMarkets returns the [offset, offset+limit) window of open markets
// whose title or rules match query. At most maxPages pages are scanned.
func (c *Client) SearchMarkets(ctx context.Context, query string, opts domain.SearchOpts) ([]domain.RawMarket, error) {
	markets, err := c.scan(ctx, opts.Offset+opts.Limit, func(m domain.RawMarket) bool {
		return m.Matches(query, opts.SearchIn)
	})
	if err != nil {
		return nil, fmt.Errorf("kalshi: search markets: %w", err)
	}
	return domain.Page(markets, opts.Offset, opts.Limit), nil
}

// GetMarkets returns one page of open Kalshi markets and the cursor for the
// next page (empty when there is none).
func (c *Client) GetMarkets(ctx context.Context, limit int, cursor string) (KalshiMarketsPage, error) {
	params := url.Values{}
	params.Set("status", "open")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	body, err := c.doRequest(ctx, "/markets", params)
	if err != nil {
		return KalshiMarketsPage{}, fmt.Errorf("get markets: %w", err)
	}

	var page KalshiMarketsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return KalshiMarketsPage{}, fmt.Errorf("decode markets: %w", err)
	}
	return page, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// list reads the first want open markets, requesting no more than are
// still needed per page.
func (c *Client) list(ctx context.Context, want int) ([]domain.RawMarket, error) {
	if want <= 0 {
		return []domain.RawMarket{}, nil
	}
	out := make([]domain.RawMarket, 0, min(want, maxPageSize))
	var cursor string
	for len(out) < want {
		resp, err := c.GetMarkets(ctx, min(want-len(out), maxPageSize), cursor)
		if err != nil {
			return nil, err
		}
		for i := range resp.Markets {
			out = append(out, resp.Markets[i].ToRawMarket(c.webURL))
		}
		if resp.Cursor == "" || len(resp.Markets) == 0 {
			break
		}
		cursor = resp.Cursor
	}
	return out, nil
}

// scan walks market pages until want matching markets are collected, the
// cursor runs out, or maxPages pages have been read.
func (c *Client) scan(ctx context.Context, want int, keep func(domain.RawMarket) bool) ([]domain.RawMarket, error) {
	var (
		out    []domain.RawMarket
		cursor string
	)
	for page := 0; page < c.maxPages && len(out) < want; page++ {
		resp, err := c.GetMarkets(ctx, c.pageSize, cursor)
		if err != nil {
			return nil, err
		}
		for i := range resp.Markets {
			m := resp.Markets[i].ToRawMarket(c.webURL)
			if keep(m) {
				out = append(out, m)
			}
		}
		if resp.Cursor == "" || len(resp.Markets) == 0 {
			break
		}
		cursor = resp.Cursor
	}
	return out, nil
}

// doRequest sends a GET request against the Kalshi API, signing it when
// credentials are configured.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.canSign() {
		if err := c.signRequest(req, http.MethodGet, req.URL.Path); err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

func (c *Client) canSign() bool {
	return c.apiKeyID != "" && c.privateKey != nil
}

// signRequest adds RSA authentication headers to the HTTP request.
// Kalshi uses RSA-PSS-SHA256 signatures over the timestamp + method + path
// message string, where path excludes the query string.
func (c *Client) signRequest(req *http.Request, method, path string) error {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	hash := sha256.Sum256([]byte(ts + method + path))
	signature, err := rsa.SignPSS(rand.Reader, c.privateKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return fmt.Errorf("RSA sign: %w", err)
	}

	req.Header.Set("KALSHI-ACCESS-KEY", c.apiKeyID)
	req.Header.Set("KALSHI-ACCESS-SIGNATURE", base64.StdEncoding.EncodeToString(signature))
	req.Header.Set("KALSHI-ACCESS-TIMESTAMP", ts)

	return nil
}

// checkStatus maps non-2xx HTTP status codes to domain errors.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr KalshiErrorResponse
	_ = json.Unmarshal(body, &apiErr)
	detail := strings.TrimSpace(apiErr.Message + " (" + apiErr.Code + ")")

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, detail)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, detail)
	}
}
