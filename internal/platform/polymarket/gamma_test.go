package polymarket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

const marketsPage = `[
  {
    "id": "1",
    "question": "Will X happen?",
    "description": "Resolves YES if X happens.",
    "slug": "will-x-happen",
    "image": "https://img/x.png",
    "liquidity": "1500.25",
    "liquidityNum": 1500.25,
    "volume24hr": 200,
    "endDate": "2026-12-31T12:00:00Z",
    "events": [{"id": "10", "slug": "x-event"}]
  },
  {
    "id": "2",
    "question": "Will Y?",
    "slug": "will-y",
    "icon": "https://img/y-icon.png",
    "liquidity": "",
    "volume24hr": null
  }
]`

func TestGammaFetchMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("limit"))
		assert.Equal(t, "4", q.Get("offset"))
		assert.Equal(t, "true", q.Get("active"))
		assert.Equal(t, "false", q.Get("closed"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(marketsPage))
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL, WithWebURL("https://polymarket.test"))
	markets, err := client.FetchMarkets(context.Background(), domain.ListOpts{Limit: 2, Offset: 4, SearchIn: domain.SearchInBoth})
	require.NoError(t, err)
	require.Len(t, markets, 2)

	assert.Equal(t, domain.RawMarket{
		Source:         domain.SourcePolymarket,
		Title:          "Will X happen?",
		Description:    "Resolves YES if X happens.",
		Liquidity:      1500.25,
		Image:          "https://img/x.png",
		Volume24h:      200,
		URL:            "https://polymarket.test/event/x-event",
		ResolutionDate: "2026-12-31T12:00:00Z",
	}, markets[0])

	assert.Equal(t, "Will Y?", markets[1].Title)
	assert.Zero(t, markets[1].Liquidity)
	assert.Zero(t, markets[1].Volume24h)
	assert.Equal(t, "https://img/y-icon.png", markets[1].Image)
	assert.Equal(t, "https://polymarket.test/event/will-y", markets[1].URL)
	assert.Empty(t, markets[1].ResolutionDate)
}

func TestGammaSearchMarketsScansPages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		var page []APIMarket
		switch offset {
		case 0:
			page = []APIMarket{{Question: "Bitcoin above 100k?"}, {Question: "Rain in Paris?"}}
		case 2:
			page = []APIMarket{{Question: "Other"}, {Question: "Weather", Description: "bitcoin mining outage"}}
		default:
			page = []APIMarket{{Question: "BITCOIN ETF approved?"}}
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL, WithSearchPaging(2, 10))

	markets, err := client.SearchMarkets(context.Background(), "bitcoin", domain.SearchOpts{Limit: 2, Offset: 1, SearchIn: domain.SearchInBoth})
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "Weather", markets[0].Title)
	assert.Equal(t, "BITCOIN ETF approved?", markets[1].Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGammaSearchMarketsTitleScope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]APIMarket{
			{Question: "Weather", Description: "bitcoin mining outage"},
			{Question: "Bitcoin above 100k?"},
		})
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL)
	markets, err := client.SearchMarkets(context.Background(), "bitcoin", domain.SearchOpts{Limit: 10, SearchIn: domain.SearchInTitle})
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "Bitcoin above 100k?", markets[0].Title)
}

func TestGammaStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewGammaClient(srv.URL).FetchMarkets(context.Background(), domain.ListOpts{Limit: 1})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{`12.5`, 12.5, false},
		{`"1234.56"`, 1234.56, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"abc"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f flexFloat
			err := f.UnmarshalJSON([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, float64(f))
		})
	}
}
