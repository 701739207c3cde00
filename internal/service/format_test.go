package service

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{200, "$200"},
		{1500, "$1,500"},
		{1234567.5, "$1,234,567.5"},
		{1500.25, "$1,500.25"},
		{0.1234, "$0.123"},
		{1.0625, "$1.063"},
		{2.0005, "$2"},
		{-0.0001, "$0"},
		{math.NaN(), "$0"},
		{math.Inf(1), "$0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUSD(tt.in))
		})
	}
}

func TestParseResolutionDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-12-31T12:00:00Z", "2026-12-31T12:00:00.000Z"},
		{"2026-12-31T12:00:00.5+02:00", "2026-12-31T10:00:00.500Z"},
		{"2026-12-31", "2026-12-31T00:00:00.000Z"},
		{"2026-12-31 08:30:00", "2026-12-31T08:30:00.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts := ParseResolutionDate(tt.in)
			require.NotNil(t, ts)
			got, err := json.Marshal(ts)
			require.NoError(t, err)
			assert.Equal(t, `"`+tt.want+`"`, string(got))
		})
	}

	assert.Nil(t, ParseResolutionDate(""))
	assert.Nil(t, ParseResolutionDate("   "))
	assert.Nil(t, ParseResolutionDate("not a date"))
}

func TestFormatMarketDefaults(t *testing.T) {
	got := FormatMarket(domain.RawMarket{Title: "Will Y?", URL: "https://a/2"})

	assert.Equal(t, FormattedMarket{
		Question:   "Will Y?",
		Liquidity:  "$0",
		Icon:       "",
		Volume24hr: "$0",
		MarketLink: "https://a/2",
	}, got)

	out, err := MarshalMarkets([]FormattedMarket{got})
	require.NoError(t, err)
	assert.Equal(t, `[{"question":"Will Y?","liquidity":"$0","icon":"","volume24hr":"$0","marketLink":"https://a/2"}]`, out)
}

func TestFormatMarketsScenario(t *testing.T) {
	raw := []domain.RawMarket{
		{Title: "Will X happen?", Liquidity: 1500, Volume24h: 200, URL: "https://a/1"},
		{Title: "Will Y?", URL: "https://a/2"},
	}

	out, err := MarshalMarkets(FormatMarkets(raw))
	require.NoError(t, err)
	assert.Equal(t,
		`[{"question":"Will X happen?","liquidity":"$1,500","icon":"","volume24hr":"$200","marketLink":"https://a/1"},`+
			`{"question":"Will Y?","liquidity":"$0","icon":"","volume24hr":"$0","marketLink":"https://a/2"}]`,
		out)
}

func TestFormatMarketWithResolutionDate(t *testing.T) {
	raw := domain.RawMarket{
		Title:          "Fed cut & hike?",
		Image:          "https://img/fed.png",
		URL:            "https://kalshi.com/markets/kxfed?x=1&y=2",
		ResolutionDate: "2026-03-18T18:00:00Z",
	}

	out, err := MarshalMarkets(FormatMarkets([]domain.RawMarket{raw}))
	require.NoError(t, err)
	assert.Equal(t,
		`[{"question":"Fed cut & hike?","liquidity":"$0","icon":"https://img/fed.png","volume24hr":"$0",`+
			`"marketLink":"https://kalshi.com/markets/kxfed?x=1&y=2","resolutionDate":"2026-03-18T18:00:00.000Z"}]`,
		out)
}

func TestFormatIsIdempotent(t *testing.T) {
	raw := domain.RawMarket{Title: "Q", Liquidity: 98765.4321, Volume24h: 12, URL: "u", ResolutionDate: "2026-01-01T00:00:00Z"}

	first, err := MarshalMarkets(FormatMarkets([]domain.RawMarket{raw}))
	require.NoError(t, err)
	second, err := MarshalMarkets(FormatMarkets([]domain.RawMarket{raw}))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMarshalMarketsEmpty(t *testing.T) {
	out, err := MarshalMarkets(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	out, err = MarshalMarkets(FormatMarkets(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}
