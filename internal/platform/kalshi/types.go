package kalshi

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

// flexFloat unmarshals from a JSON number, fractional or not, or a numeric
// string. Empty strings and null decode as zero.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

// --------------------------------------------------------------------------
// Kalshi API DTOs
// --------------------------------------------------------------------------

// KalshiMarket represents a market as returned by the Kalshi REST API.
type KalshiMarket struct {
	Ticker           string    `json:"ticker"`
	EventTicker      string    `json:"event_ticker"`
	Title            string    `json:"title"`
	Subtitle         string    `json:"subtitle"`
	YesSubTitle      string    `json:"yes_sub_title"`
	Status           string    `json:"status"` // "active", "open", "closed", "settled"
	RulesPrimary     string    `json:"rules_primary"`
	RulesSecondary   string    `json:"rules_secondary"`
	Volume           flexFloat `json:"volume"`
	Volume24H        flexFloat `json:"volume_24h"`
	Liquidity        flexFloat `json:"liquidity"` // in cents
	LiquidityDollars string    `json:"liquidity_dollars"`
	OpenInterest     flexFloat `json:"open_interest"`
	CloseTime        string    `json:"close_time"`
	ExpirationTime   string    `json:"expiration_time"`
	Category         string    `json:"category"`
}

// KalshiMarketsPage is one page of the cursor-paginated /markets listing.
type KalshiMarketsPage struct {
	Markets []KalshiMarket `json:"markets"`
	Cursor  string         `json:"cursor"`
}

// KalshiErrorResponse represents a Kalshi API error response.
type KalshiErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --------------------------------------------------------------------------
// Conversion helpers
// --------------------------------------------------------------------------

// ToRawMarket converts a KalshiMarket to a domain.RawMarket. webURL is the
// kalshi.com root used to build the market link.
func (m *KalshiMarket) ToRawMarket(webURL string) domain.RawMarket {
	title := m.Title
	if m.Subtitle != "" {
		title = strings.TrimSpace(title + " " + m.Subtitle)
	}

	description := m.RulesPrimary
	if m.RulesSecondary != "" {
		description = strings.TrimSpace(description + "\n" + m.RulesSecondary)
	}

	resolution := m.CloseTime
	if resolution == "" {
		resolution = m.ExpirationTime
	}

	return domain.RawMarket{
		Source:         domain.SourceKalshi,
		Title:          title,
		Description:    description,
		Liquidity:      m.liquidityUSD(),
		Volume24h:      float64(m.Volume24H),
		URL:            m.link(webURL),
		ResolutionDate: resolution,
	}
}

// liquidityUSD prefers the dollar string and falls back to the cent count.
func (m *KalshiMarket) liquidityUSD() float64 {
	if m.LiquidityDollars != "" {
		if v, err := strconv.ParseFloat(m.LiquidityDollars, 64); err == nil {
			return v
		}
	}
	return float64(m.Liquidity) / 100
}

func (m *KalshiMarket) link(webURL string) string {
	ticker := m.EventTicker
	if ticker == "" {
		ticker = m.Ticker
	}
	root := strings.TrimRight(webURL, "/")
	if ticker == "" {
		return root
	}
	return root + "/markets/" + strings.ToLower(ticker)
}
