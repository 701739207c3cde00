package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

// flexFloat unmarshals from a JSON number or a numeric string, since the
// Gamma API sends amounts like "liquidity" as strings and "liquidityNum" as
// numbers. Empty strings and null decode as zero.
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
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIEvent is the event stub embedded in a Gamma market. The event slug is
// what polymarket.com uses in market URLs.
type APIEvent struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID           string     `json:"id"`
	Question     string     `json:"question"`
	Description  string     `json:"description"`
	Slug         string     `json:"slug"`
	Image        string     `json:"image"`
	Icon         string     `json:"icon"`
	Liquidity    flexFloat  `json:"liquidity"`
	LiquidityNum *flexFloat `json:"liquidityNum"`
	Volume24hr   flexFloat  `json:"volume24hr"`
	EndDate      string     `json:"endDate"`
	EndDateISO   string     `json:"endDateIso"`
	Active       bool       `json:"active"`
	Closed       bool       `json:"closed"`
	Events       []APIEvent `json:"events"`
}

// ToRawMarket converts an APIMarket to a domain.RawMarket. webURL is the
// polymarket.com root used to build the market link.
func (m *APIMarket) ToRawMarket(webURL string) domain.RawMarket {
	liquidity := float64(m.Liquidity)
	if m.LiquidityNum != nil {
		liquidity = float64(*m.LiquidityNum)
	}

	image := m.Image
	if image == "" {
		image = m.Icon
	}

	resolution := m.EndDate
	if resolution == "" {
		resolution = m.EndDateISO
	}

	return domain.RawMarket{
		Source:         domain.SourcePolymarket,
		Title:          m.Question,
		Description:    m.Description,
		Liquidity:      liquidity,
		Image:          image,
		Volume24h:      float64(m.Volume24hr),
		URL:            m.link(webURL),
		ResolutionDate: resolution,
	}
}

// link prefers the parent event slug and falls back to the market slug.
func (m *APIMarket) link(webURL string) string {
	slug := m.Slug
	for _, e := range m.Events {
		if e.Slug != "" {
			slug = e.Slug
			break
		}
	}
	if slug == "" {
		return webURL
	}
	return strings.TrimRight(webURL, "/") + "/event/" + slug
}
