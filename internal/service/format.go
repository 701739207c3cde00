package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

// FormattedMarket is the display shape returned to tool callers. Field order
// is part of the serialized contract.
type FormattedMarket struct {
	Question       string     `json:"question"`
	Liquidity      string     `json:"liquidity"`
	Icon           string     `json:"icon"`
	Volume24hr     string     `json:"volume24hr"`
	MarketLink     string     `json:"marketLink"`
	ResolutionDate *Timestamp `json:"resolutionDate,omitempty"`
}

// Timestamp is a point in time that serializes as a UTC ISO-8601 string with
// millisecond precision, e.g. "2026-12-31T12:00:00.000Z".
type Timestamp time.Time

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(timestampLayout) + `"`), nil
}

// resolutionLayouts are tried in order when parsing upstream dates. Layouts
// without a zone are read as UTC.
var resolutionLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// usd renders amounts with en-US digit grouping.
var usd = message.NewPrinter(language.AmericanEnglish)

// FormatMarkets maps raw markets to their display shape one-to-one,
// preserving order. It never drops a record.
func FormatMarkets(markets []domain.RawMarket) []FormattedMarket {
	out := make([]FormattedMarket, 0, len(markets))
	for i := range markets {
		out = append(out, FormatMarket(markets[i]))
	}
	return out
}

// FormatMarket maps a single raw market to its display shape.
func FormatMarket(m domain.RawMarket) FormattedMarket {
	return FormattedMarket{
		Question:       m.Title,
		Liquidity:      FormatUSD(m.Liquidity),
		Icon:           m.Image,
		Volume24hr:     FormatUSD(m.Volume24h),
		MarketLink:     m.URL,
		ResolutionDate: ParseResolutionDate(m.ResolutionDate),
	}
}

// FormatUSD renders v as "$" followed by a locale-grouped decimal with at
// most three fraction digits, e.g. 1500 -> "$1,500" and 1.0625 -> "$1.063".
// NaN and infinities render as "$0".
func FormatUSD(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return "$" + usd.Sprintf("%v", number.Decimal(roundHalfAway(v, 3), number.MaxFractionDigits(3)))
}

// roundHalfAway rounds the exact binary value of v to digits fraction
// digits, ties away from zero. 2.0005 is stored just below the tie and
// rounds to 2.
func roundHalfAway(v float64, digits int) float64 {
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil))

	scaled := new(big.Float).SetPrec(256).SetFloat64(v)
	scaled.Mul(scaled, scale)
	if v < 0 {
		scaled.Sub(scaled, big.NewFloat(0.5))
	} else {
		scaled.Add(scaled, big.NewFloat(0.5))
	}

	n, _ := scaled.Int(nil)
	if n.Sign() == 0 {
		return 0
	}
	r, _ := new(big.Float).SetPrec(256).Quo(new(big.Float).SetInt(n), scale).Float64()
	return r
}

// ParseResolutionDate parses an upstream resolution date. It returns nil for
// empty or unparseable input so the field is omitted from the output.
func ParseResolutionDate(raw string) *Timestamp {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range resolutionLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			ts := Timestamp(t)
			return &ts
		}
	}
	return nil
}

// MarshalMarkets encodes formatted markets as the JSON string returned by
// the tools. HTML characters are not escaped and an empty list encodes as
// "[]".
func MarshalMarkets(markets []FormattedMarket) (string, error) {
	if markets == nil {
		markets = []FormattedMarket{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(markets); err != nil {
		return "", fmt.Errorf("format: marshal markets: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
