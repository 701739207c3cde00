package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/alanyoungcy/predictionmcp/internal/domain"
)

// ParseMarketQuery validates raw tool arguments and applies defaults. When
// withQuery is set, a non-blank "query" string is required.
func ParseMarketQuery(args map[string]any, withQuery bool) (domain.MarketQuery, error) {
	q := domain.MarketQuery{
		Limit:  domain.DefaultLimit,
		Offset: domain.DefaultOffset,
		Source: domain.SourceAll,
	}

	var err error
	if q.Limit, err = intArg(args, "limit", domain.DefaultLimit); err != nil {
		return domain.MarketQuery{}, err
	}
	if q.Offset, err = intArg(args, "offset", domain.DefaultOffset); err != nil {
		return domain.MarketQuery{}, err
	}

	if v, ok := args["source"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return domain.MarketQuery{}, fmt.Errorf("%w: source must be a string, got %T", domain.ErrInvalidArgument, v)
		}
		if q.Source, err = domain.ParseSource(s); err != nil {
			return domain.MarketQuery{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
		}
	}

	if withQuery {
		v, ok := args["query"]
		if !ok || v == nil {
			return domain.MarketQuery{}, fmt.Errorf("%w: query is required", domain.ErrInvalidArgument)
		}
		s, ok := v.(string)
		if !ok {
			return domain.MarketQuery{}, fmt.Errorf("%w: query must be a string, got %T", domain.ErrInvalidArgument, v)
		}
		q.Query = s
	}

	if err := ValidateQuery(q, withQuery); err != nil {
		return domain.MarketQuery{}, err
	}
	return q, nil
}

// ValidateQuery checks ranges and the source enum of an already-typed query.
func ValidateQuery(q domain.MarketQuery, withQuery bool) error {
	if q.Limit < 1 {
		return fmt.Errorf("%w: limit must be >= 1, got %d", domain.ErrInvalidArgument, q.Limit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("%w: offset must be >= 0, got %d", domain.ErrInvalidArgument, q.Offset)
	}
	if !q.Source.Valid() {
		return fmt.Errorf("%w: %w: %q", domain.ErrInvalidArgument, domain.ErrInvalidSource, q.Source)
	}
	if withQuery && strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}
	return nil
}

// intArg reads an integral number argument. JSON numbers arrive as float64;
// in-process callers may pass Go integers or json.Number.
func intArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a number: %v", domain.ErrInvalidArgument, key, err)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", domain.ErrInvalidArgument, key, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", domain.ErrInvalidArgument, key, f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s is out of range", domain.ErrInvalidArgument, key)
	}
	return int(f), nil
}
