package pipeline

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidParameter marks listing parameters that cannot be interpreted
// (non-numeric price bounds, unknown sort fields). Handlers map it to a
// 400 response.
var ErrInvalidParameter = errors.New("invalid parameter")

// DefaultLimit is the page size used when the caller supplies none.
const DefaultLimit = 20

// RawListOptions carries the string-typed query parameters exactly as
// received from the HTTP layer.
type RawListOptions struct {
	Sort     string
	Order    string
	Page     string
	Limit    string
	MinPrice string
	MaxPrice string
}

// ListOptions is the validated form consumed by the compilers.
type ListOptions struct {
	Sort     string
	Order    string
	Page     int64
	Limit    int64
	MinPrice *float64
	MaxPrice *float64
}

// ParseListOptions validates and normalizes raw query parameters.
// Page and limit are clamped to at least 1 (a page of 0 would compile to
// a negative skip); price bounds must parse as numbers or the whole
// request is rejected, since dropping a price filter silently would
// change the result set.
func ParseListOptions(raw RawListOptions) (ListOptions, error) {
	opts := ListOptions{
		Sort:  raw.Sort,
		Order: raw.Order,
		Page:  parseClamped(raw.Page, 1),
		Limit: parseClamped(raw.Limit, DefaultLimit),
	}

	var err error
	if opts.MinPrice, err = parsePrice("minPrice", raw.MinPrice); err != nil {
		return ListOptions{}, err
	}
	if opts.MaxPrice, err = parsePrice("maxPrice", raw.MaxPrice); err != nil {
		return ListOptions{}, err
	}
	return opts, nil
}

func parseClamped(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parsePrice(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", ErrInvalidParameter, name, s)
	}
	return &v, nil
}
