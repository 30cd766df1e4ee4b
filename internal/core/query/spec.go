package query

import (
	"net/url"
	"strings"
)

// Order is the sort direction of a query.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// query-string keys that drive the pipeline instead of filtering
const (
	ParamSearch = "q"
	ParamSort   = "sort"
	ParamOrder  = "order"
	ParamPage   = "_page"
	ParamLimit  = "_limit"
)

var reservedParams = map[string]bool{
	ParamSearch: true,
	ParamSort:   true,
	ParamOrder:  true,
	ParamPage:   true,
	ParamLimit:  true,
}

// Spec is a normalised read request. Zero values mean "not requested".
type Spec struct {
	Term      string
	Filters   map[string][]string
	SortField string
	SortOrder Order
	Page      int
	Limit     int
}

// ParseValues builds a Spec from query-string parameters. It never fails:
// anything it cannot use falls back to the permissive default.
func ParseValues(values url.Values) Spec {
	spec := Spec{
		Term:      values.Get(ParamSearch),
		SortField: values.Get(ParamSort),
		SortOrder: ParseOrder(values.Get(ParamOrder)),
	}

	if page, ok := ParseInt(values.Get(ParamPage)); ok {
		spec.Page = page
	}
	if limit, ok := ParseInt(values.Get(ParamLimit)); ok {
		spec.Limit = limit
	}

	for key, vals := range values {
		if reservedParams[key] || strings.HasPrefix(key, "_") || len(vals) == 0 {
			continue
		}

		if spec.Filters == nil {
			spec.Filters = make(map[string][]string)
		}
		spec.Filters[key] = append([]string(nil), vals...)
	}

	return spec
}

func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(OrderDesc)) {
		return OrderDesc
	}
	return OrderAsc
}

// ParseInt reads the leading integer of s, ignoring surrounding whitespace and
// any trailing garbage ("12abc" is 12). It reports false when no digit leads.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)

	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		// saturate instead of overflowing on absurd input
		if n < (1<<62)/10 {
			n = n*10 + int(c-'0')
		}
		digits++
	}

	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
