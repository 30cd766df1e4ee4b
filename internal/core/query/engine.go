// Package query runs the read pipeline over a collection: full-text search,
// field filters, sorting and pagination, always in that order.
package query

import (
	"mockserver/internal/core/domain"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"
)

// Query runs search, filter, sort and paginate over items. total is the number
// of matches before the page window is applied. items is never modified.
func Query(items []domain.Item, spec Spec) (result []domain.Item, total int) {
	result = Search(items, spec.Term)
	result = Filter(result, spec.Filters)

	if spec.SortField != "" {
		result = Sort(result, spec.SortField, spec.SortOrder)
	}

	total = len(result)
	return Paginate(result, spec.Page, spec.Limit), total
}

// Search keeps items whose JSON text contains term, ignoring case.
func Search(items []domain.Item, term string) []domain.Item {
	if term == "" {
		return items
	}

	needle := strings.ToLower(term)
	return keep(items, func(item domain.Item) bool {
		text, err := json.Marshal(item)
		if err != nil {
			return false
		}
		return strings.Contains(strings.ToLower(string(text)), needle)
	})
}

// Filter keeps items where, for every key and every value, the text of the
// field contains the value ignoring case. A missing field reads "undefined".
func Filter(items []domain.Item, filters map[string][]string) []domain.Item {
	if len(filters) == 0 {
		return items
	}

	return keep(items, func(item domain.Item) bool {
		for field, wants := range filters {
			have := strings.ToLower(domain.TextOf(item.Get(field)))

			for _, want := range wants {
				if !strings.Contains(have, strings.ToLower(want)) {
					return false
				}
			}
		}
		return true
	})
}

// Sort returns a sorted copy of items ordered by field.
func Sort(items []domain.Item, field string, order Order) []domain.Item {
	sorted := slices.Clone(items)

	slices.SortStableFunc(sorted, func(a, b domain.Item) int {
		av, aok := a.Get(field)
		bv, bok := b.Get(field)

		c := Compare(av, aok, bv, bok)
		if order == OrderDesc {
			return -c
		}
		return c
	})

	return sorted
}

// Paginate returns the window [(page-1)*limit, page*limit) of items. page<1
// means the first page and limit<=0 means everything.
func Paginate(items []domain.Item, page, limit int) []domain.Item {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = len(items)
	}

	start := (page - 1) * limit
	if limit == 0 || start/limit != page-1 || start >= len(items) {
		return []domain.Item{}
	}

	end := min(start+limit, len(items))
	if end < start {
		// start+limit overflowed
		end = len(items)
	}
	return items[start:end]
}

// MatchExact keeps items whose field is the JSON string value.
func MatchExact(items []domain.Item, field, value string) []domain.Item {
	return keep(items, func(item domain.Item) bool {
		v, ok := item.Get(field)
		return ok && v.Kind() == domain.KindString && v.Text() == value
	})
}

// MatchNumber keeps items whose field is the JSON number n.
func MatchNumber(items []domain.Item, field string, n float64) []domain.Item {
	return keep(items, func(item domain.Item) bool {
		v, ok := item.Get(field)
		if !ok || v.Kind() != domain.KindNumber {
			return false
		}
		got, ok := v.Number()
		return ok && got == n
	})
}

func keep(items []domain.Item, pred func(domain.Item) bool) []domain.Item {
	result := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if pred(item) {
			result = append(result, item)
		}
	}
	return result
}
