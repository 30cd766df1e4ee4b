package query_test

import (
	"mockserver/internal/core/domain"
	"mockserver/internal/core/query"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const booksJSON = `[
	{"id": "1", "title": "Go in Action", "author": "Kennedy", "year": 2015, "tags": ["lang", "backend"]},
	{"id": "2", "title": "The Rust Book", "author": "Klabnik", "year": 2018, "tags": ["lang"]},
	{"id": "3", "title": "Designing Data-Intensive Applications", "author": "Kleppmann", "year": 2017},
	{"id": "4", "title": "Zig Basics", "author": "Kelley", "year": 9, "draft": true},
	{"id": "5", "title": "Concurrency in Go", "author": "Cox-Buday", "year": 2017}
]`

func loadItems(t *testing.T, raw string) []domain.Item {
	t.Helper()

	ds, err := domain.ParseDataset([]byte(`{"items": ` + raw + `}`))
	require.NoError(t, err)

	items, ok := ds.Collection("items")
	require.True(t, ok, "fixture is not a collection")
	return items
}

func ids(items []domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		id, _ := item.ID()
		out = append(out, id)
	}
	return out
}

func TestQuery(t *testing.T) {
	testCases := map[string]struct {
		spec      query.Spec
		wantIDs   []string
		wantTotal int
	}{
		"no spec returns everything in order": {
			spec:      query.Spec{},
			wantIDs:   []string{"1", "2", "3", "4", "5"},
			wantTotal: 5,
		},
		"search is case-insensitive over the whole record": {
			spec:      query.Spec{Term: "GO"},
			wantIDs:   []string{"1", "5"},
			wantTotal: 2,
		},
		"search matches field names": {
			spec:      query.Spec{Term: "draft"},
			wantIDs:   []string{"4"},
			wantTotal: 1,
		},
		"filter is a case-insensitive substring": {
			spec:      query.Spec{Filters: map[string][]string{"author": {"KL"}}},
			wantIDs:   []string{"2", "3"},
			wantTotal: 2,
		},
		"filters are ANDed": {
			spec:      query.Spec{Filters: map[string][]string{"author": {"k"}, "year": {"2017"}}},
			wantIDs:   []string{"3"},
			wantTotal: 1,
		},
		"repeated filter values are ANDed": {
			spec:      query.Spec{Filters: map[string][]string{"title": {"go", "action"}}},
			wantIDs:   []string{"1"},
			wantTotal: 1,
		},
		"filter on arrays uses joined text": {
			spec:      query.Spec{Filters: map[string][]string{"tags": {"lang,backend"}}},
			wantIDs:   []string{"1"},
			wantTotal: 1,
		},
		"filter on a missing field fails": {
			spec:      query.Spec{Filters: map[string][]string{"draft": {"true"}}},
			wantIDs:   []string{"4"},
			wantTotal: 1,
		},
		"missing field reads undefined": {
			spec:      query.Spec{Filters: map[string][]string{"draft": {"undef"}}},
			wantIDs:   []string{"1", "2", "3", "5"},
			wantTotal: 4,
		},
		"sort numeric ascending": {
			spec:      query.Spec{SortField: "year"},
			wantIDs:   []string{"4", "1", "3", "5", "2"},
			wantTotal: 5,
		},
		"sort text descending": {
			spec:      query.Spec{SortField: "title", SortOrder: query.OrderDesc},
			wantIDs:   []string{"4", "2", "1", "3", "5"},
			wantTotal: 5,
		},
		"sort on unknown field keeps order": {
			spec:      query.Spec{SortField: "nope"},
			wantIDs:   []string{"1", "2", "3", "4", "5"},
			wantTotal: 5,
		},
		"pagination reports the pre-slice total": {
			spec:      query.Spec{SortField: "year", Page: 2, Limit: 2},
			wantIDs:   []string{"3", "5"},
			wantTotal: 5,
		},
		"last partial page": {
			spec:      query.Spec{Page: 3, Limit: 2},
			wantIDs:   []string{"5"},
			wantTotal: 5,
		},
		"out of range page is empty": {
			spec:      query.Spec{Page: 9, Limit: 2},
			wantIDs:   []string{},
			wantTotal: 5,
		},
		"bad page and limit fall back to defaults": {
			spec:      query.Spec{Page: -4, Limit: -1},
			wantIDs:   []string{"1", "2", "3", "4", "5"},
			wantTotal: 5,
		},
		"full pipeline": {
			spec: query.Spec{
				Term:      "in",
				Filters:   map[string][]string{"year": {"201"}},
				SortField: "year",
				SortOrder: query.OrderDesc,
				Page:      1,
				Limit:     2,
			},
			wantIDs:   []string{"3", "5"},
			wantTotal: 3,
		},
	}

	items := loadItems(t, booksJSON)

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			result, total := query.Query(items, tc.spec)

			if diff := cmp.Diff(tc.wantIDs, ids(result)); diff != "" {
				t.Errorf("unexpected result ids (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.wantTotal, total)
		})
	}
}

func TestQueryDoesNotModifyInput(t *testing.T) {
	items := loadItems(t, booksJSON)
	before := ids(items)

	query.Query(items, query.Spec{SortField: "title", SortOrder: query.OrderDesc})

	assert.Equal(t, before, ids(items))
}

func TestQueryResultIsFilteredSubset(t *testing.T) {
	items := loadItems(t, booksJSON)
	filters := map[string][]string{"author": {"k"}, "title": {"o"}}

	result, _ := query.Query(items, query.Spec{Filters: filters})

	all := ids(items)
	for _, item := range result {
		id, _ := item.ID()
		assert.Contains(t, all, id)

		for field, wants := range filters {
			v, ok := item.Get(field)
			require.True(t, ok)
			for _, want := range wants {
				assert.Contains(t, strings.ToLower(v.Text()), strings.ToLower(want))
			}
		}
	}
}

func TestQueryIsIdempotent(t *testing.T) {
	items := loadItems(t, booksJSON)
	spec := query.Spec{Term: "o", SortField: "year", Page: 1, Limit: 3}

	first, firstTotal := query.Query(items, spec)
	second, secondTotal := query.Query(items, spec)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, firstTotal, secondTotal)
}

func TestPagesReconstructTheFullResult(t *testing.T) {
	items := loadItems(t, booksJSON)
	base := query.Spec{SortField: "title"}
	full, total := query.Query(items, base)

	for limit := 1; limit <= total+1; limit++ {
		var joined []string
		pages := (total + limit - 1) / limit

		for page := 1; page <= pages; page++ {
			spec := base
			spec.Page, spec.Limit = page, limit

			result, pageTotal := query.Query(items, spec)
			assert.LessOrEqual(t, len(result), limit)
			assert.Equal(t, total, pageTotal)
			joined = append(joined, ids(result)...)
		}

		assert.Equal(t, ids(full), joined, "limit %d", limit)
	}
}

func TestSortOrderingAndReversal(t *testing.T) {
	items := loadItems(t, booksJSON)

	asc := query.Sort(items, "title", query.OrderAsc)
	for i := 1; i < len(asc); i++ {
		a, aok := asc[i-1].Get("title")
		b, bok := asc[i].Get("title")
		assert.LessOrEqual(t, query.Compare(a, aok, b, bok), 0)
	}

	desc := query.Sort(asc, "title", query.OrderDesc)
	for i := 1; i < len(desc); i++ {
		a, aok := desc[i-1].Get("title")
		b, bok := desc[i].Get("title")
		assert.GreaterOrEqual(t, query.Compare(a, aok, b, bok), 0)
	}

	reversed := ids(asc)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	assert.Equal(t, reversed, ids(desc))
}

func TestCompare(t *testing.T) {
	num := func(t *testing.T, raw string) domain.Value {
		v, err := domain.NewValue([]byte(raw))
		require.NoError(t, err)
		return v
	}

	testCases := map[string]struct {
		a, b string
		want int
	}{
		"numbers":               {a: `9`, b: `10`, want: -1},
		"numeric strings":       {a: `"9"`, b: `"10"`, want: -1},
		"number vs num string":  {a: `10`, b: `"9"`, want: 1},
		"text":                  {a: `"apple"`, b: `"banana"`, want: -1},
		"text vs number":        {a: `"b"`, b: `1`, want: 1},
		"equal":                 {a: `"x"`, b: `"x"`, want: 0},
		"booleans compare text": {a: `false`, b: `true`, want: -1},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, query.Compare(num(t, tc.a), true, num(t, tc.b), true))
		})
	}

	t.Run("missing side is equal", func(t *testing.T) {
		assert.Equal(t, 0, query.Compare(num(t, `1`), true, domain.Value{}, false))
		assert.Equal(t, 0, query.Compare(domain.Value{}, false, num(t, `1`), true))
	})
}

func TestMatchExactAndNumber(t *testing.T) {
	items := loadItems(t, `[
		{"id": "1", "postId": 1, "author": "Ann"},
		{"id": "2", "postId": "1", "author": "ann"},
		{"id": "3", "postId": 2, "author": "Ann Lee"}
	]`)

	assert.Equal(t, []string{"1"}, ids(query.MatchExact(items, "author", "Ann")))
	assert.Equal(t, []string{"1"}, ids(query.MatchNumber(items, "postId", 1)))
	assert.Empty(t, query.MatchNumber(items, "postId", 7))
	assert.Empty(t, query.MatchExact(items, "missing", "Ann"))
}
