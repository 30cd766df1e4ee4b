package domain_test

import (
	"mockserver/internal/core/domain"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testData = `{
	"profile": {"name": "typicode"},
	"buildings": [
		{"id": 5, "name": "lab"},
		{"id": 10, "name": "reception"}
	],
	"empty": [],
	"secret_code": 101,
	"mixed": [1, {"id": "1"}]
}`

func TestParseDatasetClassifiesEntries(t *testing.T) {
	ds, err := domain.ParseDataset([]byte(testData))
	require.NoError(t, err)

	assert.Equal(t, []string{"profile", "buildings", "empty", "secret_code", "mixed"}, ds.Names())
	assert.Equal(t, []string{"buildings", "empty"}, ds.CollectionNames())

	buildings, ok := ds.Collection("buildings")
	require.True(t, ok)
	assert.Len(t, buildings, 2)

	empty, ok := ds.Collection("empty")
	require.True(t, ok)
	assert.Empty(t, empty)

	_, ok = ds.Collection("profile")
	assert.False(t, ok)
	_, ok = ds.Collection("mixed")
	assert.False(t, ok)
}

func TestDatasetRoundTripPreservesOrder(t *testing.T) {
	ds, err := domain.ParseDataset([]byte(testData))
	require.NoError(t, err)

	out, err := json.Marshal(ds)
	require.NoError(t, err)

	assert.Equal(t,
		`{"profile":{"name":"typicode"},"buildings":[{"id":5,"name":"lab"},{"id":10,"name":"reception"}],"empty":[],"secret_code":101,"mixed":[1,{"id":"1"}]}`,
		string(out))
}

func TestParseDatasetEdgeCases(t *testing.T) {
	testCases := map[string]struct {
		input     string
		wantNames []string
		wantErr   bool
	}{
		"blank input":   {input: "  \n", wantNames: []string{}},
		"empty object":  {input: `{}`, wantNames: []string{}},
		"top-level arr": {input: `[]`, wantErr: true},
		"corrupt":       {input: `{"books": [`, wantErr: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			ds, err := domain.ParseDataset([]byte(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.ElementsMatch(t, tc.wantNames, ds.Names())
		})
	}
}

func TestDatasetSetCollectionAndEntry(t *testing.T) {
	ds, err := domain.ParseDataset([]byte(`{"secret_code": 101}`))
	require.NoError(t, err)

	item, err := domain.ParseItem([]byte(`{"id":"1"}`))
	require.NoError(t, err)
	ds.SetCollection("books", []domain.Item{item})

	raw, ok, err := ds.Entry("books")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, string(raw))

	raw, ok, err = ds.Entry("secret_code")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `101`, string(raw))

	_, ok, err = ds.Entry("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDatasetCloneIsIndependent(t *testing.T) {
	ds, err := domain.ParseDataset([]byte(testData))
	require.NoError(t, err)

	clone := ds.Clone()
	clone.SetCollection("buildings", nil)

	original, _ := ds.Collection("buildings")
	assert.Len(t, original, 2)

	cloned, _ := clone.Collection("buildings")
	assert.Empty(t, cloned)
}
