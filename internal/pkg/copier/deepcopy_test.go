package copier_test

import (
	"mockserver/internal/core/domain"
	"mockserver/internal/pkg/copier"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepCopyItems(t *testing.T) {
	item, err := domain.ParseItem([]byte(`{"id":"1","title":"Go"}`))
	require.NoError(t, err)
	src := []domain.Item{item}

	dst, err := copier.DeepCopy(src)
	require.NoError(t, err)

	dst[0].SetID("changed")

	id, _ := src[0].ID()
	assert.Equal(t, "1", id)
}

func TestDeepCopyDataset(t *testing.T) {
	src, err := domain.ParseDataset([]byte(`{"books":[{"id":"1"}]}`))
	require.NoError(t, err)

	dst, err := copier.DeepCopy(src)
	require.NoError(t, err)

	dst.SetCollection("books", nil)

	books, _ := src.Collection("books")
	assert.Len(t, books, 1)
}

func TestDeepCopyNil(t *testing.T) {
	var items []domain.Item

	dst, err := copier.DeepCopy(items)

	require.NoError(t, err)
	assert.Nil(t, dst)
}
