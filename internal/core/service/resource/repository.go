package resource

import (
	"context"
	"mockserver/internal/core/domain"
)

// Repository owns the in-memory dataset and keeps the backing store in step
// with it.
type Repository interface {
	// Get returns a private copy of the named collection.
	Get(ctx context.Context, name string) ([]domain.Item, bool)
	// Append adds item to an existing collection and persists the whole
	// dataset before returning. Unknown names fail with ErrResourceNotFound.
	Append(ctx context.Context, name string, item domain.Item) error
	// ReplaceAll swaps the in-memory dataset without persisting it.
	ReplaceAll(ctx context.Context, ds *domain.Dataset)
	ListResources(ctx context.Context) []string
}

// DatasetLoader reads a full dataset from a backing store.
type DatasetLoader interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}
