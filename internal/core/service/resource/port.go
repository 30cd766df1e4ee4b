package resource

import (
	"context"
	"mockserver/internal/core/domain"
	"mockserver/internal/core/query"
)

type Service interface {
	// Queries
	ListItems(ctx context.Context, resourceName string, spec query.Spec) ([]domain.Item, int, error)
	GetItemByID(ctx context.Context, resourceName, itemID string) (domain.Item, error)
	ListComments(ctx context.Context, postID string) ([]domain.Item, error)
	ListResources(ctx context.Context) []string

	// Commands
	CreateItem(ctx context.Context, resourceName string, item domain.Item) (domain.Item, error)
}
