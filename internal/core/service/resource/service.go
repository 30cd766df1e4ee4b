package resource

import (
	"context"
	"fmt"
	"mockserver/internal/core/domain"
	"mockserver/internal/core/query"
	"sync"
)

const (
	commentsResource = "comments"
	commentPostField = "postId"
)

type resourceService struct {
	resourceRepo Repository

	// serialises id allocation with the append that consumes the id
	writeMu sync.Mutex
}

func NewService(repo Repository) Service {
	return &resourceService{
		resourceRepo: repo,
	}
}

var _ Service = (*resourceService)(nil)

func (s *resourceService) ListItems(ctx context.Context, resourceName string, spec query.Spec) ([]domain.Item, int, error) {
	if resourceName == "" {
		return nil, 0, ErrEmptyResourceName
	}

	items, ok := s.resourceRepo.Get(ctx, resourceName)
	if !ok {
		return nil, 0, fmt.Errorf("ListItems %q: %w", resourceName, ErrResourceNotFound)
	}

	result, total := query.Query(items, spec)
	return result, total, nil
}

func (s *resourceService) GetItemByID(ctx context.Context, resourceName, itemID string) (domain.Item, error) {
	if resourceName == "" {
		return domain.Item{}, ErrEmptyResourceName
	}

	if itemID == "" {
		return domain.Item{}, ErrEmptyRecordID
	}

	items, ok := s.resourceRepo.Get(ctx, resourceName)
	if !ok {
		return domain.Item{}, fmt.Errorf("GetItemByID %q: %w", resourceName, ErrResourceNotFound)
	}

	for _, item := range items {
		if id, hasID := item.ID(); hasID && id == itemID {
			return item, nil
		}
	}

	return domain.Item{}, fmt.Errorf("GetItemByID %q/%q: %w", resourceName, itemID, ErrRecordNotFound)
}

func (s *resourceService) CreateItem(ctx context.Context, resourceName string, item domain.Item) (domain.Item, error) {
	if resourceName == "" {
		return domain.Item{}, ErrEmptyResourceName
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, ok := s.resourceRepo.Get(ctx, resourceName)
	if !ok {
		return domain.Item{}, fmt.Errorf("CreateItem %q: %w", resourceName, ErrResourceNotFound)
	}

	// any client supplied id is replaced by the allocated one
	newItem := item.Clone()
	newItem.SetID(NextID(existing))

	if err := s.resourceRepo.Append(ctx, resourceName, newItem); err != nil {
		return domain.Item{}, fmt.Errorf("CreateItem %q: could not save to repository: %w", resourceName, err)
	}

	return newItem, nil
}

func (s *resourceService) ListComments(ctx context.Context, postID string) ([]domain.Item, error) {
	comments, ok := s.resourceRepo.Get(ctx, commentsResource)
	if !ok {
		return nil, fmt.Errorf("ListComments: %w", ErrResourceNotFound)
	}

	id, ok := query.ParseInt(postID)
	if !ok {
		// a non-numeric post id can never equal a numeric postId
		return []domain.Item{}, nil
	}

	return query.MatchNumber(comments, commentPostField, float64(id)), nil
}

func (s *resourceService) ListResources(ctx context.Context) []string {
	return s.resourceRepo.ListResources(ctx)
}
