package resource

import (
	"context"
	"log"
	"mockserver/internal/core/domain"
	"mockserver/internal/core/query"
)

const (
	articlesResource    = "articles"
	articlesAuthorField = "author"
)

// ArticleService answers the standalone articles endpoint. It reads the
// backing store on every call instead of caching it.
type ArticleService struct {
	loader DatasetLoader
}

func NewArticleService(loader DatasetLoader) *ArticleService {
	return &ArticleService{loader: loader}
}

// Articles returns the whole dataset when author is empty, otherwise a dataset
// holding only the articles written by exactly that author.
func (s *ArticleService) Articles(ctx context.Context, author string) *domain.Dataset {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		log.Printf("ERROR: Failed to read articles data: %v", err)
		ds = domain.NewDataset()
		ds.SetCollection(articlesResource, nil)
	}

	if author == "" {
		return ds
	}

	articles, _ := ds.Collection(articlesResource)

	filtered := domain.NewDataset()
	filtered.SetCollection(articlesResource, query.MatchExact(articles, articlesAuthorField, author))
	return filtered
}
