package resource

import (
	"mockserver/internal/core/domain"
	"mockserver/internal/core/query"
	"strconv"
)

// NextID returns one more than the largest integer id in items. Ids that are
// missing or not integers count as 0, so an empty collection starts at "1".
func NextID(items []domain.Item) string {
	maxID := 0
	for _, item := range items {
		id, ok := item.ID()
		if !ok {
			continue
		}

		if n, ok := query.ParseInt(id); ok && n > maxID {
			maxID = n
		}
	}
	return strconv.Itoa(maxID + 1)
}
