package copier

import (
	"fmt"
	"mockserver/internal/core/domain"
)

// DeepCopy returns a copy of src that shares no mutable state with it.
func DeepCopy[T any](src T) (T, error) {
	var zero T

	copied := deepCopyValue(any(src))
	if result, ok := copied.(T); ok {
		return result, nil
	}

	return zero, fmt.Errorf("deep copy failed: expected %T, got %T", zero, copied)
}

func deepCopyValue(src any) any {
	if src == nil {
		return nil
	}

	switch v := src.(type) {
	case []domain.Item:
		if v == nil {
			return []domain.Item(nil)
		}
		dst := make([]domain.Item, len(v))
		for i, item := range v {
			dst[i] = item.Clone()
		}
		return dst

	case *domain.Dataset:
		if v == nil {
			return (*domain.Dataset)(nil)
		}
		return v.Clone()

	default:
		// values are immutable once decoded
		return v
	}
}
