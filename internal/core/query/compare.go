package query

import (
	"cmp"
	"mockserver/internal/core/domain"
	"strings"
)

// Compare orders two optional field values. When either side is missing they
// compare equal. Two numeric sides compare as numbers, anything else compares
// by text.
func Compare(a domain.Value, aok bool, b domain.Value, bok bool) int {
	if !aok || !bok {
		return 0
	}

	an, aNum := a.Number()
	bn, bNum := b.Number()
	if aNum && bNum {
		return cmp.Compare(an, bn)
	}

	return strings.Compare(a.Text(), b.Text())
}
