package assignment

import (
	"fmt"
	"sort"
	"strings"

	"courier-dispatch/internal/domain"
)

// SelectionLexicographic names the default selection policy.
const SelectionLexicographic = "lexicographic"

// LexicographicSelector prefers the smallest partner id. It has no notion
// of proximity, rating or load.
type LexicographicSelector struct{}

func (LexicographicSelector) Rank(_ domain.Order, waiting []domain.Partner) []domain.Partner {
	out := append([]domain.Partner(nil), waiting...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewSelector - selector by configured policy name.
func NewSelector(name string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SelectionLexicographic:
		return LexicographicSelector{}, nil
	default:
		return nil, fmt.Errorf("unknown selection policy: %s", name)
	}
}
