package stats

import (
	"sort"

	"github.com/verte-zerg/typerush/internal/model"
)

// SelectWeakChars orders aggregates by ascending accuracy and keeps the top
// entries. top <= 0 keeps all of them.
func SelectWeakChars(aggs []model.CharAggregate, top int) []model.CharAggregate {
	if len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.CharAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai := weakAccuracy(candidates[i])
		aj := weakAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
}

// WeakSet returns the first rune of each aggregate as a lookup set.
func WeakSet(aggs []model.CharAggregate) map[rune]struct{} {
	set := map[rune]struct{}{}
	for _, agg := range aggs {
		runes := []rune(agg.Char)
		if len(runes) > 0 {
			set[runes[0]] = struct{}{}
		}
	}
	return set
}

// Characters with no attempts count as fully accurate so they never rank weak.
func weakAccuracy(agg model.CharAggregate) float64 {
	if agg.Correct+agg.Incorrect == 0 {
		return 1.0
	}
	return agg.Accuracy()
}
