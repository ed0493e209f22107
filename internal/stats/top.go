package stats

import (
	"sort"

	"github.com/verte-zerg/typerush/internal/model"
)

// MostPracticed returns the n characters with the most attempts.
func MostPracticed(aggs []model.CharAggregate, n int) []model.CharAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.CharAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		ti := items[i].Correct + items[i].Incorrect
		tj := items[j].Correct + items[j].Incorrect
		if ti == tj {
			return items[i].Char < items[j].Char
		}
		return ti > tj
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
