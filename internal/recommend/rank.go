package recommend

import (
	"sort"

	"github.com/gastosmart/backend/internal/domain"
)

// rank orders candidates by score descending and drops duplicates. The sort
// is stable, so candidates with equal scores keep their emission order, and
// deduplication keeps the first (highest-ranked) entry for each (type, title)
// pair. A non-positive limit means no cap.
func rank(recs []domain.Recommendation, limit int) []domain.Recommendation {
	sorted := make([]domain.Recommendation, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScoreValue() > sorted[j].ScoreValue()
	})

	type recKey struct {
		recType string
		title   string
	}
	seen := make(map[recKey]bool, len(sorted))
	out := make([]domain.Recommendation, 0, len(sorted))
	for _, r := range sorted {
		k := recKey{r.Type, r.Title}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
