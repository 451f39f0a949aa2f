package similarity

import (
	"sort"

	"ai-shopper-be/pkg/catalog"
)

// embeddingStrategy scores every record that carries an embedding vector by
// cosine similarity against the query vector. Records without vectors (the
// un-embedded remainder while a background upgrade is pending) are skipped.
type embeddingStrategy struct{}

func (embeddingStrategy) search(snap *catalog.Snapshot, q Query) []ScoredResult {
	excludeSet := buildExcludeSet(q.ExcludeIds)

	results := make([]ScoredResult, 0, len(snap.Records))
	for _, rec := range snap.Records {
		if excluded(excludeSet, rec.Id) {
			continue
		}
		if len(rec.Embedding) == 0 {
			continue
		}
		if !passesFilters(rec, q.Filters) {
			continue
		}
		results = append(results, newResult(rec, Cosine(q.Vector, rec.Embedding)))
	}

	// Stable: equal scores keep catalog insertion order.
	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })

	if len(results) > q.K {
		results = results[:q.K]
	}
	return results
}
