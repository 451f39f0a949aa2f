package similarity

import "ai-shopper-be/pkg/catalog"

// indexStrategy searches the prebuilt exact index. It over-fetches 3x the
// requested k so post-filtering losses still leave enough candidates, then
// converts distance to a score with 1/(1+d).
type indexStrategy struct{}

func (indexStrategy) search(snap *catalog.Snapshot, q Query) []ScoredResult {
	if snap.Index == nil || len(q.Vector) != snap.Index.Dim() {
		return nil
	}

	searchK := q.K * 3
	if searchK > snap.Index.Len() {
		searchK = snap.Index.Len()
	}
	distances, positions := snap.Index.Search(q.Vector, searchK)

	excludeSet := buildExcludeSet(q.ExcludeIds)
	results := make([]ScoredResult, 0, q.K)
	for i, pos := range positions {
		if len(results) >= q.K {
			break
		}
		rec := snap.Records[pos]
		if excluded(excludeSet, rec.Id) {
			continue
		}
		if !passesFilters(rec, q.Filters) {
			continue
		}
		score := 1.0 / (1.0 + float64(distances[i]))
		results = append(results, newResult(rec, score))
	}
	return results
}
