package similarity

import (
	"hash/fnv"

	"ai-shopper-be/pkg/catalog"
)

// Filters are the shared post-scoring filters every strategy applies.
// ArticleTypes is expected to already be alias-expanded by the caller
// (a user-facing category can map to several catalog type strings).
type Filters struct {
	Gender       string
	ArticleTypes []string
}

// Query is one search call. K bounds the result length; ExcludeIds are
// dropped before scoring.
type Query struct {
	Vector     []float32
	Text       string
	K          int
	ExcludeIds []string
	Filters    Filters
}

// ScoredResult pairs a catalog record with its similarity score. Higher is
// better; results are ordered descending with catalog insertion order as the
// stable tie-break.
type ScoredResult struct {
	Product       *catalog.ProductRecord
	Score         float64
	StoreLocation string
}

// storeLocations are the fixed pick-up buckets a product id hashes into.
var storeLocations = []string{"A1-B2", "C3-D4", "E5-F6", "G7-H8", "I9-J10"}

// StoreLocation maps a product id to a bucket with a stable hash, so the same
// product always reports the same location across processes and restarts.
func StoreLocation(productId string) string {
	h := fnv.New32a()
	h.Write([]byte(productId))
	return storeLocations[h.Sum32()%uint32(len(storeLocations))]
}

// strategy is one of the three interchangeable search tiers.
type strategy interface {
	search(snap *catalog.Snapshot, q Query) []ScoredResult
}

// Engine routes a search to the strategy matching the catalog's current
// mode. The snapshot (records and mode together) is taken once per call, so
// a concurrent background upgrade can never produce a torn read within one
// search.
type Engine struct {
	store      *catalog.Store
	strategies map[catalog.SearchMode]strategy
}

func NewEngine(store *catalog.Store) *Engine {
	return &Engine{
		store: store,
		strategies: map[catalog.SearchMode]strategy{
			catalog.ModeVectorIndex:         indexStrategy{},
			catalog.ModeEmbeddingSimilarity: embeddingStrategy{},
			catalog.ModeKeywordMatch:        keywordStrategy{},
		},
	}
}

// Search returns at most q.K results, descending by score. Fewer than K
// eligible records simply yields a shorter list.
func (e *Engine) Search(q Query) ([]ScoredResult, error) {
	snap, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}
	if q.K <= 0 {
		return nil, nil
	}
	return e.strategies[snap.Mode].search(snap, q), nil
}

// eligibility shared by all three strategies.

func buildExcludeSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func excluded(set map[string]struct{}, id string) bool {
	if set == nil {
		return false
	}
	_, ok := set[id]
	return ok
}

func passesFilters(rec *catalog.ProductRecord, f Filters) bool {
	if f.Gender != "" && rec.Gender != f.Gender && rec.Gender != "Unisex" {
		return false
	}
	if len(f.ArticleTypes) > 0 {
		found := false
		for _, at := range f.ArticleTypes {
			if rec.ArticleType == at {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func newResult(rec *catalog.ProductRecord, score float64) ScoredResult {
	return ScoredResult{
		Product:       rec,
		Score:         score,
		StoreLocation: StoreLocation(rec.Id),
	}
}
