package similarity

import (
	"sort"
	"strings"

	"ai-shopper-be/pkg/catalog"
)

// NeutralScore is reported when no query text is available and records come
// back in catalog order. It marks a degraded, low-information result set.
const NeutralScore = 0.5

// Field weights for keyword hits. A display-name match tells us the most, a
// hit anywhere else in the searchable text the least.
const (
	weightName        = 0.30
	weightArticleType = 0.25
	weightColor       = 0.20
	weightUsage       = 0.15
	weightOther       = 0.10
	bonusGender       = 0.20
	bonusSeason       = 0.15
)

var (
	menTerms    = map[string]struct{}{"men": {}, "man": {}, "male": {}}
	womenTerms  = map[string]struct{}{"women": {}, "woman": {}, "female": {}}
	seasonTerms = map[string]struct{}{
		"summer": {}, "winter": {}, "spring": {}, "fall": {},
		"casual": {}, "formal": {}, "party": {}, "beach": {}, "pool": {},
	}
)

// keywordStrategy is the no-vector tier: tokenize the free-text query and sum
// weighted field hits per token, clamped to [0,1].
type keywordStrategy struct{}

func (keywordStrategy) search(snap *catalog.Snapshot, q Query) []ScoredResult {
	excludeSet := buildExcludeSet(q.ExcludeIds)
	tokens := strings.Fields(strings.ToLower(q.Text))

	results := make([]ScoredResult, 0, q.K)
	if len(tokens) == 0 {
		// Degraded path: catalog order with a constant neutral score.
		for _, rec := range snap.Records {
			if len(results) >= q.K {
				break
			}
			if excluded(excludeSet, rec.Id) || !passesFilters(rec, q.Filters) {
				continue
			}
			results = append(results, newResult(rec, NeutralScore))
		}
		return results
	}

	for _, rec := range snap.Records {
		if excluded(excludeSet, rec.Id) || !passesFilters(rec, q.Filters) {
			continue
		}
		score := keywordScore(rec, tokens)
		if score <= 0 {
			continue
		}
		results = append(results, newResult(rec, score))
	}

	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })

	if len(results) > q.K {
		results = results[:q.K]
	}
	return results
}

func keywordScore(rec *catalog.ProductRecord, tokens []string) float64 {
	name := strings.ToLower(rec.Name)
	articleType := strings.ToLower(rec.ArticleType)
	color := strings.ToLower(rec.Color)
	usage := strings.ToLower(rec.Usage)
	season := strings.ToLower(rec.Season)
	gender := strings.ToLower(rec.Gender)
	fullText := strings.ToLower(rec.SearchableText())

	var score float64
	for _, tok := range tokens {
		switch {
		case strings.Contains(name, tok):
			score += weightName
		case strings.Contains(articleType, tok):
			score += weightArticleType
		case strings.Contains(color, tok):
			score += weightColor
		case strings.Contains(usage, tok):
			score += weightUsage
		case strings.Contains(fullText, tok):
			score += weightOther
		}
	}

	if tokensIntersect(tokens, menTerms) {
		if gender == "men" || gender == "male" {
			score += bonusGender
		}
	} else if tokensIntersect(tokens, womenTerms) {
		if gender == "women" || gender == "female" {
			score += bonusGender
		}
	}

	for _, tok := range tokens {
		if _, ok := seasonTerms[tok]; !ok {
			continue
		}
		if strings.Contains(season, tok) || strings.Contains(usage, tok) {
			score += bonusSeason
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func tokensIntersect(tokens []string, set map[string]struct{}) bool {
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}
