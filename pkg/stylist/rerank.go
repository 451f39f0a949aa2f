package stylist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-shopper-be/pkg/llm"
	"ai-shopper-be/pkg/similarity"
	"ai-shopper-be/pkg/vision"
)

// Reranker asks the model to reorder similarity results by profile fit. The
// operation is set-preserving: every input item appears in the output exactly
// once, and any failure returns the original order.
type Reranker struct {
	llm llm.ChatCompleter
}

func NewReranker(completer llm.ChatCompleter) *Reranker {
	return &Reranker{llm: completer}
}

const rerankSystemPrompt = `You are a personal fashion stylist. Rank the provided clothing items based on how well they match the user's profile and preferences. Consider style, color, occasion, and overall fit with their requirements.

Return a JSON object with a "ranking" array of product IDs in order of best match (best first). Include only the IDs, no explanations.`

func (r *Reranker) Rerank(ctx context.Context, profile Profile, results []similarity.ScoredResult, analysis *vision.StyleAnalysis) []similarity.ScoredResult {
	if len(results) <= 1 {
		return results
	}

	summaries := make([]string, len(results))
	for i, res := range results {
		summaries[i] = fmt.Sprintf("ID: %s, Name: %s, Type: %s, Color: %s, Usage: %s",
			res.Product.Id, res.Product.Name, res.Product.ArticleType, res.Product.Color, res.Product.Usage)
	}

	inspirationText := formatAnalysis(analysis)

	articleTypes := "Any"
	if len(profile.PreferredArticleTypes) > 0 {
		articleTypes = strings.Join(profile.PreferredArticleTypes, ", ")
	}

	userPrompt := fmt.Sprintf(`User Profile:
- Shopping Intent: %s
- Gender: %s
- Preferred Styles: %s
- Preferred Colors: %s
- Preferred Article Types: %s

%s

Products to rank:
%s

Return JSON object with a "ranking" array of product IDs ranked by best match.`,
		profile.ShoppingPrompt,
		profile.Gender,
		strings.Join(profile.PreferredStyles, ", "),
		strings.Join(profile.PreferredColors, ", "),
		articleTypes,
		inspirationText,
		strings.Join(summaries, "\n"),
	)

	raw, err := r.llm.Chat(ctx, []llm.Message{
		{Role: "system", Content: rerankSystemPrompt},
		{Role: "user", Content: userPrompt},
	},
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(300),
		llm.WithJSONMode(),
	)
	if err != nil {
		return results
	}

	var ranking struct {
		Ranking []string `json:"ranking"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &ranking); err != nil {
		return results
	}

	return applyRanking(results, ranking.Ranking)
}

// applyRanking reorders results to follow rankedIds, then appends anything the
// model left out or hallucinated around. Unknown IDs are ignored.
func applyRanking(results []similarity.ScoredResult, rankedIds []string) []similarity.ScoredResult {
	byId := make(map[string]similarity.ScoredResult, len(results))
	for _, res := range results {
		byId[res.Product.Id] = res
	}

	reordered := make([]similarity.ScoredResult, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, id := range rankedIds {
		if _, dup := seen[id]; dup {
			continue
		}
		res, ok := byId[id]
		if !ok {
			continue
		}
		reordered = append(reordered, res)
		seen[id] = struct{}{}
	}

	for _, res := range results {
		if _, ok := seen[res.Product.Id]; !ok {
			reordered = append(reordered, res)
		}
	}
	return reordered
}

func formatAnalysis(analysis *vision.StyleAnalysis) string {
	if analysis == nil {
		return ""
	}
	parts := []string{}
	if analysis.StyleNotes != "" {
		parts = append(parts, "Style: "+analysis.StyleNotes)
	}
	if len(analysis.Items) > 0 {
		parts = append(parts, "Items seen: "+strings.Join(analysis.Items, ", "))
	}
	if len(analysis.Colors) > 0 {
		parts = append(parts, "Colors: "+strings.Join(analysis.Colors, ", "))
	}
	if len(analysis.Occasions) > 0 {
		parts = append(parts, "Occasions: "+strings.Join(analysis.Occasions, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Inspiration Analysis: " + strings.Join(parts, " | ")
}
