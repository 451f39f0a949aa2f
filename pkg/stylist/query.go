package stylist

import (
	"context"
	"fmt"
	"strings"

	"ai-shopper-be/pkg/llm"
	"ai-shopper-be/pkg/vision"
)

// QueryBuilder turns a shopper profile (plus optional image analysis) into a
// search query string, optionally enhanced by the language model.
type QueryBuilder struct {
	llm llm.ChatCompleter
}

func NewQueryBuilder(completer llm.ChatCompleter) *QueryBuilder {
	return &QueryBuilder{llm: completer}
}

// BuildSearchQuery concatenates profile and analysis signals, then asks the
// model for a cleaner phrasing. The concatenated query is the fallback when
// the model is unavailable, so this never fails.
func (b *QueryBuilder) BuildSearchQuery(ctx context.Context, profile Profile, analysis *vision.StyleAnalysis) string {
	elements := []string{
		profile.ShoppingPrompt,
		profile.Gender,
		strings.Join(profile.PreferredStyles, " "),
		strings.Join(profile.PreferredColors, " "),
	}

	if analysis != nil {
		elements = append(elements, analysis.Items...)
		elements = append(elements, analysis.Colors...)
		elements = append(elements, analysis.Occasions...)
		if analysis.StyleNotes != "" {
			elements = append(elements, analysis.StyleNotes)
		}
	}

	nonEmpty := elements[:0]
	for _, e := range elements {
		if strings.TrimSpace(e) != "" {
			nonEmpty = append(nonEmpty, e)
		}
	}
	baseQuery := strings.Join(nonEmpty, " ")

	prompt := fmt.Sprintf(`Create an enhanced search query for finding clothing items based on this user request: "%s"

Focus on:
- Specific clothing items and accessories
- Style descriptors and aesthetics
- Colors and patterns
- Occasions and contexts
- Gender and fit preferences

Return only the enhanced search terms, no extra text.`, baseQuery)

	enhanced, err := b.llm.Generate(ctx, prompt,
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(150),
	)
	if err != nil || strings.TrimSpace(enhanced) == "" {
		return baseQuery
	}
	return strings.TrimSpace(enhanced)
}
