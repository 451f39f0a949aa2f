package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-shopper-be/pkg/llm"
)

// StyleAnalysis holds the style insights extracted from inspiration images.
// Every field is always populated, possibly with its zero value, so callers
// never have to nil-check individual keys.
type StyleAnalysis struct {
	Items      []string `json:"items"`
	StyleNotes string   `json:"style_notes"`
	Colors     []string `json:"colors"`
	Occasions  []string `json:"occasions"`
	Gender     string   `json:"gender"`
	Season     string   `json:"season"`
}

// Analyzer extracts style insights from base64-encoded inspiration images.
type Analyzer interface {
	AnalyzeImages(ctx context.Context, base64Images []string) (*StyleAnalysis, error)
}

const analysisPrompt = `Analyze these fashion inspiration images and provide detailed style insights for a shopping recommendation system.

Please return a JSON response with:
1. "items": List of specific clothing items/accessories you see (e.g., "black leather jacket", "white sneakers")
2. "style_notes": Description of the overall aesthetic and style direction
3. "colors": List of dominant colors
4. "occasions": List of occasions/contexts this style would be appropriate for
5. "gender": Inferred target gender ("men", "women", or "unisex")
6. "season": Inferred season if applicable ("spring", "summer", "fall", "winter", or "year-round")

Focus on actionable details that would help find similar clothing items.`

type llmAnalyzer struct {
	llm llm.ChatCompleter
}

func NewAnalyzer(completer llm.ChatCompleter) Analyzer {
	return &llmAnalyzer{llm: completer}
}

// AnalyzeImages never fails the caller: on provider errors it degrades to an
// empty analysis so the recommendation flow continues without image insight.
func (a *llmAnalyzer) AnalyzeImages(ctx context.Context, base64Images []string) (*StyleAnalysis, error) {
	if len(base64Images) == 0 {
		return emptyAnalysis(), nil
	}

	// Image payloads ride along as data URLs appended to the prompt. Vision
	// capable chat models accept them inline.
	var sb strings.Builder
	sb.WriteString(analysisPrompt)
	for _, img := range base64Images {
		sb.WriteString("\n\nImage (data URL): data:image/jpeg;base64,")
		sb.WriteString(img)
	}

	raw, err := a.llm.Generate(ctx, sb.String(),
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(1000),
	)
	if err != nil {
		return emptyAnalysis(), nil
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		// Model ignored the JSON instruction. Salvage what we can from the
		// free text instead of throwing the response away.
		return extractFromText(raw), nil
	}
	return analysis, nil
}

func parseAnalysis(raw string) (*StyleAnalysis, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var analysis StyleAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis json: %w", err)
	}
	normalize(&analysis)
	return &analysis, nil
}

// extractFromText is the keyword-matching fallback when the model answers in
// prose rather than JSON.
func extractFromText(text string) *StyleAnalysis {
	lower := strings.ToLower(text)

	colors := []string{}
	for _, c := range []string{"black", "white", "blue", "red", "green", "yellow", "brown", "gray", "pink", "purple", "orange"} {
		if strings.Contains(lower, c) {
			colors = append(colors, c)
		}
	}

	occasions := []string{}
	for _, o := range []string{"casual", "formal", "business", "party", "wedding", "date", "work", "weekend"} {
		if strings.Contains(lower, o) {
			occasions = append(occasions, o)
		}
	}

	items := []string{}
	for _, it := range []string{"shirt", "pants", "dress", "jacket", "shoes", "sneakers", "boots", "jeans", "sweater", "coat"} {
		if strings.Contains(lower, it) {
			items = append(items, it)
		}
	}

	notes := text
	if len(notes) > 200 {
		notes = notes[:200] + "..."
	}

	return &StyleAnalysis{
		Items:      items,
		StyleNotes: notes,
		Colors:     colors,
		Occasions:  occasions,
		Gender:     "unisex",
		Season:     "year-round",
	}
}

func emptyAnalysis() *StyleAnalysis {
	return &StyleAnalysis{
		Items:     []string{},
		Colors:    []string{},
		Occasions: []string{},
	}
}

func normalize(a *StyleAnalysis) {
	if a.Items == nil {
		a.Items = []string{}
	}
	if a.Colors == nil {
		a.Colors = []string{}
	}
	if a.Occasions == nil {
		a.Occasions = []string{}
	}
}
