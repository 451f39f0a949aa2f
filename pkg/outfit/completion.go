package outfit

import (
	"fmt"
	"sort"
	"strings"

	"ai-shopper-be/pkg/catalog"
	"ai-shopper-be/pkg/similarity"
)

// Suggestion is a complete-the-look proposal anchored on a base item.
type Suggestion struct {
	NeededCategories []string                             `json:"needed_categories"`
	SuggestedItems   map[string][]similarity.ScoredResult `json:"suggested_items"`
	ConfidenceScore  float64                              `json:"confidence_score"`
	StyleReasoning   string                               `json:"style_reasoning"`
}

// completionRules maps an article type to the categories that complete it.
var completionRules = map[string][]string{
	// Bottoms need tops and shoes
	"Jeans":       {"Tshirts", "Shirts", "Casual Shoes", "Sports Shoes"},
	"Shorts":      {"Tshirts", "Shirts", "Casual Shoes", "Sports Shoes"},
	"Trousers":    {"Shirts", "Tshirts", "Formal Shoes", "Casual Shoes"},
	"Track Pants": {"Tshirts", "Sweatshirts", "Sports Shoes"},
	"Leggings":    {"Tops", "Tshirts", "Sports Shoes", "Casual Shoes"},

	// Tops need bottoms and shoes
	"Tshirts":     {"Jeans", "Shorts", "Trousers", "Casual Shoes", "Sports Shoes"},
	"Shirts":      {"Jeans", "Trousers", "Shorts", "Formal Shoes", "Casual Shoes"},
	"Tops":        {"Jeans", "Shorts", "Leggings", "Casual Shoes", "Sports Shoes"},
	"Sweatshirts": {"Jeans", "Track Pants", "Shorts", "Casual Shoes", "Sports Shoes"},
	"Sweaters":    {"Jeans", "Trousers", "Casual Shoes", "Formal Shoes"},
	"Jackets":     {"Jeans", "Trousers", "Tshirts", "Shirts", "Casual Shoes"},

	// Shoes need tops and bottoms
	"Casual Shoes": {"Jeans", "Shorts", "Tshirts", "Shirts"},
	"Sports Shoes": {"Jeans", "Shorts", "Track Pants", "Tshirts", "Sweatshirts"},
	"Formal Shoes": {"Trousers", "Shirts", "Jackets"},
	"Sandals":      {"Shorts", "Tshirts", "Casual Shoes"},
	"Flip Flops":   {"Shorts", "Tshirts", "Casual Shoes"},
	"Heels":        {"Dresses", "Skirts", "Trousers"},
	"Flats":        {"Dresses", "Skirts", "Jeans", "Trousers"},

	// Dresses are complete on their own but pair with shoes
	"Dresses": {"Heels", "Flats", "Casual Shoes"},
	"Skirts":  {"Tops", "Shirts", "Heels", "Flats"},

	// Traditional wear
	"Kurtas": {"Trousers", "Jeans", "Formal Shoes", "Casual Shoes"},
}

// colorCompatibility pairs a base colour with colours that wear well with it.
var colorCompatibility = map[string][]string{
	"Black":  {"White", "Grey", "Red", "Blue", "Navy", "Pink", "Yellow", "Green"},
	"White":  {"Black", "Blue", "Navy", "Red", "Green", "Pink", "Brown", "Grey"},
	"Blue":   {"White", "Black", "Grey", "Navy", "Brown", "Beige"},
	"Navy":   {"White", "Black", "Grey", "Blue", "Red", "Pink"},
	"Grey":   {"White", "Black", "Blue", "Navy", "Red", "Pink", "Yellow"},
	"Red":    {"White", "Black", "Navy", "Grey", "Blue"},
	"Green":  {"White", "Black", "Brown", "Beige", "Navy"},
	"Brown":  {"White", "Blue", "Green", "Beige", "Black"},
	"Beige":  {"White", "Brown", "Blue", "Green", "Navy"},
	"Pink":   {"White", "Black", "Navy", "Grey"},
	"Yellow": {"White", "Black", "Grey", "Navy"},
	"Purple": {"White", "Black", "Grey"},
	"Orange": {"White", "Black", "Navy", "Brown"},
	"Multi":  {"White", "Black", "Grey"},
}

var neutralColors = map[string]struct{}{
	"White": {}, "Black": {}, "Grey": {}, "Navy": {},
}

const maxPerCategory = 3

// Completer builds outfit suggestions with rule-based matching. No model
// calls: the tables above carry all the styling knowledge.
type Completer struct{}

func NewCompleter() *Completer {
	return &Completer{}
}

// CompleteLook suggests up to three compatible items per needed category.
// Returns nil when no rules exist for the base item's article type or no
// compatible candidates survive filtering.
func (c *Completer) CompleteLook(base *catalog.ProductRecord, available map[string][]similarity.ScoredResult, userGender string) *Suggestion {
	needed, ok := completionRules[base.ArticleType]
	if !ok {
		return nil
	}

	suggested := make(map[string][]similarity.ScoredResult)
	for _, category := range needed {
		candidates, ok := available[category]
		if !ok {
			continue
		}
		compatible := filterCompatible(base, candidates, userGender)
		if len(compatible) == 0 {
			continue
		}
		if len(compatible) > maxPerCategory {
			compatible = compatible[:maxPerCategory]
		}
		suggested[category] = compatible
	}

	if len(suggested) == 0 {
		return nil
	}

	filled := len(suggested)
	target := len(needed)
	if target > 3 {
		target = 3
	}
	confidence := float64(filled) / float64(target)
	if confidence > 1.0 {
		confidence = 1.0
	}

	categories := make([]string, 0, len(suggested))
	for cat := range suggested {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	return &Suggestion{
		NeededCategories: categories,
		SuggestedItems:   suggested,
		ConfidenceScore:  confidence,
		StyleReasoning:   styleReasoning(base, filled),
	}
}

func filterCompatible(base *catalog.ProductRecord, candidates []similarity.ScoredResult, userGender string) []similarity.ScoredResult {
	compatible := make([]similarity.ScoredResult, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Product.Id == base.Id {
			continue
		}
		if !genderCompatible(base, cand.Product, userGender) {
			continue
		}
		if !colorCompatible(base.Color, cand.Product.Color) {
			continue
		}
		if !styleCompatible(base.Usage, cand.Product.Usage) {
			continue
		}
		compatible = append(compatible, cand)
	}

	sort.SliceStable(compatible, func(a, b int) bool {
		return compatible[a].Score > compatible[b].Score
	})
	return compatible
}

func genderCompatible(base, candidate *catalog.ProductRecord, userGender string) bool {
	if userGender == "" {
		return true
	}
	user := strings.ToLower(userGender)
	baseG := strings.ToLower(base.Gender)
	candG := strings.ToLower(candidate.Gender)

	if baseG == "unisex" || candG == "unisex" {
		return true
	}
	return baseG == user && candG == user
}

func colorCompatible(baseColor, candidateColor string) bool {
	for _, c := range colorCompatibility[baseColor] {
		if c == candidateColor {
			return true
		}
	}
	if baseColor == "Multi" || candidateColor == "Multi" {
		return true
	}
	if _, ok := neutralColors[baseColor]; ok {
		return true
	}
	if _, ok := neutralColors[candidateColor]; ok {
		return true
	}
	return false
}

var (
	casualStyles   = map[string]struct{}{"casual": {}, "everyday": {}, "sports": {}, "home": {}}
	formalStyles   = map[string]struct{}{"formal": {}, "party": {}, "ethnic": {}}
	versatileUsage = map[string]struct{}{"casual": {}, "everyday": {}}
)

func styleCompatible(baseUsage, candidateUsage string) bool {
	base := strings.ToLower(baseUsage)
	cand := strings.ToLower(candidateUsage)

	if base == cand {
		return true
	}
	if _, ok := casualStyles[base]; ok {
		if _, ok := casualStyles[cand]; ok {
			return true
		}
	}
	if _, ok := formalStyles[base]; ok {
		if _, ok := formalStyles[cand]; ok {
			return true
		}
	}
	if _, ok := versatileUsage[base]; ok {
		return true
	}
	if _, ok := versatileUsage[cand]; ok {
		return true
	}
	return false
}

func styleReasoning(base *catalog.ProductRecord, filledCategories int) string {
	color := strings.ToLower(base.Color)
	articleType := strings.ToLower(base.ArticleType)
	usage := strings.ToLower(base.Usage)

	switch filledCategories {
	case 1:
		return fmt.Sprintf("Perfect match for your %s %s with complementary styling.", color, articleType)
	case 2:
		return fmt.Sprintf("Complete the look with these %s pieces that complement your %s %s.", usage, color, articleType)
	default:
		return fmt.Sprintf("Full outfit suggestion with %d complementary pieces for a cohesive %s look.", filledCategories, usage)
	}
}
