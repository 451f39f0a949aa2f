package outfit

import (
	"testing"

	"ai-shopper-be/pkg/catalog"
	"ai-shopper-be/pkg/similarity"
)

func scored(id, articleType, color, gender, usage string, score float64) similarity.ScoredResult {
	return similarity.ScoredResult{
		Product: &catalog.ProductRecord{
			Id: id, ArticleType: articleType, Color: color, Gender: gender, Usage: usage,
		},
		Score: score,
	}
}

func TestCompleteLookNoRulesForArticleType(t *testing.T) {
	c := NewCompleter()
	base := &catalog.ProductRecord{Id: "1", ArticleType: "Cufflinks", Color: "Black", Gender: "Men", Usage: "Formal"}

	if got := c.CompleteLook(base, map[string][]similarity.ScoredResult{}, "Men"); got != nil {
		t.Errorf("expected nil for unknown article type, got %+v", got)
	}
}

func TestCompleteLookNoCompatibleCandidates(t *testing.T) {
	c := NewCompleter()
	base := &catalog.ProductRecord{Id: "1", ArticleType: "Jeans", Color: "Blue", Gender: "Men", Usage: "Casual"}

	available := map[string][]similarity.ScoredResult{
		// Wrong gender and clashing color.
		"Tshirts": {scored("2", "Tshirts", "Purple", "Women", "Casual", 0.9)},
	}
	if got := c.CompleteLook(base, available, "Men"); got != nil {
		t.Errorf("expected nil when nothing survives filtering, got %+v", got)
	}
}

func TestCompleteLookBuildsSuggestion(t *testing.T) {
	c := NewCompleter()
	base := &catalog.ProductRecord{Id: "1", ArticleType: "Jeans", Color: "Blue", Gender: "Men", Usage: "Casual"}

	available := map[string][]similarity.ScoredResult{
		"Tshirts":      {scored("2", "Tshirts", "White", "Men", "Casual", 0.8)},
		"Casual Shoes": {scored("3", "Casual Shoes", "Black", "Unisex", "Casual", 0.7)},
		// Dresses are not in the Jeans completion rules and must be ignored.
		"Dresses": {scored("4", "Dresses", "White", "Women", "Casual", 0.9)},
	}

	got := c.CompleteLook(base, available, "Men")
	if got == nil {
		t.Fatal("expected a suggestion")
	}
	if len(got.SuggestedItems["Tshirts"]) != 1 || len(got.SuggestedItems["Casual Shoes"]) != 1 {
		t.Errorf("suggested items wrong: %+v", got.SuggestedItems)
	}
	if _, ok := got.SuggestedItems["Dresses"]; ok {
		t.Error("Dresses must not appear for a Jeans base")
	}
	// Two of at most three needed categories filled.
	want := 2.0 / 3.0
	if got.ConfidenceScore < want-1e-9 || got.ConfidenceScore > want+1e-9 {
		t.Errorf("confidence = %v, want %v", got.ConfidenceScore, want)
	}
	if got.StyleReasoning == "" {
		t.Error("expected non-empty reasoning")
	}
	if len(got.NeededCategories) != 2 || got.NeededCategories[0] != "Casual Shoes" {
		t.Errorf("needed categories not sorted: %v", got.NeededCategories)
	}
}

func TestCompleteLookCapsPerCategoryAndSortsByScore(t *testing.T) {
	c := NewCompleter()
	base := &catalog.ProductRecord{Id: "1", ArticleType: "Jeans", Color: "Black", Gender: "Men", Usage: "Casual"}

	available := map[string][]similarity.ScoredResult{
		"Tshirts": {
			scored("2", "Tshirts", "White", "Men", "Casual", 0.5),
			scored("3", "Tshirts", "Grey", "Men", "Casual", 0.9),
			scored("4", "Tshirts", "Red", "Men", "Casual", 0.7),
			scored("5", "Tshirts", "Blue", "Men", "Casual", 0.6),
		},
	}

	got := c.CompleteLook(base, available, "Men")
	if got == nil {
		t.Fatal("expected a suggestion")
	}
	items := got.SuggestedItems["Tshirts"]
	if len(items) != 3 {
		t.Fatalf("got %d items, want cap of 3", len(items))
	}
	if items[0].Product.Id != "3" || items[1].Product.Id != "4" || items[2].Product.Id != "5" {
		t.Errorf("items not in score order: %s, %s, %s", items[0].Product.Id, items[1].Product.Id, items[2].Product.Id)
	}
}

func TestCompleteLookExcludesBaseItem(t *testing.T) {
	c := NewCompleter()
	base := &catalog.ProductRecord{Id: "1", ArticleType: "Tshirts", Color: "White", Gender: "Men", Usage: "Casual"}

	available := map[string][]similarity.ScoredResult{
		"Jeans": {
			{Product: base, Score: 1.0},
			scored("2", "Jeans", "Blue", "Men", "Casual", 0.8),
		},
	}

	got := c.CompleteLook(base, available, "Men")
	if got == nil {
		t.Fatal("expected a suggestion")
	}
	for _, item := range got.SuggestedItems["Jeans"] {
		if item.Product.Id == base.Id {
			t.Error("base item suggested as its own companion")
		}
	}
}

func TestColorCompatible(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		candidate string
		want      bool
	}{
		{name: "listed pair", base: "Blue", candidate: "Navy", want: true},
		{name: "clash", base: "Red", candidate: "Green", want: false},
		{name: "neutral base pairs with anything", base: "Black", candidate: "Olive", want: true},
		{name: "neutral candidate pairs with anything", base: "Olive", candidate: "White", want: true},
		{name: "multi goes with everything", base: "Multi", candidate: "Olive", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := colorCompatible(tt.base, tt.candidate); got != tt.want {
				t.Errorf("colorCompatible(%q, %q) = %v, want %v", tt.base, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestStyleCompatible(t *testing.T) {
	tests := []struct {
		name string
		base string
		cand string
		want bool
	}{
		{name: "same usage", base: "Formal", cand: "Formal", want: true},
		{name: "casual group", base: "Casual", cand: "Sports", want: true},
		{name: "formal group", base: "Formal", cand: "Party", want: true},
		{name: "casual is versatile", base: "Casual", cand: "Formal", want: true},
		{name: "formal vs sports", base: "Formal", cand: "Sports", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := styleCompatible(tt.base, tt.cand); got != tt.want {
				t.Errorf("styleCompatible(%q, %q) = %v, want %v", tt.base, tt.cand, got, tt.want)
			}
		})
	}
}

func TestGenderCompatible(t *testing.T) {
	men := &catalog.ProductRecord{Gender: "Men"}
	women := &catalog.ProductRecord{Gender: "Women"}
	unisex := &catalog.ProductRecord{Gender: "Unisex"}

	if !genderCompatible(men, women, "") {
		t.Error("empty user gender must not filter")
	}
	if !genderCompatible(men, unisex, "Men") {
		t.Error("unisex candidate is always compatible")
	}
	if genderCompatible(men, women, "Men") {
		t.Error("cross-gender pair must be rejected")
	}
	if !genderCompatible(men, men, "Men") {
		t.Error("matching gender pair rejected")
	}
}
