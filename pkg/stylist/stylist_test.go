package stylist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-shopper-be/pkg/catalog"
	"ai-shopper-be/pkg/llm"
	"ai-shopper-be/pkg/similarity"
	"ai-shopper-be/pkg/vision"
)

type fakeCompleter struct {
	chatResponse     string
	chatErr          error
	generateResponse string
	generateErr      error

	lastHistory []llm.Message
	lastPrompt  string
}

func (f *fakeCompleter) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.lastHistory = history
	return f.chatResponse, f.chatErr
}

func (f *fakeCompleter) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.generateResponse, f.generateErr
}

func scoredItems(ids ...string) []similarity.ScoredResult {
	out := make([]similarity.ScoredResult, len(ids))
	for i, id := range ids {
		out[i] = similarity.ScoredResult{Product: &catalog.ProductRecord{Id: id}}
	}
	return out
}

func idsOf(results []similarity.ScoredResult) []string {
	out := make([]string, len(results))
	for i, res := range results {
		out[i] = res.Product.Id
	}
	return out
}

func equalIds(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildSearchQueryEnhanced(t *testing.T) {
	completer := &fakeCompleter{generateResponse: "  casual blue denim jacket men streetwear  "}
	b := NewQueryBuilder(completer)

	got := b.BuildSearchQuery(context.Background(), Profile{ShoppingPrompt: "a jacket", Gender: "Men"}, nil)
	if got != "casual blue denim jacket men streetwear" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(completer.lastPrompt, "a jacket Men") {
		t.Errorf("base query missing from prompt: %q", completer.lastPrompt)
	}
}

func TestBuildSearchQueryFallsBackOnError(t *testing.T) {
	b := NewQueryBuilder(&fakeCompleter{generateErr: errors.New("down")})

	profile := Profile{
		ShoppingPrompt:  "summer outfit",
		Gender:          "Women",
		PreferredColors: []string{"White", "Blue"},
	}
	got := b.BuildSearchQuery(context.Background(), profile, nil)
	if got != "summer outfit Women White Blue" {
		t.Errorf("fallback query = %q", got)
	}
}

func TestBuildSearchQueryFallsBackOnEmptyResponse(t *testing.T) {
	b := NewQueryBuilder(&fakeCompleter{generateResponse: "   "})

	got := b.BuildSearchQuery(context.Background(), Profile{ShoppingPrompt: "boots"}, nil)
	if got != "boots" {
		t.Errorf("got %q, want base query", got)
	}
}

func TestBuildSearchQueryIncludesAnalysis(t *testing.T) {
	completer := &fakeCompleter{generateErr: errors.New("down")}
	b := NewQueryBuilder(completer)

	analysis := &vision.StyleAnalysis{
		Items:      []string{"leather jacket"},
		Colors:     []string{"black"},
		Occasions:  []string{"party"},
		StyleNotes: "edgy look",
	}
	got := b.BuildSearchQuery(context.Background(), Profile{ShoppingPrompt: "outfit"}, analysis)
	for _, want := range []string{"leather jacket", "black", "party", "edgy look"} {
		if !strings.Contains(got, want) {
			t.Errorf("query %q missing analysis signal %q", got, want)
		}
	}
}

func TestRerankAppliesModelOrder(t *testing.T) {
	r := NewReranker(&fakeCompleter{chatResponse: `{"ranking": ["3", "1", "2"]}`})

	got := r.Rerank(context.Background(), Profile{}, scoredItems("1", "2", "3"), nil)
	if !equalIds(idsOf(got), []string{"3", "1", "2"}) {
		t.Errorf("got order %v", idsOf(got))
	}
}

func TestRerankPreservesSetOnPartialRanking(t *testing.T) {
	// Model drops 2, duplicates 3 and invents 99.
	r := NewReranker(&fakeCompleter{chatResponse: `{"ranking": ["3", "3", "99"]}`})

	got := r.Rerank(context.Background(), Profile{}, scoredItems("1", "2", "3"), nil)
	if !equalIds(idsOf(got), []string{"3", "1", "2"}) {
		t.Errorf("got order %v", idsOf(got))
	}
}

func TestRerankFallsBackOnError(t *testing.T) {
	r := NewReranker(&fakeCompleter{chatErr: errors.New("down")})

	got := r.Rerank(context.Background(), Profile{}, scoredItems("1", "2", "3"), nil)
	if !equalIds(idsOf(got), []string{"1", "2", "3"}) {
		t.Errorf("error must keep original order, got %v", idsOf(got))
	}
}

func TestRerankFallsBackOnMalformedJSON(t *testing.T) {
	r := NewReranker(&fakeCompleter{chatResponse: "sure! here is my ranking: 3, 1, 2"})

	got := r.Rerank(context.Background(), Profile{}, scoredItems("1", "2", "3"), nil)
	if !equalIds(idsOf(got), []string{"1", "2", "3"}) {
		t.Errorf("malformed response must keep original order, got %v", idsOf(got))
	}
}

func TestRerankSingleItemSkipsModel(t *testing.T) {
	completer := &fakeCompleter{chatErr: errors.New("must not be called")}
	r := NewReranker(completer)

	got := r.Rerank(context.Background(), Profile{}, scoredItems("1"), nil)
	if !equalIds(idsOf(got), []string{"1"}) {
		t.Errorf("got %v", idsOf(got))
	}
	if completer.lastHistory != nil {
		t.Error("model called for a single item")
	}
}

func TestAssistantRespond(t *testing.T) {
	completer := &fakeCompleter{chatResponse: "Try pairing it with white sneakers."}
	a := NewAssistant(completer)

	reply, updated := a.Respond(context.Background(), "what goes with blue jeans?", nil, nil)
	if reply != "Try pairing it with white sneakers." {
		t.Errorf("reply = %q", reply)
	}
	if updated {
		t.Error("plain question flagged as preference update")
	}
}

func TestAssistantDetectsPreferenceUpdate(t *testing.T) {
	a := NewAssistant(&fakeCompleter{chatResponse: "Noted, more formal it is."})

	_, updated := a.Respond(context.Background(), "I want something more formal", nil, nil)
	if !updated {
		t.Error("preference phrasing not detected")
	}
}

func TestAssistantApologyOnError(t *testing.T) {
	a := NewAssistant(&fakeCompleter{chatErr: errors.New("down")})

	reply, updated := a.Respond(context.Background(), "I want red shoes", nil, nil)
	if reply != assistantApology {
		t.Errorf("reply = %q", reply)
	}
	if updated {
		t.Error("failed turn must not report a context update")
	}
}

func TestAssistantHistoryWindow(t *testing.T) {
	completer := &fakeCompleter{chatResponse: "ok"}
	a := NewAssistant(completer)

	history := make([]ChatTurn, 8)
	for i := range history {
		history[i] = ChatTurn{Role: "user", Content: strings.Repeat("x", i+1)}
	}
	chatCtx := &ChatContext{Gender: "Men"}
	a.Respond(context.Background(), "hello", chatCtx, history)

	// system prompt + context + 5 history turns + current message
	if len(completer.lastHistory) != 8 {
		t.Fatalf("got %d messages, want 8", len(completer.lastHistory))
	}
	// Oldest retained turn is history[3].
	if completer.lastHistory[2].Content != strings.Repeat("x", 4) {
		t.Errorf("history window starts at %q", completer.lastHistory[2].Content)
	}
	if completer.lastHistory[7].Content != "hello" {
		t.Errorf("last message = %q", completer.lastHistory[7].Content)
	}
}
