package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-shopper-be/internal/constant"
	"ai-shopper-be/internal/dto"
	"ai-shopper-be/internal/pkg/serverutils"
	"ai-shopper-be/internal/repository/memory"
	"ai-shopper-be/pkg/catalog"
	"ai-shopper-be/pkg/llm"
	"ai-shopper-be/pkg/outfit"
	"ai-shopper-be/pkg/similarity"
	"ai-shopper-be/pkg/stylist"
	"ai-shopper-be/pkg/vision"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// stubCompleter drives the query builder (Generate) and the reranker (Chat)
// independently, so one test can fail one path and script the other.
type stubCompleter struct {
	chatResponse     string
	chatErr          error
	generateResponse string
	generateErr      error
}

func (s *stubCompleter) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.chatResponse, s.chatErr
}

func (s *stubCompleter) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.generateResponse, s.generateErr
}

func failingCompleter() *stubCompleter {
	return &stubCompleter{chatErr: errors.New("model unavailable"), generateErr: errors.New("model unavailable")}
}

type stubEmbedder struct {
	vec []float32
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return len(s.vec) }

// Cosine similarity against the {1,0,0} query vector orders the fixture
// 1 > 2 > 3 > 4 > 6 > 5.
func loadedTestStore() *catalog.Store {
	store := catalog.NewStore()
	store.Swap(&catalog.Snapshot{
		Mode: catalog.ModeEmbeddingSimilarity,
		Records: []*catalog.ProductRecord{
			{Id: "1", Name: "Blue Denim Jacket", ArticleType: "Jackets", Color: "Blue", Gender: "Men", Usage: "Casual", Embedding: []float32{1, 0, 0}},
			{Id: "2", Name: "Black Leather Jacket", ArticleType: "Jackets", Color: "Black", Gender: "Men", Usage: "Casual", Embedding: []float32{0.9, 0.1, 0}},
			{Id: "3", Name: "Slim Fit Jeans", ArticleType: "Jeans", Color: "Navy", Gender: "Men", Usage: "Casual", Embedding: []float32{0.8, 0.2, 0}},
			{Id: "4", Name: "White Canvas Sneakers", ArticleType: "Casual Shoes", Color: "White", Gender: "Unisex", Usage: "Casual", Embedding: []float32{0.7, 0.3, 0}},
			{Id: "6", Name: "Grey Wool Sweater", ArticleType: "Sweaters", Color: "Grey", Gender: "Men", Usage: "Casual", Embedding: []float32{0.6, 0.4, 0}},
			{Id: "5", Name: "Red Summer Dress", ArticleType: "Dresses", Color: "Red", Gender: "Women", Usage: "Casual", Embedding: []float32{0, 1, 0}},
		},
	})
	return store
}

func newTestService(store *catalog.Store, completer llm.ChatCompleter, completeLookOn bool) IRecommendationService {
	return NewRecommendationService(
		store,
		similarity.NewEngine(store),
		&stubEmbedder{vec: []float32{1, 0, 0}},
		stylist.NewQueryBuilder(completer),
		stylist.NewReranker(completer),
		vision.NewAnalyzer(completer),
		memory.NewSessionRepository(time.Hour, time.Minute),
		nil,
		outfit.NewCompleter(),
		completeLookOn,
		noopLogger{},
		100,
		20,
	)
}

func menProfile(articleTypes ...string) dto.UserProfile {
	return dto.UserProfile{
		ShoppingPrompt:        "casual everyday outfit",
		Gender:                "Men",
		PreferredArticleTypes: articleTypes,
	}
}

func TestRecommend_CatalogNotLoaded(t *testing.T) {
	svc := newTestService(catalog.NewStore(), failingCompleter(), false)

	_, err := svc.Recommend(context.Background(), &dto.RecommendationRequest{UserProfile: menProfile()})
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 503, appErr.Code)
}

func TestRecommend_FlatModelFailuresDegrade(t *testing.T) {
	// Vision, query enhancement and rerank all fail; the response still comes
	// back in similarity order.
	svc := newTestService(loadedTestStore(), failingCompleter(), false)

	resp, err := svc.Recommend(context.Background(), &dto.RecommendationRequest{
		UserProfile: menProfile(),
		TopK:        2,
	})
	require.NoError(t, err)

	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, "1", resp.Recommendations[0].Id)
	assert.Equal(t, "2", resp.Recommendations[1].Id)
	assert.Equal(t, 4, resp.TotalAvailable, "overfetch pool is 2x topK")
	assert.NotEmpty(t, resp.SessionId)
	assert.Equal(t, "embedding_similarity", resp.SearchMode)
	assert.Empty(t, resp.GroupedRecommendations)
}

func TestRecommend_FlatRerankReorders(t *testing.T) {
	completer := failingCompleter()
	completer.chatErr = nil
	// Model promotes 2, invents 99, drops everything else. The set must be
	// preserved: unknown ids ignored, leftovers appended in original order.
	completer.chatResponse = `{"ranking": ["2", "99", "1"]}`

	svc := newTestService(loadedTestStore(), completer, false)

	resp, err := svc.Recommend(context.Background(), &dto.RecommendationRequest{
		UserProfile: menProfile(),
		TopK:        3,
	})
	require.NoError(t, err)

	require.Len(t, resp.Recommendations, 3)
	assert.Equal(t, "2", resp.Recommendations[0].Id)
	assert.Equal(t, "1", resp.Recommendations[1].Id)
	assert.Equal(t, "3", resp.Recommendations[2].Id)
}

func TestRecommend_FlatRespectsGenderAndExcludes(t *testing.T) {
	svc := newTestService(loadedTestStore(), failingCompleter(), false)

	resp, err := svc.Recommend(context.Background(), &dto.RecommendationRequest{
		UserProfile: menProfile(),
		TopK:        10,
		Filters:     &dto.FilterOptions{ExcludeIds: []string{"1"}},
	})
	require.NoError(t, err)

	for _, item := range resp.Recommendations {
		assert.NotEqual(t, "1", item.Id)
		assert.NotEqual(t, "5", item.Id, "women-only item must not reach a Men profile")
	}
	// 4 is Unisex and stays visible.
	ids := map[string]bool{}
	for _, item := range resp.Recommendations {
		ids[item.Id] = true
	}
	assert.True(t, ids["4"])
}

func TestRecommend_PartitionedGuaranteesCategoryKeys(t *testing.T) {
	svc := newTestService(loadedTestStore(), failingCompleter(), false)

	resp, err := svc.Recommend(context.Background(), &dto.RecommendationRequest{
		UserProfile:      menProfile("Jackets", "Dresses", "Sarees"),
		ItemsPerCategory: 2,
	})
	require.NoError(t, err)

	// Every requested category has a key, even the empty ones.
	require.Contains(t, resp.GroupedRecommendations, "Jackets")
	require.Contains(t, resp.GroupedRecommendations, "Dresses")
	require.Contains(t, resp.GroupedRecommendations, "Sarees")

	assert.Len(t, resp.GroupedRecommendations["Jackets"], 2)
	assert.Empty(t, resp.GroupedRecommendations["Dresses"], "Dresses are Women-only in the fixture")
	assert.ElementsMatch(t, []string{"Dresses", "Sarees"}, resp.CategoriesMissing)

	for _, category := range []string{"Jackets", "Dresses", "Sarees"} {
		info, ok := resp.CategoryDebug[category]
		require.True(t, ok, "debug info missing for %s", category)
		assert.Equal(t, 2, info.Requested)
		assert.Equal(t, "embedding_similarity", info.SearchMode)
	}
	assert.Equal(t, len(resp.Recommendations), resp.TotalAvailable)
}

func TestRecommend_CompleteTheLookAttached(t *testing.T) {
	svc := newTestService(loadedTestStore(), failingCompleter(), true)

	resp, err := svc.Recommend(context.Background(), &dto.RecommendationRequest{
		UserProfile: menProfile(),
		TopK:        2,
	})
	require.NoError(t, err)

	// Top result is the blue jacket; jeans and casual shoes sit in the
	// candidate pool and complete it.
	require.NotNil(t, resp.CompleteTheLook)
	assert.Equal(t, "1", resp.CompleteTheLook.BaseProductId)
	assert.NotEmpty(t, resp.CompleteTheLook.NeededCategories)
	assert.Greater(t, resp.CompleteTheLook.ConfidenceScore, 0.0)
}

func TestGetFreshResults_UnknownSession(t *testing.T) {
	svc := newTestService(loadedTestStore(), failingCompleter(), false)

	_, err := svc.GetFreshResults(context.Background(), "no-such-session", nil, 1)
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestGetFreshResults_ExcludesAccumulate(t *testing.T) {
	svc := newTestService(loadedTestStore(), failingCompleter(), false)

	resp, err := svc.Recommend(context.Background(), &dto.RecommendationRequest{
		UserProfile: menProfile(),
		TopK:        2,
	})
	require.NoError(t, err)

	fresh, err := svc.GetFreshResults(context.Background(), resp.SessionId, []string{"1", "2"}, 2)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "3", fresh[0].Id)
	assert.Equal(t, "4", fresh[1].Id)

	// Earlier exclusions persist across calls.
	fresh, err = svc.GetFreshResults(context.Background(), resp.SessionId, []string{"3"}, 2)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "4", fresh[0].Id)
	assert.Equal(t, "6", fresh[1].Id)
}

func TestProcessFeedback_InvalidAction(t *testing.T) {
	svc := newTestService(loadedTestStore(), failingCompleter(), false)

	_, err := svc.ProcessFeedback(context.Background(), &dto.FeedbackRequest{
		ProductId: "1",
		Action:    "love",
	})
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestProcessFeedback_DislikeReturnsReplacement(t *testing.T) {
	svc := newTestService(loadedTestStore(), failingCompleter(), false)

	resp, err := svc.Recommend(context.Background(), &dto.RecommendationRequest{
		UserProfile: menProfile(),
		TopK:        2,
	})
	require.NoError(t, err)

	fb, err := svc.ProcessFeedback(context.Background(), &dto.FeedbackRequest{
		ProductId: "1",
		Action:    constant.FeedbackDislike,
		SessionId: resp.SessionId,
	})
	require.NoError(t, err)
	assert.True(t, fb.Success)

	require.Len(t, fb.FreshRecommendations, 1)
	assert.Equal(t, "2", fb.FreshRecommendations[0].Id, "replacement must skip the disliked item")

	state, found := svc.SessionContext(resp.SessionId)
	require.True(t, found)
	assert.Contains(t, state.Disliked, "1")
	assert.Contains(t, state.ExcludeIds, "1")
}

func TestProcessFeedback_AbsentSessionStillSucceeds(t *testing.T) {
	svc := newTestService(loadedTestStore(), failingCompleter(), false)

	fb, err := svc.ProcessFeedback(context.Background(), &dto.FeedbackRequest{
		ProductId: "1",
		Action:    constant.FeedbackLike,
		SessionId: "expired-session",
	})
	require.NoError(t, err)
	assert.True(t, fb.Success)
}

func TestStatus(t *testing.T) {
	unloaded := newTestService(catalog.NewStore(), failingCompleter(), false)
	status := unloaded.Status()
	assert.False(t, status.VectorStoreLoaded)
	assert.True(t, status.FallbackMode)
	assert.Equal(t, 0, status.TotalProducts)

	svc := newTestService(loadedTestStore(), failingCompleter(), false)
	_, err := svc.Recommend(context.Background(), &dto.RecommendationRequest{UserProfile: menProfile(), TopK: 2})
	require.NoError(t, err)

	status = svc.Status()
	assert.True(t, status.VectorStoreLoaded)
	assert.False(t, status.FallbackMode)
	assert.Equal(t, "embedding_similarity", status.SearchMode)
	assert.Equal(t, 6, status.TotalProducts)
	assert.Equal(t, 1, status.ActiveSessions)
}
