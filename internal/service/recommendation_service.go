package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-shopper-be/internal/constant"
	"ai-shopper-be/internal/dto"
	"ai-shopper-be/internal/pkg/logger"
	"ai-shopper-be/internal/pkg/serverutils"
	"ai-shopper-be/internal/repository/memory"
	"ai-shopper-be/pkg/catalog"
	"ai-shopper-be/pkg/embedding"
	"ai-shopper-be/pkg/events"
	natspub "ai-shopper-be/pkg/nats"
	"ai-shopper-be/pkg/outfit"
	"ai-shopper-be/pkg/similarity"
	"ai-shopper-be/pkg/stylist"
	"ai-shopper-be/pkg/vision"
)

// ServiceStatus feeds the health endpoint.
type ServiceStatus struct {
	VectorStoreLoaded bool
	FallbackMode      bool
	SearchMode        string
	TotalProducts     int
	ActiveSessions    int
}

type IRecommendationService interface {
	Recommend(ctx context.Context, req *dto.RecommendationRequest) (*dto.RecommendationResponse, error)
	GetFreshResults(ctx context.Context, sessionId string, excludeIds []string, count int) ([]dto.ProductItem, error)
	ProcessFeedback(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error)
	SessionContext(sessionId string) (*memory.SessionState, bool)
	Status() ServiceStatus
}

type recommendationService struct {
	store            *catalog.Store
	engine           *similarity.Engine
	embedder         embedding.TextEmbedder
	queryBuilder     *stylist.QueryBuilder
	reranker         *stylist.Reranker
	analyzer         vision.Analyzer
	sessions         *memory.SessionRepository
	publisher        *natspub.Publisher
	completer        *outfit.Completer
	completeLookOn   bool
	log              logger.ILogger
	maxSearchResults int
	defaultTopK      int
}

func NewRecommendationService(
	store *catalog.Store,
	engine *similarity.Engine,
	embedder embedding.TextEmbedder,
	queryBuilder *stylist.QueryBuilder,
	reranker *stylist.Reranker,
	analyzer vision.Analyzer,
	sessions *memory.SessionRepository,
	publisher *natspub.Publisher,
	completer *outfit.Completer,
	completeLookOn bool,
	log logger.ILogger,
	maxSearchResults int,
	defaultTopK int,
) IRecommendationService {
	return &recommendationService{
		store:            store,
		engine:           engine,
		embedder:         embedder,
		queryBuilder:     queryBuilder,
		reranker:         reranker,
		analyzer:         analyzer,
		sessions:         sessions,
		publisher:        publisher,
		completer:        completer,
		completeLookOn:   completeLookOn,
		log:              log,
		maxSearchResults: maxSearchResults,
		defaultTopK:      defaultTopK,
	}
}

func (s *recommendationService) Recommend(ctx context.Context, req *dto.RecommendationRequest) (*dto.RecommendationResponse, error) {
	if !s.store.Loaded() {
		return nil, serverutils.NewUnavailableError("catalog not loaded")
	}

	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = uuid.New().String()
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	// Vision analysis degrades to an empty result, never an error.
	analysis, _ := s.analyzer.AnalyzeImages(ctx, req.InspirationImages)

	profile := toStylistProfile(req.UserProfile)
	searchQuery := s.queryBuilder.BuildSearchQuery(ctx, profile, analysis)

	// Embedding degrades to a zero vector; keyword search covers that case.
	queryVector, err := s.embedder.Embed(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}

	excludeIds := []string{}
	if req.Filters != nil {
		excludeIds = append(excludeIds, req.Filters.ExcludeIds...)
	}

	var resp *dto.RecommendationResponse
	if req.ItemsPerCategory > 0 && len(req.UserProfile.PreferredArticleTypes) > 0 {
		resp = s.recommendPartitioned(ctx, req, searchQuery, queryVector, excludeIds)
	} else {
		resp = s.recommendFlat(ctx, req, topK, searchQuery, queryVector, excludeIds, analysis)
	}
	resp.SessionId = sessionId
	resp.SearchMode = s.store.Mode().String()

	// Persist the session snapshot so refresh and feedback reuse the same
	// query context. This is the only path that creates sessions.
	state := memory.NewSessionState(sessionId)
	state.QueryVector = queryVector
	state.SearchQueryText = searchQuery
	state.Profile = req.UserProfile
	for _, id := range excludeIds {
		state.ExcludeIds[id] = struct{}{}
	}
	s.sessions.Save(state)

	s.publisher.TryPublish(ctx, events.NewSessionStarted(sessionId, len(resp.Recommendations)))

	s.log.Info("recommendation", "Generated recommendations", map[string]interface{}{
		"session_id": sessionId,
		"count":      len(resp.Recommendations),
		"mode":       resp.SearchMode,
	})
	return resp, nil
}

// recommendPartitioned runs one search per requested category. Every
// requested category appears in the grouped response; categories that yield
// nothing are listed in CategoriesMissing. A single category failing never
// fails the request.
func (s *recommendationService) recommendPartitioned(
	ctx context.Context,
	req *dto.RecommendationRequest,
	searchQuery string,
	queryVector []float32,
	excludeIds []string,
) *dto.RecommendationResponse {
	perCategory := req.ItemsPerCategory
	grouped := make(map[string][]dto.ProductItem, len(req.UserProfile.PreferredArticleTypes))
	debug := make(map[string]dto.CategoryDebugInfo, len(req.UserProfile.PreferredArticleTypes))
	missing := []string{}
	flat := []dto.ProductItem{}
	totalAvailable := 0

	for _, category := range req.UserProfile.PreferredArticleTypes {
		start := time.Now()
		results, err := s.engine.Search(similarity.Query{
			Vector:     queryVector,
			Text:       searchQuery,
			K:          perCategory * 2,
			ExcludeIds: excludeIds,
			Filters: similarity.Filters{
				Gender:       req.UserProfile.Gender,
				ArticleTypes: constant.ExpandArticleTypes([]string{category}),
			},
		})
		if err != nil {
			s.log.Warn("recommendation", "Category search failed", map[string]interface{}{
				"category": category, "error": err.Error(),
			})
			results = nil
		}
		if req.Filters != nil {
			results = applyFilters(results, req.Filters)
		}
		if len(results) > perCategory {
			results = results[:perCategory]
		}

		items := toProductItems(results)
		grouped[category] = items
		debug[category] = dto.CategoryDebugInfo{
			Requested:  perCategory,
			Returned:   len(items),
			SearchMode: s.store.Mode().String(),
			DurationMs: time.Since(start).Milliseconds(),
		}
		if len(items) == 0 {
			missing = append(missing, category)
		}
		totalAvailable += len(items)
		flat = append(flat, items...)
	}

	return &dto.RecommendationResponse{
		Recommendations:        flat,
		GroupedRecommendations: grouped,
		CategoriesMissing:      missing,
		CategoryDebug:          debug,
		TotalAvailable:         totalAvailable,
	}
}

func (s *recommendationService) recommendFlat(
	ctx context.Context,
	req *dto.RecommendationRequest,
	topK int,
	searchQuery string,
	queryVector []float32,
	excludeIds []string,
	analysis *vision.StyleAnalysis,
) *dto.RecommendationResponse {
	overfetch := topK * 2
	if overfetch > s.maxSearchResults {
		overfetch = s.maxSearchResults
	}

	results, err := s.engine.Search(similarity.Query{
		Vector:     queryVector,
		Text:       searchQuery,
		K:          overfetch,
		ExcludeIds: excludeIds,
		Filters: similarity.Filters{
			Gender:       req.UserProfile.Gender,
			ArticleTypes: constant.ExpandArticleTypes(req.UserProfile.PreferredArticleTypes),
		},
	})
	if err != nil {
		results = nil
	}
	totalAvailable := len(results)

	if req.Filters != nil {
		results = applyFilters(results, req.Filters)
	}

	// Rerank only when there is something to cut; the reranker preserves the
	// candidate set and falls back to the original order on failure.
	candidates := results
	if len(results) > topK {
		results = s.reranker.Rerank(ctx, toStylistProfile(req.UserProfile), results, analysis)
		results = results[:topK]
	}

	resp := &dto.RecommendationResponse{
		Recommendations: toProductItems(results),
		TotalAvailable:  totalAvailable,
	}
	if s.completeLookOn && len(results) > 0 {
		resp.CompleteTheLook = s.completeLook(results[0], candidates, req.UserProfile.Gender)
	}
	return resp
}

// completeLook builds an outfit suggestion for the top result, sourcing
// companion pieces from the full candidate pool grouped by article type.
func (s *recommendationService) completeLook(top similarity.ScoredResult, candidates []similarity.ScoredResult, gender string) *dto.CompleteLookSuggestion {
	available := make(map[string][]similarity.ScoredResult)
	for _, cand := range candidates {
		available[cand.Product.ArticleType] = append(available[cand.Product.ArticleType], cand)
	}

	suggestion := s.completer.CompleteLook(top.Product, available, gender)
	if suggestion == nil {
		return nil
	}

	items := make(map[string][]dto.ProductItem, len(suggestion.SuggestedItems))
	for cat, res := range suggestion.SuggestedItems {
		items[cat] = toProductItems(res)
	}
	return &dto.CompleteLookSuggestion{
		BaseProductId:    top.Product.Id,
		NeededCategories: suggestion.NeededCategories,
		SuggestedItems:   items,
		ConfidenceScore:  suggestion.ConfidenceScore,
		StyleReasoning:   suggestion.StyleReasoning,
	}
}

func (s *recommendationService) GetFreshResults(ctx context.Context, sessionId string, excludeIds []string, count int) ([]dto.ProductItem, error) {
	state, found := s.sessions.Get(sessionId)
	if !found {
		return nil, serverutils.NewNotFoundError(fmt.Sprintf("session %s not found", sessionId))
	}
	if count <= 0 {
		count = 1
	}

	s.sessions.AddExcludes(sessionId, excludeIds)

	results, err := s.engine.Search(similarity.Query{
		Vector:     state.QueryVector,
		Text:       state.SearchQueryText,
		K:          count,
		ExcludeIds: state.ExcludeList(),
		Filters: similarity.Filters{
			Gender:       state.Profile.Gender,
			ArticleTypes: constant.ExpandArticleTypes(state.Profile.PreferredArticleTypes),
		},
	})
	if err != nil {
		return nil, err
	}
	return toProductItems(results), nil
}

func (s *recommendationService) ProcessFeedback(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	switch req.Action {
	case constant.FeedbackLike, constant.FeedbackDislike, constant.FeedbackSave:
	default:
		return nil, serverutils.NewBadRequestError(fmt.Sprintf("unknown feedback action %q", req.Action))
	}

	// Absent sessions are a success no-op: feedback is advisory.
	s.sessions.ApplyFeedback(req.SessionId, req.ProductId, req.Action)

	s.publisher.TryPublish(ctx, events.NewFeedbackRecorded(req.SessionId, req.ProductId, req.Action))

	resp := &dto.FeedbackResponse{
		Success: true,
		Message: fmt.Sprintf("Feedback '%s' recorded", req.Action),
	}

	if req.Action == constant.FeedbackDislike && req.SessionId != "" {
		fresh, err := s.GetFreshResults(ctx, req.SessionId, []string{req.ProductId}, 1)
		if err != nil {
			s.log.Warn("recommendation", "Could not generate fresh recommendations", map[string]interface{}{
				"session_id": req.SessionId, "error": err.Error(),
			})
		} else {
			resp.FreshRecommendations = fresh
		}
	}
	return resp, nil
}

func (s *recommendationService) SessionContext(sessionId string) (*memory.SessionState, bool) {
	return s.sessions.Get(sessionId)
}

func (s *recommendationService) Status() ServiceStatus {
	mode := s.store.Mode()
	return ServiceStatus{
		VectorStoreLoaded: s.store.Loaded(),
		FallbackMode:      mode == catalog.ModeKeywordMatch,
		SearchMode:        mode.String(),
		TotalProducts:     s.store.TotalCount(),
		ActiveSessions:    s.sessions.Count(),
	}
}

// applyFilters applies the optional request-level category/color filters
// after search. Exclude ids were already handled at the engine level.
func applyFilters(results []similarity.ScoredResult, filters *dto.FilterOptions) []similarity.ScoredResult {
	filtered := results
	if len(filters.Categories) > 0 {
		kept := filtered[:0]
		for _, res := range filtered {
			for _, c := range filters.Categories {
				if res.Product.Category == c || res.Product.ArticleType == c {
					kept = append(kept, res)
					break
				}
			}
		}
		filtered = kept
	}
	if len(filters.Colors) > 0 {
		kept := make([]similarity.ScoredResult, 0, len(filtered))
		for _, res := range filtered {
			if colorMatches(res.Product.Color, filters.Colors) {
				kept = append(kept, res)
			}
		}
		filtered = kept
	}
	return filtered
}

func colorMatches(productColor string, wanted []string) bool {
	lower := strings.ToLower(productColor)
	for _, c := range wanted {
		if strings.Contains(lower, strings.ToLower(c)) {
			return true
		}
	}
	return false
}

func toStylistProfile(p dto.UserProfile) stylist.Profile {
	return stylist.Profile{
		ShoppingPrompt:        p.ShoppingPrompt,
		Gender:                p.Gender,
		PreferredStyles:       p.PreferredStyles,
		PreferredColors:       p.PreferredColors,
		PreferredArticleTypes: p.PreferredArticleTypes,
	}
}

func toProductItems(results []similarity.ScoredResult) []dto.ProductItem {
	items := make([]dto.ProductItem, len(results))
	for i, res := range results {
		items[i] = toProductItem(res)
	}
	return items
}

func toProductItem(res similarity.ScoredResult) dto.ProductItem {
	return dto.ProductItem{
		Id:              res.Product.Id,
		Name:            res.Product.Name,
		Category:        res.Product.Category,
		Subcategory:     res.Product.Subcategory,
		ArticleType:     res.Product.ArticleType,
		Color:           res.Product.Color,
		Gender:          res.Product.Gender,
		Season:          res.Product.Season,
		Usage:           res.Product.Usage,
		ImageURL:        res.Product.ImageURL,
		SimilarityScore: res.Score,
		StoreLocation:   res.StoreLocation,
	}
}
