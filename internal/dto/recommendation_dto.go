package dto

// UserProfile captures the shopper's intent and preferences.
type UserProfile struct {
	ShoppingPrompt        string   `json:"shopping_prompt" validate:"required"`
	Gender                string   `json:"gender" validate:"required,oneof=Men Women Unisex"`
	PreferredStyles       []string `json:"preferred_styles"`
	PreferredColors       []string `json:"preferred_colors"`
	PreferredArticleTypes []string `json:"preferred_article_types"`
	SelfieImage           string   `json:"selfie_image,omitempty"`
	AgeRange              string   `json:"age_range,omitempty"`
	BudgetRange           string   `json:"budget_range,omitempty"`
	BodyType              string   `json:"body_type,omitempty"`
}

// FilterOptions narrows recommendation results after search.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Colors     []string `json:"colors"`
	ExcludeIds []string `json:"exclude_ids"`
}

type RecommendationRequest struct {
	UserProfile       UserProfile    `json:"user_profile" validate:"required"`
	InspirationImages []string       `json:"inspiration_images"`
	Filters           *FilterOptions `json:"filters,omitempty"`
	TopK              int            `json:"top_k"`
	ItemsPerCategory  int            `json:"items_per_category,omitempty"`
	SessionId         string         `json:"session_id,omitempty"`
}

// ProductItem is the wire shape of a recommended product.
type ProductItem struct {
	Id              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Subcategory     string  `json:"subcategory"`
	ArticleType     string  `json:"article_type"`
	Color           string  `json:"color"`
	Gender          string  `json:"gender"`
	Season          string  `json:"season,omitempty"`
	Usage           string  `json:"usage"`
	ImageURL        string  `json:"image_url"`
	SimilarityScore float64 `json:"similarity_score"`
	StoreLocation   string  `json:"store_location,omitempty"`
}

// CategoryDebugInfo reports what one per-category search did.
type CategoryDebugInfo struct {
	Requested  int    `json:"requested"`
	Returned   int    `json:"returned"`
	SearchMode string `json:"search_mode"`
	DurationMs int64  `json:"duration_ms"`
}

// CompleteLookSuggestion pairs a recommended base item with compatible
// pieces that finish the outfit.
type CompleteLookSuggestion struct {
	BaseProductId    string                   `json:"base_product_id"`
	NeededCategories []string                 `json:"needed_categories"`
	SuggestedItems   map[string][]ProductItem `json:"suggested_items"`
	ConfidenceScore  float64                  `json:"confidence_score"`
	StyleReasoning   string                   `json:"style_reasoning"`
}

type RecommendationResponse struct {
	Recommendations        []ProductItem                `json:"recommendations"`
	GroupedRecommendations map[string][]ProductItem     `json:"grouped_recommendations,omitempty"`
	CategoriesMissing      []string                     `json:"categories_missing,omitempty"`
	CategoryDebug          map[string]CategoryDebugInfo `json:"category_debug,omitempty"`
	CompleteTheLook        *CompleteLookSuggestion      `json:"complete_the_look,omitempty"`
	TotalAvailable         int                          `json:"total_available"`
	SessionId              string                       `json:"session_id"`
	SearchMode             string                       `json:"search_mode"`
}

type RefreshRequest struct {
	SessionId  string   `json:"session_id" validate:"required"`
	ExcludeIds []string `json:"exclude_ids" validate:"required"`
	Count      int      `json:"count"`
}

type RefreshResponse struct {
	Recommendations []ProductItem `json:"recommendations"`
	SessionId       string        `json:"session_id"`
}
