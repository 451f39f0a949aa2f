package stylist

// Profile captures what the shopper told us they want. It is the input to
// query building, reranking and outfit completion.
type Profile struct {
	ShoppingPrompt        string   `json:"shopping_prompt"`
	Gender                string   `json:"gender"`
	PreferredStyles       []string `json:"preferred_styles"`
	PreferredColors       []string `json:"preferred_colors"`
	PreferredArticleTypes []string `json:"preferred_article_types"`
}
