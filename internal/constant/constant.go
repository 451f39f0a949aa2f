package constant

// Gender values as they appear in the catalog CSV.
const (
	GenderMen    = "Men"
	GenderWomen  = "Women"
	GenderUnisex = "Unisex"
)

// Feedback actions accepted from the client.
const (
	FeedbackLike    = "like"
	FeedbackDislike = "dislike"
	FeedbackSave    = "save"
)

// Category keys for partitioned recommendations.
var DefaultCategories = []string{"Tshirts", "Shirts", "Jeans", "Casual Shoes", "Watches"}

// ArticleTypeAliases expands a requested article type to the catalog article
// types it should match. Catalog data is inconsistent about specificity, so
// a request for "Casual Shoes" also accepts plain "Shoes".
var ArticleTypeAliases = map[string][]string{
	"Casual Shoes": {"Casual Shoes", "Shoes"},
	"Sports Shoes": {"Sports Shoes", "Shoes"},
	"Formal Shoes": {"Formal Shoes", "Shoes"},
	"Tshirts":      {"Tshirts", "Tops"},
	"Shirts":       {"Shirts", "Tops"},
}

// ExpandArticleTypes maps each requested type through ArticleTypeAliases,
// keeping unknown types as-is and deduplicating the result.
func ExpandArticleTypes(requested []string) []string {
	if len(requested) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	expanded := make([]string, 0, len(requested))
	add := func(t string) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		expanded = append(expanded, t)
	}
	for _, t := range requested {
		if aliases, ok := ArticleTypeAliases[t]; ok {
			for _, a := range aliases {
				add(a)
			}
		} else {
			add(t)
		}
	}
	return expanded
}
