package catalog

import (
	"fmt"
	"sync/atomic"
)

// SearchMode is resolved once at load time and decides which similarity
// strategy is reachable. It is a property of the loaded data, not of a request.
type SearchMode int

const (
	// ModeKeywordMatch is the bare-CSV fallback with no vectors at all.
	ModeKeywordMatch SearchMode = iota
	// ModeEmbeddingSimilarity means per-record embedding vectors are loaded.
	ModeEmbeddingSimilarity
	// ModeVectorIndex means a prebuilt exact index plus metadata was found.
	ModeVectorIndex
)

func (m SearchMode) String() string {
	switch m {
	case ModeVectorIndex:
		return "vector_index"
	case ModeEmbeddingSimilarity:
		return "embedding_similarity"
	default:
		return "keyword_match"
	}
}

// ProductRecord is one catalog row. Records are immutable after load; the
// slice order is the catalog insertion order used for stable tie-breaking.
type ProductRecord struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	ArticleType string    `json:"article_type"`
	Color       string    `json:"color"`
	Gender      string    `json:"gender"`
	Season      string    `json:"season,omitempty"`
	Usage       string    `json:"usage"`
	ImageURL    string    `json:"image_url"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

// SearchableText joins the record's textual fields for keyword scoring.
func (p *ProductRecord) SearchableText() string {
	return p.Name + " " + p.Category + " " + p.Subcategory + " " + p.ArticleType +
		" " + p.Color + " " + p.Gender + " " + p.Season + " " + p.Usage
}

// Description builds the rich text that gets embedded for a record.
func (p *ProductRecord) Description() string {
	parts := make([]string, 0, 8)
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.Category != "" {
		parts = append(parts, "Category: "+p.Category)
	}
	if p.Subcategory != "" {
		parts = append(parts, "Subcategory: "+p.Subcategory)
	}
	if p.ArticleType != "" {
		parts = append(parts, "Type: "+p.ArticleType)
	}
	if p.Color != "" {
		parts = append(parts, "Color: "+p.Color)
	}
	if p.Gender != "" {
		parts = append(parts, "Gender: "+p.Gender)
	}
	if p.Season != "" {
		parts = append(parts, "Season: "+p.Season)
	}
	if p.Usage != "" {
		parts = append(parts, "Usage: "+p.Usage)
	}
	out := ""
	for i, part := range parts {
		if i > 0 {
			out += " | "
		}
		out += part
	}
	return out
}

// Snapshot is an immutable view of the catalog. A background upgrade never
// mutates a snapshot in place; it builds a replacement and swaps it into the
// Store, so a reader sees either the old or the new catalog, never a partial
// one.
type Snapshot struct {
	Mode    SearchMode
	Records []*ProductRecord
	Index   *FlatIndex // non-nil only in ModeVectorIndex
}

func (s *Snapshot) TotalCount() int {
	return len(s.Records)
}

// FindById does a linear scan; the catalog is small enough that an id map is
// not worth maintaining per snapshot.
func (s *Snapshot) FindById(id string) (*ProductRecord, bool) {
	for _, r := range s.Records {
		if r.Id == id {
			return r, true
		}
	}
	return nil, false
}

// Store holds the current catalog snapshot behind an atomic pointer.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current catalog, or an error when the catalog never
// loaded. Callers snapshot once per search call so a concurrent upgrade
// cannot produce a torn read inside a single search.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("catalog not loaded")
	}
	return snap, nil
}

// Swap publishes a fully built replacement snapshot.
func (s *Store) Swap(snap *Snapshot) {
	s.current.Store(snap)
}

// Loaded reports whether a snapshot has ever been published.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}

// Mode returns the current search mode, defaulting to keyword match when
// nothing is loaded.
func (s *Store) Mode() SearchMode {
	snap := s.current.Load()
	if snap == nil {
		return ModeKeywordMatch
	}
	return snap.Mode
}

func (s *Store) TotalCount() int {
	snap := s.current.Load()
	if snap == nil {
		return 0
	}
	return snap.TotalCount()
}
