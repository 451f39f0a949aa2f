package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const stylesCSV = `id,gender,masterCategory,subCategory,articleType,baseColour,season,usage,productDisplayName
1,Men,Apparel,Topwear,Tshirts,Blue,Summer,Casual,Blue Cotton Tshirt
2,Women,Apparel,Bottomwear,Jeans,Black,Fall,Casual,Black Skinny Jeans
3,Unisex,Footwear,Shoes,Casual Shoes,White,,Casual,White Canvas Sneakers
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadKeywordFallback(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "styles.csv")
	writeFile(t, csvPath, stylesCSV)

	store := NewStore()
	loader := NewLoader(Paths{StylesCSV: csvPath, ImagesBaseURL: "http://img.test"}, store, nil, nil, "")

	mode, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if mode != ModeKeywordMatch {
		t.Errorf("mode = %s, want keyword_match", mode)
	}
	if store.TotalCount() != 3 {
		t.Errorf("loaded %d products, want 3", store.TotalCount())
	}

	snap, err := store.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	rec, found := snap.FindById("2")
	if !found {
		t.Fatal("product 2 not loaded")
	}
	if rec.Name != "Black Skinny Jeans" || rec.ArticleType != "Jeans" {
		t.Errorf("product 2 fields wrong: %+v", rec)
	}
	if rec.ImageURL != "http://img.test/2.jpg" {
		t.Errorf("image url = %q", rec.ImageURL)
	}
}

func TestLoadMissingCSV(t *testing.T) {
	store := NewStore()
	loader := NewLoader(Paths{StylesCSV: filepath.Join(t.TempDir(), "absent.csv")}, store, nil, nil, "")

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error when no CSV exists anywhere")
	}
	if store.Loaded() {
		t.Error("store should stay unloaded after a failed load")
	}
}

func TestLoadEmbeddingsCSV(t *testing.T) {
	dir := t.TempDir()
	embPath := filepath.Join(dir, "styles_with_embeddings.csv")
	writeFile(t, embPath, `id,gender,masterCategory,subCategory,articleType,baseColour,season,usage,productDisplayName,embeddings
1,Men,Apparel,Topwear,Tshirts,Blue,Summer,Casual,Blue Cotton Tshirt,"[0.1,0.2,0.3]"
2,Women,Apparel,Bottomwear,Jeans,Black,Fall,Casual,Black Skinny Jeans,"[0.4,0.5,0.6]"
`)

	store := NewStore()
	loader := NewLoader(Paths{
		StylesCSV:     filepath.Join(dir, "absent.csv"),
		EmbeddingsCSV: embPath,
	}, store, nil, nil, "")

	mode, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if mode != ModeEmbeddingSimilarity {
		t.Errorf("mode = %s, want embedding_similarity", mode)
	}

	snap, _ := store.Snapshot()
	rec, _ := snap.FindById("1")
	if len(rec.Embedding) != 3 {
		t.Errorf("embedding length = %d, want 3", len(rec.Embedding))
	}
}

func TestLoadPrebuiltIndex(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "clothing.index")
	metaPath := filepath.Join(dir, "metadata.json")

	index := NewFlatIndex(3)
	index.Add([]float32{1, 0, 0})
	index.Add([]float32{0, 1, 0})
	if err := index.WriteFile(indexPath); err != nil {
		t.Fatal(err)
	}

	records := []*ProductRecord{
		{Id: "1", Name: "Blue Cotton Tshirt", ArticleType: "Tshirts", Gender: "Men"},
		{Id: "2", Name: "Black Skinny Jeans", ArticleType: "Jeans", Gender: "Women"},
	}
	metaBytes, _ := json.Marshal(records)
	writeFile(t, metaPath, string(metaBytes))

	store := NewStore()
	loader := NewLoader(Paths{
		IndexFile:     indexPath,
		MetadataFile:  metaPath,
		ImagesBaseURL: "http://img.test",
	}, store, nil, nil, "")

	mode, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if mode != ModeVectorIndex {
		t.Errorf("mode = %s, want vector_index", mode)
	}

	snap, _ := store.Snapshot()
	if snap.Index == nil || snap.Index.Len() != 2 {
		t.Fatal("index not attached to snapshot")
	}
	rec, _ := snap.FindById("1")
	if rec.ImageURL != "http://img.test/1.jpg" {
		t.Errorf("missing image url not backfilled: %q", rec.ImageURL)
	}
}

func TestLoadIndexCountMismatchFallsBack(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "clothing.index")
	metaPath := filepath.Join(dir, "metadata.json")
	csvPath := filepath.Join(dir, "styles.csv")

	index := NewFlatIndex(3)
	index.Add([]float32{1, 0, 0})
	index.WriteFile(indexPath)

	// Two records against one vector: structurally invalid, must fall back.
	records := []*ProductRecord{{Id: "1"}, {Id: "2"}}
	metaBytes, _ := json.Marshal(records)
	writeFile(t, metaPath, string(metaBytes))
	writeFile(t, csvPath, stylesCSV)

	store := NewStore()
	loader := NewLoader(Paths{
		StylesCSV:    csvPath,
		IndexFile:    indexPath,
		MetadataFile: metaPath,
	}, store, nil, nil, "")

	mode, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if mode == ModeVectorIndex {
		t.Error("mismatched index must not load in vector_index mode")
	}
}

func TestParseStylesCSVMalformedEmbeddingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "styles.csv")
	writeFile(t, path, `id,productDisplayName,embeddings
1,Good Product,"[0.1,0.2]"
2,Bad Product,not-json
`)

	records, err := ParseStylesCSV(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if len(records[0].Embedding) != 2 {
		t.Error("valid embedding column dropped")
	}
	if len(records[1].Embedding) != 0 {
		t.Error("malformed embedding column should be skipped, not fail the row")
	}
}
