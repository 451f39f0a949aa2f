package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"ai-shopper-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EmbedPrefixSize bounds how many rows get embedded synchronously at load
// time. Embedding the whole catalog up front would stall startup behind the
// embedding API.
const EmbedPrefixSize = 50

// Paths configures where the loader looks for catalog data.
type Paths struct {
	StylesCSV     string
	EmbeddingsCSV string
	IndexFile     string
	MetadataFile  string
	ImagesBaseURL string
}

// UpgradeRequest is the payload published when the loader falls back to
// keyword mode and wants the remaining rows embedded in the background.
type UpgradeRequest struct {
	Reason string `json:"reason"`
}

// Loader resolves the search mode at startup.
//
// Priority: prebuilt index + metadata (vector index) -> rows with embedding
// vectors, or a successfully embedded prefix (embedding similarity) -> bare
// CSV (keyword match). A missing CSV under every discovery path is the one
// unrecoverable condition.
type Loader struct {
	paths    Paths
	store    *Store
	embedder embedding.TextEmbedder // nil disables opportunistic embedding
	pub      message.Publisher      // nil disables the background upgrade
	topic    string
}

func NewLoader(paths Paths, store *Store, embedder embedding.TextEmbedder, pub message.Publisher, topic string) *Loader {
	return &Loader{
		paths:    paths,
		store:    store,
		embedder: embedder,
		pub:      pub,
		topic:    topic,
	}
}

func (l *Loader) Load(ctx context.Context) (SearchMode, error) {
	// Tier 1: prebuilt exact index plus parallel metadata.
	if snap, ok := l.tryLoadIndex(); ok {
		l.store.Swap(snap)
		log.Printf("[INFO] catalog loaded in %s mode with %d vectors", snap.Mode, snap.Index.Len())
		return snap.Mode, nil
	}

	// Tier 2: embeddings CSV written by the seeding tool.
	if records, ok := l.tryLoadEmbeddingsCSV(); ok {
		snap := &Snapshot{Mode: ModeEmbeddingSimilarity, Records: records}
		l.store.Swap(snap)
		log.Printf("[INFO] catalog loaded in %s mode with %d embedded products", snap.Mode, len(records))
		return snap.Mode, nil
	}

	// Tier 2b/3: bare CSV, optionally upgraded by embedding a bounded prefix.
	records, err := l.loadStylesCSV()
	if err != nil {
		return ModeKeywordMatch, err
	}

	if l.embedder != nil && l.embedPrefix(ctx, records) {
		snap := &Snapshot{Mode: ModeEmbeddingSimilarity, Records: records}
		l.store.Swap(snap)
		log.Printf("[INFO] catalog loaded in %s mode, prefix of %d rows embedded", snap.Mode, min(EmbedPrefixSize, len(records)))
		return snap.Mode, nil
	}

	snap := &Snapshot{Mode: ModeKeywordMatch, Records: records}
	l.store.Swap(snap)
	log.Printf("[INFO] catalog loaded in %s mode with %d products", snap.Mode, len(records))

	l.requestBackgroundUpgrade()
	return snap.Mode, nil
}

func (l *Loader) tryLoadIndex() (*Snapshot, bool) {
	if !fileExists(l.paths.IndexFile) || !fileExists(l.paths.MetadataFile) {
		return nil, false
	}

	index, err := ReadIndexFile(l.paths.IndexFile)
	if err != nil {
		log.Printf("[WARN] prebuilt index unusable, falling back: %v", err)
		return nil, false
	}

	metaBytes, err := os.ReadFile(l.paths.MetadataFile)
	if err != nil {
		log.Printf("[WARN] index metadata unreadable, falling back: %v", err)
		return nil, false
	}
	var records []*ProductRecord
	if err := json.Unmarshal(metaBytes, &records); err != nil {
		log.Printf("[WARN] index metadata malformed, falling back: %v", err)
		return nil, false
	}
	if len(records) != index.Len() {
		log.Printf("[WARN] index has %d vectors but metadata has %d records, falling back", index.Len(), len(records))
		return nil, false
	}
	for _, r := range records {
		if r.ImageURL == "" {
			r.ImageURL = l.imageURL(r.Id)
		}
	}
	return &Snapshot{Mode: ModeVectorIndex, Records: records, Index: index}, true
}

func (l *Loader) tryLoadEmbeddingsCSV() ([]*ProductRecord, bool) {
	if !fileExists(l.paths.EmbeddingsCSV) {
		return nil, false
	}
	records, err := l.parseCSV(l.paths.EmbeddingsCSV)
	if err != nil {
		log.Printf("[WARN] embeddings CSV unusable, falling back: %v", err)
		return nil, false
	}
	embedded := 0
	for _, r := range records {
		if len(r.Embedding) > 0 {
			embedded++
		}
	}
	if embedded == 0 {
		return nil, false
	}
	return records, true
}

func (l *Loader) loadStylesCSV() ([]*ProductRecord, error) {
	path, ok := l.discoverStylesCSV()
	if !ok {
		return nil, fmt.Errorf("no catalog CSV found at %q or any alternate path", l.paths.StylesCSV)
	}
	return l.parseCSV(path)
}

// DiscoveryPaths lists every location the loader will try for the raw CSV,
// configured path first.
func (l *Loader) DiscoveryPaths() []string {
	return []string{
		l.paths.StylesCSV,
		"data/sample_styles.csv",
		"../data/sample_styles.csv",
		"sample_styles.csv",
	}
}

func (l *Loader) discoverStylesCSV() (string, bool) {
	for _, p := range l.DiscoveryPaths() {
		if p != "" && fileExists(p) {
			return p, true
		}
	}
	return "", false
}

// ParseStylesCSV reads a catalog CSV standalone, for tooling that works on
// the raw data without a full loader (the embedding seeder).
func ParseStylesCSV(path, imagesBaseURL string) ([]*ProductRecord, error) {
	l := &Loader{paths: Paths{ImagesBaseURL: imagesBaseURL}}
	return l.parseCSV(path)
}

func (l *Loader) parseCSV(path string) ([]*ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	if _, ok := col["id"]; !ok {
		return nil, fmt.Errorf("catalog CSV %q has no id column", path)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []*ProductRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		id := field(row, "id")
		if id == "" {
			continue
		}
		rec := &ProductRecord{
			Id:          id,
			Name:        field(row, "productDisplayName"),
			Category:    field(row, "masterCategory"),
			Subcategory: field(row, "subCategory"),
			ArticleType: field(row, "articleType"),
			Color:       field(row, "baseColour"),
			Gender:      field(row, "gender"),
			Season:      field(row, "season"),
			Usage:       field(row, "usage"),
			ImageURL:    l.imageURL(id),
		}
		if raw := field(row, "embeddings"); raw != "" {
			var vec []float32
			if err := json.Unmarshal([]byte(raw), &vec); err == nil {
				rec.Embedding = vec
			} else {
				log.Printf("[WARN] product %s has malformed embeddings column, skipping vector", id)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// embedPrefix attaches vectors to the first EmbedPrefixSize records. Reports
// false when the provider degraded to zero vectors, in which case the caller
// stays in keyword mode.
func (l *Loader) embedPrefix(ctx context.Context, records []*ProductRecord) bool {
	n := len(records)
	if n > EmbedPrefixSize {
		n = EmbedPrefixSize
	}
	if n == 0 {
		return false
	}

	texts := make([]string, n)
	for i := 0; i < n; i++ {
		texts[i] = records[i].Description()
	}
	vectors, err := l.embedder.EmbedBatch(ctx, texts)
	if err != nil || len(vectors) != n {
		log.Printf("[WARN] immediate prefix embedding failed: %v", err)
		return false
	}

	usable := false
	for i := 0; i < n; i++ {
		if !isZeroVector(vectors[i]) {
			records[i].Embedding = vectors[i]
			usable = true
		}
	}
	return usable
}

func (l *Loader) requestBackgroundUpgrade() {
	if l.pub == nil {
		return
	}
	payload, _ := json.Marshal(UpgradeRequest{Reason: "keyword_fallback"})
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := l.pub.Publish(l.topic, msg); err != nil {
		log.Printf("[WARN] failed to request background embedding upgrade: %v", err)
		return
	}
	log.Printf("[INFO] background embedding upgrade requested on topic %s", l.topic)
}

// PathReport describes one candidate data file, for the debug endpoint.
type PathReport struct {
	Path     string
	Exists   bool
	RowCount int
	Columns  []string
}

// InspectDataFiles checks every discovery path plus the embeddings CSV and
// reports what is actually on disk.
func (l *Loader) InspectDataFiles() []PathReport {
	paths := append(l.DiscoveryPaths(), l.paths.EmbeddingsCSV)
	reports := make([]PathReport, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		report := PathReport{Path: p, Exists: fileExists(p)}
		if report.Exists {
			report.RowCount, report.Columns = inspectCSV(p)
		}
		reports = append(reports, report)
	}
	return reports
}

func inspectCSV(path string) (int, []string) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, nil
	}
	rows := 0
	for {
		if _, err := reader.Read(); err != nil {
			break
		}
		rows++
	}
	return rows, header
}

func (l *Loader) imageURL(id string) string {
	if l.paths.ImagesBaseURL == "" {
		return ""
	}
	return l.paths.ImagesBaseURL + "/" + id + ".jpg"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
