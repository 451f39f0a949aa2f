// Seeds the prebuilt search artifacts from the raw catalog CSV: an
// embeddings CSV, a gob-encoded flat index and a JSON metadata file. Run once
// before deploying so the server starts in vector-index mode.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"ai-shopper-be/internal/config"
	"ai-shopper-be/pkg/catalog"
	"ai-shopper-be/pkg/embedding"
)

const batchSize = 100

func main() {
	var (
		inputPath    = flag.String("input", "", "raw styles CSV (default from config)")
		outputPath   = flag.String("output", "", "embeddings CSV to write (default from config)")
		indexPath    = flag.String("index", "", "index file to write (default from config)")
		metadataPath = flag.String("metadata", "", "metadata JSON to write (default from config)")
		limit        = flag.Int("limit", 0, "only process the first N rows (0 = all)")
	)
	flag.Parse()

	cfg := config.Load()
	if *inputPath == "" {
		*inputPath = cfg.Data.StylesCSVPath
	}
	if *outputPath == "" {
		*outputPath = cfg.Data.EmbeddingsCSVPath
	}
	if *indexPath == "" {
		*indexPath = cfg.Data.IndexPath
	}
	if *metadataPath == "" {
		*metadataPath = cfg.Data.MetadataPath
	}

	if cfg.OpenAI.ApiKey == "" {
		color.Red("✗ OPENAI_API_KEY is not set")
		os.Exit(1)
	}

	color.Cyan("Reading catalog from %s", *inputPath)
	records, err := catalog.ParseStylesCSV(*inputPath, cfg.Data.ImagesBaseURL)
	if err != nil {
		color.Red("✗ Failed to read catalog: %v", err)
		os.Exit(1)
	}
	if *limit > 0 && len(records) > *limit {
		records = records[:*limit]
	}
	color.Green("✓ Loaded %d products", len(records))

	// Direct provider, no zero-vector degradation: a seeding run with broken
	// embeddings is worse than a failed run.
	embedder := embedding.NewOpenAIProvider(cfg.OpenAI.ApiKey, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.EmbeddingDim)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[i:end]

		texts := make([]string, len(batch))
		for j, rec := range batch {
			texts[j] = rec.Description()
		}

		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			color.Red("✗ Embedding batch %d-%d failed: %v", i, end, err)
			os.Exit(1)
		}
		for j, rec := range batch {
			rec.Embedding = vectors[j]
		}
		color.Green("✓ Embedded %d/%d products", end, len(records))
	}
	color.Cyan("Embedding took %s", time.Since(start).Round(time.Second))

	if err := writeEmbeddingsCSV(*outputPath, records); err != nil {
		color.Red("✗ Failed to write embeddings CSV: %v", err)
		os.Exit(1)
	}
	color.Green("✓ Wrote %s", *outputPath)

	index := catalog.NewFlatIndex(cfg.OpenAI.EmbeddingDim)
	for _, rec := range records {
		if err := index.Add(rec.Embedding); err != nil {
			color.Red("✗ Failed to index product %s: %v", rec.Id, err)
			os.Exit(1)
		}
	}
	if err := index.WriteFile(*indexPath); err != nil {
		color.Red("✗ Failed to write index: %v", err)
		os.Exit(1)
	}
	color.Green("✓ Wrote %s (%d vectors)", *indexPath, index.Len())

	if err := writeMetadata(*metadataPath, records); err != nil {
		color.Red("✗ Failed to write metadata: %v", err)
		os.Exit(1)
	}
	color.Green("✓ Wrote %s", *metadataPath)

	color.Cyan("Done. The server will start in vector-index mode.")
}

func writeEmbeddingsCSV(path string, records []*catalog.ProductRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"id", "gender", "masterCategory", "subCategory", "articleType", "baseColour", "season", "usage", "productDisplayName", "embeddings"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		vec, err := json.Marshal(rec.Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding for %s: %w", rec.Id, err)
		}
		row := []string{rec.Id, rec.Gender, rec.Category, rec.Subcategory, rec.ArticleType, rec.Color, rec.Season, rec.Usage, rec.Name, string(vec)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeMetadata(path string, records []*catalog.ProductRecord) error {
	// Metadata carries no vectors; those live in the index file.
	stripped := make([]*catalog.ProductRecord, len(records))
	for i, rec := range records {
		clone := *rec
		clone.Embedding = nil
		stripped[i] = &clone
	}
	data, err := json.MarshalIndent(stripped, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
