package embedding

import "context"

// TextEmbedder defines the interface for generating text embeddings
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// ZeroVector returns the degraded all-zero embedding of the given dimension.
// Cosine similarity against it is defined as 0, so a zero query vector ranks
// nothing above anything else instead of failing the request.
func ZeroVector(dim int) []float32 {
	return make([]float32, dim)
}
