package embedding

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Resilient wraps a TextEmbedder with retry-then-degrade semantics: calls are
// retried with exponential backoff and, when the provider still fails, the
// caller gets zero vectors instead of an error. A zero query vector produces a
// degraded but usable result set, which beats failing the whole request.
type Resilient struct {
	inner      TextEmbedder
	maxElapsed time.Duration
}

var _ TextEmbedder = &Resilient{}

func NewResilient(inner TextEmbedder, maxElapsed time.Duration) *Resilient {
	if maxElapsed <= 0 {
		maxElapsed = 15 * time.Second
	}
	return &Resilient{inner: inner, maxElapsed: maxElapsed}
}

func (r *Resilient) Dimension() int {
	return r.inner.Dimension()
}

func (r *Resilient) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	op := func() error {
		var err error
		vec, err = r.inner.Embed(ctx, text)
		return err
	}
	if err := backoff.Retry(op, r.policy(ctx)); err != nil {
		log.Printf("[WARN] embedding failed after retries, falling back to zero vector: %v", err)
		return ZeroVector(r.inner.Dimension()), nil
	}
	return vec, nil
}

func (r *Resilient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	op := func() error {
		var err error
		vectors, err = r.inner.EmbedBatch(ctx, texts)
		return err
	}
	if err := backoff.Retry(op, r.policy(ctx)); err != nil {
		log.Printf("[WARN] batch embedding failed after retries, falling back to zero vectors: %v", err)
		vectors = make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = ZeroVector(r.inner.Dimension())
		}
	}
	return vectors, nil
}

func (r *Resilient) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = r.maxElapsed
	return backoff.WithContext(b, ctx)
}
