package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-shopper-be/pkg/catalog"
	"ai-shopper-be/pkg/embedding"
	"ai-shopper-be/pkg/events"
	natspub "ai-shopper-be/pkg/nats"
)

const embedBatchSize = 100

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService upgrades the catalog in the background: when the loader
// falls back to keyword mode it publishes an upgrade request, and this
// consumer embeds every record, builds a fresh snapshot and swaps it in.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	store     *catalog.Store
	embedder  embedding.TextEmbedder
	publisher *natspub.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	store *catalog.Store,
	embedder embedding.TextEmbedder,
	publisher *natspub.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		store:     store,
		embedder:  embedder,
		publisher: publisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload catalog.UpgradeRequest
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal upgrade request: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	snap, err := cs.store.Snapshot()
	if err != nil {
		log.Printf("[ERROR] Catalog upgrade requested but nothing is loaded: %v", err)
		msg.Ack()
		return
	}
	if snap.Mode != catalog.ModeKeywordMatch {
		log.Printf("[INFO] Catalog already in mode %s, skipping upgrade", snap.Mode)
		msg.Ack()
		return
	}

	log.Printf("[INFO] Upgrading catalog in background (%d records, reason: %s)", len(snap.Records), payload.Reason)

	// Build replacement records; the current snapshot stays untouched and
	// keeps serving requests until the swap.
	upgraded := make([]*catalog.ProductRecord, len(snap.Records))
	embeddedCount := 0

	for start := 0; start < len(snap.Records); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(snap.Records) {
			end = len(snap.Records)
		}
		batch := snap.Records[start:end]

		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = rec.Description()
		}

		vectors, err := cs.embedder.EmbedBatch(ctx, texts)
		if err != nil || len(vectors) != len(batch) {
			log.Printf("[ERROR] Failed to embed batch starting at %d: %v", start, err)
			msg.Nack() // Retriable: the provider may recover
			return
		}

		for i, rec := range batch {
			clone := *rec
			if !isZero(vectors[i]) {
				clone.Embedding = vectors[i]
				embeddedCount++
			}
			upgraded[start+i] = &clone
		}
	}

	if embeddedCount == 0 {
		log.Printf("[WARN] Upgrade produced no usable vectors, keeping keyword mode")
		msg.Ack()
		return
	}

	cs.store.Swap(&catalog.Snapshot{
		Mode:    catalog.ModeEmbeddingSimilarity,
		Records: upgraded,
	})

	cs.publisher.TryPublish(ctx, events.NewCatalogUpgraded(catalog.ModeEmbeddingSimilarity.String(), len(upgraded)))

	log.Printf("[SUCCESS] Catalog upgraded to embedding similarity (%d/%d records embedded)", embeddedCount, len(upgraded))
	msg.Ack()
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
