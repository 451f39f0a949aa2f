package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-shopper-be/internal/config"
	"ai-shopper-be/internal/controller"
	"ai-shopper-be/internal/pkg/logger"
	"ai-shopper-be/internal/repository/memory"
	"ai-shopper-be/internal/service"
	"ai-shopper-be/pkg/catalog"
	"ai-shopper-be/pkg/embedding"
	"ai-shopper-be/pkg/imagegen"
	llmopenai "ai-shopper-be/pkg/llm/openai"
	pktNats "ai-shopper-be/pkg/nats"
	"ai-shopper-be/pkg/outfit"
	"ai-shopper-be/pkg/similarity"
	"ai-shopper-be/pkg/stylist"
	"ai-shopper-be/pkg/vision"
)

type Container struct {
	// Controllers
	RecommendationController controller.IRecommendationController
	ChatController           controller.IChatController
	TryOnController          controller.ITryOnController
	HealthController         controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Catalog loading (main.go drives the initial load)
	CatalogLoader *catalog.Loader
	CatalogStore  *catalog.Store
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS (optional: a dead bus degrades to warn-and-continue)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. AI Providers
	embedder := embedding.NewResilient(
		embedding.NewOpenAIProvider(cfg.OpenAI.ApiKey, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.EmbeddingDim),
		0, // default retry budget
	)
	llmProvider := llmopenai.NewOpenAIProvider(cfg.OpenAI.ApiKey, cfg.OpenAI.GptModel)
	imageGenerator := imagegen.NewDalleGenerator(cfg.OpenAI.ApiKey, cfg.OpenAI.ImageModel)
	log.Printf("[INFO] Using models: chat=%s embeddings=%s images=%s",
		cfg.OpenAI.GptModel, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.ImageModel)

	// 4. Catalog + Search
	catalogStore := catalog.NewStore()
	catalogLoader := catalog.NewLoader(catalog.Paths{
		StylesCSV:     cfg.Data.StylesCSVPath,
		EmbeddingsCSV: cfg.Data.EmbeddingsCSVPath,
		IndexFile:     cfg.Data.IndexPath,
		MetadataFile:  cfg.Data.MetadataPath,
		ImagesBaseURL: cfg.Data.ImagesBaseURL,
	}, catalogStore, embedder, pubSub, cfg.App.CatalogUpgradeTopic)
	engine := similarity.NewEngine(catalogStore)

	// 5. Sessions
	sessionRepo := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.SweepInterval)

	// 6. Services
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.CatalogUpgradeTopic,
		catalogStore,
		embedder,
		natsPub,
	)

	recommendationService := service.NewRecommendationService(
		catalogStore,
		engine,
		embedder,
		stylist.NewQueryBuilder(llmProvider),
		stylist.NewReranker(llmProvider),
		vision.NewAnalyzer(llmProvider),
		sessionRepo,
		natsPub,
		outfit.NewCompleter(),
		cfg.App.EnableCompleteLook,
		sysLogger,
		cfg.Search.MaxSearchResults,
		cfg.Search.DefaultTopK,
	)

	chatService := service.NewChatService(stylist.NewAssistant(llmProvider), recommendationService, sysLogger)
	tryOnService := service.NewTryOnService(catalogStore, imageGenerator, sysLogger)

	// 7. Controllers
	return &Container{
		RecommendationController: controller.NewRecommendationController(recommendationService),
		ChatController:           controller.NewChatController(chatService),
		TryOnController:          controller.NewTryOnController(tryOnService),
		HealthController:         controller.NewHealthController(recommendationService, catalogLoader, cfg),

		ConsumerService: consumerService,
		CatalogLoader:   catalogLoader,
		CatalogStore:    catalogStore,
	}
}
