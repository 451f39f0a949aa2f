package service

import (
	"context"
	"fmt"
	"strings"

	"ai-shopper-be/internal/dto"
	"ai-shopper-be/internal/pkg/logger"
	"ai-shopper-be/internal/pkg/serverutils"
	"ai-shopper-be/pkg/catalog"
	"ai-shopper-be/pkg/imagegen"
)

type ITryOnService interface {
	GenerateTryOn(ctx context.Context, req *dto.TryOnRequest) (*dto.TryOnResponse, error)
}

type tryOnService struct {
	store     *catalog.Store
	generator imagegen.Generator
	log       logger.ILogger
}

func NewTryOnService(store *catalog.Store, generator imagegen.Generator, log logger.ILogger) ITryOnService {
	return &tryOnService{
		store:     store,
		generator: generator,
		log:       log,
	}
}

// GenerateTryOn looks the product up in the catalog, builds a generation
// prompt from its attributes and asks the image model for a try-on render.
// Generation failures propagate; there is no useful degraded result here.
func (s *tryOnService) GenerateTryOn(ctx context.Context, req *dto.TryOnRequest) (*dto.TryOnResponse, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, serverutils.NewUnavailableError("catalog not loaded")
	}

	product, found := snap.FindById(req.ProductId)
	if !found {
		return nil, serverutils.NewNotFoundError(fmt.Sprintf("product %s not found", req.ProductId))
	}

	prompt := buildTryOnPrompt(product, req.StylePrompt)

	imageURL, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate try-on image: %w", err)
	}

	s.log.Info("tryon", "Generated virtual try-on image", map[string]interface{}{
		"product_id": req.ProductId,
	})

	return &dto.TryOnResponse{
		GeneratedImageURL: imageURL,
		ProductId:         req.ProductId,
		GenerationPrompt:  prompt,
		Success:           true,
	}, nil
}

func buildTryOnPrompt(product *catalog.ProductRecord, stylePrompt string) string {
	base := fmt.Sprintf(
		"A person wearing %s, %s in %s color, %s style, photorealistic, high quality, fashion photography style",
		product.Name, product.ArticleType, product.Color, product.Usage,
	)
	if strings.TrimSpace(stylePrompt) != "" {
		return base + ", " + stylePrompt
	}
	return base
}
