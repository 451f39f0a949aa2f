package controller

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"ai-shopper-be/internal/config"
	"ai-shopper-be/internal/dto"
	"ai-shopper-be/internal/pkg/serverutils"
	"ai-shopper-be/internal/service"
	"ai-shopper-be/pkg/catalog"
)

const apiVersion = "1.0.0"

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	DebugData(ctx *fiber.Ctx) error
}

type healthController struct {
	recommendationService service.IRecommendationService
	loader                *catalog.Loader
	cfg                   *config.Config
}

func NewHealthController(recommendationService service.IRecommendationService, loader *catalog.Loader, cfg *config.Config) IHealthController {
	return &healthController{
		recommendationService: recommendationService,
		loader:                loader,
		cfg:                   cfg,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/v1")
	h.Get("health", c.Health)
	h.Get("debug/data", c.DebugData)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	status := c.recommendationService.Status()

	overall := "unhealthy"
	if status.VectorStoreLoaded && !status.FallbackMode {
		overall = "healthy"
	} else if status.VectorStoreLoaded {
		overall = "degraded"
	}

	return ctx.JSON(serverutils.SuccessResponse("Service status", dto.HealthResponse{
		Status:            overall,
		Version:           apiVersion,
		EmbeddingModel:    c.cfg.OpenAI.EmbeddingModel,
		GptModel:          c.cfg.OpenAI.GptModel,
		VectorStoreLoaded: status.VectorStoreLoaded,
		FallbackMode:      status.FallbackMode,
		SearchMode:        status.SearchMode,
		TotalProducts:     status.TotalProducts,
		ActiveSessions:    status.ActiveSessions,
		Environment:       c.cfg.App.Environment,
	}))
}

// DebugData reports which data files the loader can actually see. Useful when
// a deployment silently lands in keyword fallback mode.
func (c *healthController) DebugData(ctx *fiber.Ctx) error {
	wd, _ := os.Getwd()
	status := c.recommendationService.Status()

	reports := c.loader.InspectDataFiles()
	paths := make([]dto.DataFileReport, len(reports))
	for i, rep := range reports {
		paths[i] = dto.DataFileReport{
			Path:     rep.Path,
			Exists:   rep.Exists,
			RowCount: rep.RowCount,
			Columns:  rep.Columns,
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Data file status", dto.DebugDataResponse{
		WorkingDir: wd,
		PathsTried: paths,
		SearchMode: status.SearchMode,
		Loaded:     status.VectorStoreLoaded,
	}))
}
