package controller

import (
	"github.com/gofiber/fiber/v2"

	"ai-shopper-be/internal/constant"
	"ai-shopper-be/internal/dto"
	"ai-shopper-be/internal/pkg/serverutils"
	"ai-shopper-be/internal/service"
)

type IRecommendationController interface {
	RegisterRoutes(r fiber.Router)
	Recommend(ctx *fiber.Ctx) error
	RecommendV2(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
}

type recommendationController struct {
	recommendationService service.IRecommendationService
}

func NewRecommendationController(recommendationService service.IRecommendationService) IRecommendationController {
	return &recommendationController{
		recommendationService: recommendationService,
	}
}

func (c *recommendationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/v1")
	h.Post("recommendations", c.Recommend)
	h.Post("recommendations/v2", c.RecommendV2)
	h.Post("refresh", c.Refresh)
	h.Post("feedback", c.Feedback)
}

func (c *recommendationController) Recommend(ctx *fiber.Ctx) error {
	var req dto.RecommendationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return serverutils.NewBadRequestError(err.Error())
	}

	// Clamp top_k to sane bounds before any external calls
	if req.TopK > 50 {
		req.TopK = 50
	} else if req.TopK < 1 {
		req.TopK = 0 // Service applies the configured default
	}

	res, err := c.recommendationService.Recommend(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate recommendations", res))
}

// RecommendV2 is the category-partitioned contract: every requested category
// comes back as a key, empty categories are listed as missing, and per
// category debug info is included.
func (c *recommendationController) RecommendV2(ctx *fiber.Ctx) error {
	var req dto.RecommendationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return serverutils.NewBadRequestError(err.Error())
	}
	if len(req.UserProfile.PreferredArticleTypes) == 0 {
		req.UserProfile.PreferredArticleTypes = constant.DefaultCategories
	}

	if req.ItemsPerCategory > 50 {
		req.ItemsPerCategory = 50
	} else if req.ItemsPerCategory < 1 {
		req.ItemsPerCategory = 20
	}

	res, err := c.recommendationService.Recommend(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate recommendations", res))
}

func (c *recommendationController) Refresh(ctx *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return serverutils.NewBadRequestError(err.Error())
	}

	items, err := c.recommendationService.GetFreshResults(ctx.Context(), req.SessionId, req.ExcludeIds, req.Count)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success refresh recommendations", dto.RefreshResponse{
		Recommendations: items,
		SessionId:       req.SessionId,
	}))
}

func (c *recommendationController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return serverutils.NewBadRequestError(err.Error())
	}

	res, err := c.recommendationService.ProcessFeedback(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process feedback", res))
}
