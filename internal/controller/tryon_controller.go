package controller

import (
	"github.com/gofiber/fiber/v2"

	"ai-shopper-be/internal/dto"
	"ai-shopper-be/internal/pkg/serverutils"
	"ai-shopper-be/internal/service"
)

type ITryOnController interface {
	RegisterRoutes(r fiber.Router)
	TryOn(ctx *fiber.Ctx) error
}

type tryOnController struct {
	tryOnService service.ITryOnService
}

func NewTryOnController(tryOnService service.ITryOnService) ITryOnController {
	return &tryOnController{
		tryOnService: tryOnService,
	}
}

func (c *tryOnController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/v1")
	h.Post("tryon", c.TryOn)
}

func (c *tryOnController) TryOn(ctx *fiber.Ctx) error {
	var req dto.TryOnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return serverutils.NewBadRequestError(err.Error())
	}

	res, err := c.tryOnService.GenerateTryOn(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate try-on", res))
}
