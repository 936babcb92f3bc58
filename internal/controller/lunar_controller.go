package controller

import (
	"subscription-tracker-be/internal/pkg/serverutils"
	"subscription-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILunarController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Convert(ctx *fiber.Ctx) error
}

type lunarController struct {
	service service.ILunarService
}

func NewLunarController(service service.ILunarService) ILunarController {
	return &lunarController{service: service}
}

func (c *lunarController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/lunar", jwtMiddleware)
	h.Get("/convert", c.Convert)
}

// Convert handles GET /api/lunar/convert?date=YYYY-MM-DD.
func (c *lunarController) Convert(ctx *fiber.Ctx) error {
	date := ctx.Query("date")
	if date == "" {
		return fiber.NewError(fiber.StatusBadRequest, "date query parameter is required")
	}

	res, err := c.service.Convert(ctx.Context(), date)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Lunar date", res))
}
