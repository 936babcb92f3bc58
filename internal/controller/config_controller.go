package controller

import (
	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/pkg/serverutils"
	"subscription-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConfigController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type configController struct {
	service service.ISettingsService
}

func NewConfigController(service service.ISettingsService) IConfigController {
	return &configController{service: service}
}

func (c *configController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/config", jwtMiddleware)
	h.Get("", c.Show)
	h.Put("", c.Update)
	h.Post("", c.Update)
}

func (c *configController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.Context())
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Configuration", res))
}

func (c *configController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Configuration saved", res))
}
