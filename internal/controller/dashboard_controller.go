package controller

import (
	"subscription-tracker-be/internal/pkg/serverutils"
	"subscription-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDashboardController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Stats(ctx *fiber.Ctx) error
}

type dashboardController struct {
	service service.IDashboardService
}

func NewDashboardController(service service.IDashboardService) IDashboardController {
	return &dashboardController{service: service}
}

func (c *dashboardController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/dashboard", jwtMiddleware)
	h.Get("/stats", c.Stats)
}

func (c *dashboardController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.Context())
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard stats", res))
}
