package controller

import (
	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/pkg/serverutils"
	"subscription-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISchedulerController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Run(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type schedulerController struct {
	scheduler service.ISchedulerService
	trigger   service.ITriggerService
}

func NewSchedulerController(scheduler service.ISchedulerService, trigger service.ITriggerService) ISchedulerController {
	return &schedulerController{
		scheduler: scheduler,
		trigger:   trigger,
	}
}

func (c *schedulerController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/scheduler", jwtMiddleware)
	h.Post("/run", c.Run)
	h.Get("/status", c.Status)
	h.Get("/history", c.History)
}

// Run queues a pass behind any pass already in progress and returns at once.
func (c *schedulerController) Run(ctx *fiber.Ctx) error {
	if err := c.trigger.Trigger(ctx.Context(), service.SourceManual); err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(&serverutils.BaseResponse[*dto.TriggerRunResponse]{
		Success: true,
		Code:    fiber.StatusAccepted,
		Message: "Scheduler run queued",
		Data:    &dto.TriggerRunResponse{Queued: true, Source: service.SourceManual},
	})
}

func (c *schedulerController) Status(ctx *fiber.Ctx) error {
	res, err := c.scheduler.LatestStatus(ctx.Context())
	if err != nil {
		return errorJSON(ctx, err)
	}
	if res == nil {
		return ctx.JSON(serverutils.SuccessResponse[any]("Scheduler has not run yet", nil))
	}
	return ctx.JSON(serverutils.SuccessResponse("Scheduler status", res))
}

func (c *schedulerController) History(ctx *fiber.Ctx) error {
	res, err := c.scheduler.History(ctx.Context())
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Scheduler history", res))
}
