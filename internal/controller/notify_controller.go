package controller

import (
	"fmt"
	"strings"

	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/serverutils"
	"subscription-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const notifyTokenHeader = "X-Notify-Token"

type INotifyController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	SendTest(ctx *fiber.Ctx) error
	Relay(ctx *fiber.Ctx) error
}

type notifyController struct {
	service service.INotifyService
}

func NewNotifyController(service service.INotifyService) INotifyController {
	return &notifyController{service: service}
}

// RegisterRoutes must run before any route that shares the /notify prefix:
// the test route is matched first and only it requires a session.
func (c *notifyController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	r.Post("/notify/test", jwtMiddleware, c.SendTest)
	r.Post("/notify/:token?", c.Relay)
}

func (c *notifyController) SendTest(ctx *fiber.Ctx) error {
	var req dto.TestNotificationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SendTest(ctx.Context(), &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return sendResultJSON(ctx, res)
}

// Relay accepts the token as a path segment, a bearer token, the
// X-Notify-Token header or the token query parameter, in that order.
func (c *notifyController) Relay(ctx *fiber.Ctx) error {
	var req dto.ThirdPartyNotifyRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	res, err := c.service.Relay(ctx.Context(), notifyToken(ctx), &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return sendResultJSON(ctx, res)
}

func notifyToken(ctx *fiber.Ctx) string {
	if token := strings.TrimSpace(ctx.Params("token")); token != "" {
		return token
	}
	if token, ok := serverutils.BearerToken(ctx); ok {
		return token
	}
	if token := strings.TrimSpace(ctx.Get(notifyTokenHeader)); token != "" {
		return token
	}
	return strings.TrimSpace(ctx.Query("token"))
}

func sendResultJSON(ctx *fiber.Ctx, res *entity.SendResult) error {
	if res.SuccessCount == 0 {
		return ctx.Status(fiber.StatusBadGateway).JSON(&serverutils.BaseResponse[*entity.SendResult]{
			Success: false,
			Code:    fiber.StatusBadGateway,
			Message: fmt.Sprintf("Notification failed on all %d channel(s)", res.Attempted),
			Data:    res,
		})
	}

	message := fmt.Sprintf("Notification sent through %d channel(s)", res.SuccessCount)
	if res.FailedCount > 0 {
		message = fmt.Sprintf("Notification sent: %d succeeded, %d failed", res.SuccessCount, res.FailedCount)
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}
