package controller

import (
	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/pkg/serverutils"
	"subscription-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ToggleStatus(ctx *fiber.Ctx) error
	Renew(ctx *fiber.Ctx) error
	TestNotify(ctx *fiber.Ctx) error
	ListPayments(ctx *fiber.Ctx) error
	UpdatePayment(ctx *fiber.Ctx) error
	DeletePayment(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	service service.ISubscriptionService
	notify  service.INotifyService
}

func NewSubscriptionController(service service.ISubscriptionService, notify service.INotifyService) ISubscriptionController {
	return &subscriptionController{
		service: service,
		notify:  notify,
	}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/subscriptions", jwtMiddleware)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/toggle-status", c.ToggleStatus)
	h.Post("/:id/renew", c.Renew)
	h.Post("/:id/test-notify", c.TestNotify)
	h.Get("/:id/payments", c.ListPayments)
	h.Put("/:id/payments/:paymentId", c.UpdatePayment)
	h.Delete("/:id/payments/:paymentId", c.DeletePayment)
}

func (c *subscriptionController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.Context())
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscriptions", res))
}

func (c *subscriptionController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription", res))
}

func (c *subscriptionController) Create(ctx *fiber.Ctx) error {
	var req dto.SubscriptionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(&serverutils.BaseResponse[any]{
		Success: true,
		Code:    fiber.StatusCreated,
		Message: "Subscription created",
		Data:    res,
	})
}

func (c *subscriptionController) Update(ctx *fiber.Ctx) error {
	var req dto.SubscriptionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription updated", res))
}

func (c *subscriptionController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.Context(), ctx.Params("id")); err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Subscription deleted", nil))
}

func (c *subscriptionController) ToggleStatus(ctx *fiber.Ctx) error {
	var req dto.ToggleStatusRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ToggleStatus(ctx.Context(), ctx.Params("id"), *req.IsActive)
	if err != nil {
		return errorJSON(ctx, err)
	}
	message := "Subscription paused"
	if res.IsActive {
		message = "Subscription activated"
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

// Renew records a manual payment. The body is optional.
func (c *subscriptionController) Renew(ctx *fiber.Ctx) error {
	var req dto.RenewRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ManualRenew(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription renewed", res))
}

func (c *subscriptionController) TestNotify(ctx *fiber.Ctx) error {
	res, err := c.notify.TestSubscription(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return sendResultJSON(ctx, res)
}

func (c *subscriptionController) ListPayments(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment history", res.PaymentHistory))
}

func (c *subscriptionController) UpdatePayment(ctx *fiber.Ctx) error {
	var req dto.UpdatePaymentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdatePaymentRecord(ctx.Context(), ctx.Params("id"), ctx.Params("paymentId"), &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment record updated", res))
}

func (c *subscriptionController) DeletePayment(ctx *fiber.Ctx) error {
	res, err := c.service.DeletePaymentRecord(ctx.Context(), ctx.Params("id"), ctx.Params("paymentId"))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment record deleted", res))
}
