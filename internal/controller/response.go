package controller

import (
	"errors"

	"subscription-tracker-be/internal/pkg/serverutils"
	"subscription-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNoRenewalPeriod),
		errors.Is(err, service.ErrNoChannel):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrSubscriptionNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotifyDisabled):
		return fiber.StatusForbidden
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func errorJSON(ctx *fiber.Ctx, err error) error {
	code := statusFor(err)
	return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
}

// parseBody decodes and validates a JSON body. An empty body leaves req untouched.
func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	return serverutils.ValidateRequest(req)
}
