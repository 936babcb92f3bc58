package controller

import (
	"fmt"

	internalWS "subscription-tracker-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ILiveController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Connect(ctx *fiber.Ctx) error
}

type liveController struct {
	hub *internalWS.Hub
}

func NewLiveController(hub *internalWS.Hub) ILiveController {
	return &liveController{hub: hub}
}

func (c *liveController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/ws", jwtMiddleware)
	h.Get("/scheduler", c.Connect)
}

// Connect upgrades to a websocket that receives a frame per finished
// scheduler pass.
func (c *liveController) Connect(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	userID := fmt.Sprint(ctx.Locals("user_id"))
	return websocket.New(func(conn *websocket.Conn) {
		internalWS.ServeWs(c.hub, conn, userID)
	})(ctx)
}
