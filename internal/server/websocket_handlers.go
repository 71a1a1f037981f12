package server

import (
	"sangrachna/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ModerationSocket streams moderation events to connected operators.
// AuthRequired has already redeemed the connection ticket.
func (s *Server) ModerationSocket() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		operator, _ := conn.Locals(middleware.LocalOperator).(string)
		if operator == "" || s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(operator, conn)
		if err != nil {
			middleware.Logger.Warn("operator websocket rejected", "operator", operator, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
