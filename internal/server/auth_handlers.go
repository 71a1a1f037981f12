package server

import (
	"strings"

	"sangrachna/internal/auth"
	"sangrachna/internal/middleware"
	"sangrachna/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	wsPath      = "/api/admin/ws"
	localClaims = "claims"
)

// AuthRequired authenticates operators. The websocket route accepts only a
// single-use ticket; every other route needs a Bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if c.Path() == wsPath {
			op, err := s.authService.RedeemWSTicket(ctx, c.Query("ticket"))
			if err != nil {
				return respondError(c, err)
			}
			s.setOperator(c, op)
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		op, claims, err := s.authService.Authenticate(ctx, strings.TrimSpace(token))
		if err != nil {
			return respondError(c, err)
		}
		c.Locals(localClaims, claims)
		s.setOperator(c, op)
		return c.Next()
	}
}

func (s *Server) setOperator(c *fiber.Ctx, op auth.Operator) {
	c.Locals(localOperator, op)
	c.Locals(middleware.LocalOperator, op.Username())
	c.SetUserContext(middleware.WithOperator(c.UserContext(), op.Username()))
}

// Login handles POST /api/auth/login
// @Summary Operator login
// @Description Authenticate an operator and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} service.LoginResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// Logout handles POST /api/auth/logout
// @Summary Operator logout
// @Description Revoke the current session token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals(localClaims).(*auth.Claims)
	if err := s.authService.Logout(c.UserContext(), claims); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// IssueWSTicket handles POST /api/admin/ws/ticket
// @Summary Issue websocket ticket
// @Description Returns a single-use ticket valid for 30 seconds for GET /api/admin/ws
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{ticket=string}
// @Router /admin/ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	ticket, err := s.authService.IssueWSTicket(c.UserContext(), operatorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ticket": ticket})
}
