package server

import (
	"errors"
	"strings"

	"sangrachna/internal/auth"
	"sangrachna/internal/models"
	"sangrachna/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// localOperator is the Fiber local holding the authenticated auth.Operator.
const localOperator = "operator"

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a UUID route parameter. On failure it writes a 400 JSON
// response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+strings.ToUpper(param)))
		return uuid.Nil, errResponseWritten
	}
	return id, nil
}

// parseBody decodes the JSON body into dst or writes a 400 response.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respondError renders a service error with the status its code maps to.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// operatorFrom returns the operator set by AuthRequired, or the zero
// Operator on public routes.
func operatorFrom(c *fiber.Ctx) auth.Operator {
	op, _ := c.Locals(localOperator).(auth.Operator)
	return op
}

// voterID identifies an anonymous like voter by the client address.
func voterID(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.IP()); ip != "" {
		return ip
	}
	return service.AnonymousVoter
}

// statusRequest is the body of every status transition endpoint.
type statusRequest struct {
	Status string `json:"status"`
}

// notificationResult reports the side effects of a committed transition.
type notificationResult struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// transitionResponse is returned by the status endpoints. Request is set for
// loans, Record for poems and pen-down posts.
type transitionResponse struct {
	Request      *models.BookRequest     `json:"request,omitempty"`
	Record       *models.ModeratedRecord `json:"record,omitempty"`
	Notification notificationResult      `json:"notification"`
	Inventory    string                  `json:"inventory_error,omitempty"`
}

// respondLoanOutcome writes 200 on full success and 207 when the status
// committed but a side effect failed.
func respondLoanOutcome(c *fiber.Ctx, out *service.TransitionOutcome) error {
	resp := transitionResponse{
		Request:      out.Request,
		Notification: notificationResult{Sent: out.NotificationSent},
	}
	if out.NotificationErr != nil {
		resp.Notification.Error = out.NotificationErr.Error()
	}
	if out.InventoryErr != nil {
		resp.Inventory = out.InventoryErr.Error()
	}

	status := fiber.StatusOK
	if out.Partial() {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(resp)
}
