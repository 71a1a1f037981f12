package server

import (
	"sangrachna/internal/models"
	"sangrachna/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBooks handles GET /api/books
// @Summary List the library catalog
// @Tags library
// @Produce json
// @Param genre query string false "Genre filter"
// @Success 200 {array} models.Book
// @Router /books [get]
func (s *Server) GetBooks(c *fiber.Ctx) error {
	books, err := s.catalog.ListBooks(c.UserContext(), c.Query("genre"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(books)
}

// GetBook handles GET /api/books/:id
// @Summary Get one book
// @Tags library
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} models.Book
// @Failure 404 {object} models.ErrorResponse
// @Router /books/{id} [get]
func (s *Server) GetBook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	book, err := s.catalog.GetBook(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(book)
}

// RequestLoan handles POST /api/books/:id/requests
// @Summary Request to borrow a book
// @Tags library
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body service.LoanRequestInput true "Borrower details"
// @Success 201 {object} models.BookRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /books/{id}/requests [post]
func (s *Server) RequestLoan(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.LoanRequestInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.BookID = id

	created, err := s.submissions.RequestLoan(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetEvents handles GET /api/events
// @Summary List club events
// @Tags club
// @Produce json
// @Param limit query int false "Maximum number of events"
// @Success 200 {array} models.Event
// @Router /events [get]
func (s *Server) GetEvents(c *fiber.Ctx) error {
	events, err := s.catalog.ListEvents(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(events)
}

// GetTeam handles GET /api/team
// @Summary List the core team
// @Tags club
// @Produce json
// @Success 200 {array} models.TeamMember
// @Router /team [get]
func (s *Server) GetTeam(c *fiber.Ctx) error {
	members, err := s.catalog.ListTeam(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(members)
}

// GetPresident handles GET /api/team/president
// @Summary Get the club president
// @Tags club
// @Produce json
// @Success 200 {object} models.TeamMember
// @Failure 404 {object} models.ErrorResponse
// @Router /team/president [get]
func (s *Server) GetPresident(c *fiber.Ctx) error {
	member, err := s.catalog.President(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(member)
}

// GetDashboardStats handles GET /api/admin/stats
// @Summary Operator dashboard counters
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Router /admin/stats [get]
func (s *Server) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := s.dashboard.Stats(c.UserContext(), operatorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// ListBookRequests handles GET /api/admin/book-requests
// @Summary List loan requests
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.BookRequest
// @Router /admin/book-requests [get]
func (s *Server) ListBookRequests(c *fiber.Ctx) error {
	reqs, err := s.loans.List(c.UserContext(), operatorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reqs)
}

// TransitionBookRequest handles POST /api/admin/book-requests/:id/status
// @Summary Approve, reject or return a loan request
// @Description Responds 207 when the status committed but the approval email or inventory update failed
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body object{status=string} true "Target status"
// @Success 200 {object} transitionResponse
// @Success 207 {object} transitionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/book-requests/{id}/status [post]
func (s *Server) TransitionBookRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	out, err := s.loans.Transition(c.UserContext(), operatorFrom(c), id, models.LoanStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return respondLoanOutcome(c, out)
}

// CreateBook handles POST /api/admin/books
// @Summary Add a book to the catalog
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.BookInput true "Book"
// @Success 201 {object} models.Book
// @Router /admin/books [post]
func (s *Server) CreateBook(c *fiber.Ctx) error {
	var req service.BookInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	book, err := s.catalog.CreateBook(c.UserContext(), operatorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

// UpdateBook handles PUT /api/admin/books/:id
// @Summary Update a book
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body service.BookInput true "Changed fields"
// @Success 200 {object} models.Book
// @Router /admin/books/{id} [put]
func (s *Server) UpdateBook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.BookInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	book, err := s.catalog.UpdateBook(c.UserContext(), operatorFrom(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(book)
}

// DeleteBook handles DELETE /api/admin/books/:id
// @Summary Delete a book and its loan requests
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Success 204
// @Router /admin/books/{id} [delete]
func (s *Server) DeleteBook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.catalog.DeleteBook(c.UserContext(), operatorFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateEvent handles POST /api/admin/events
// @Summary Create an event
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.EventInput true "Event"
// @Success 201 {object} models.Event
// @Router /admin/events [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var req service.EventInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	event, err := s.catalog.CreateEvent(c.UserContext(), operatorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// UpdateEvent handles PUT /api/admin/events/:id
// @Summary Update an event
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body service.EventInput true "Changed fields"
// @Success 200 {object} models.Event
// @Router /admin/events/{id} [put]
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.EventInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	event, err := s.catalog.UpdateEvent(c.UserContext(), operatorFrom(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(event)
}

// DeleteEvent handles DELETE /api/admin/events/:id
// @Summary Delete an event
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 204
// @Router /admin/events/{id} [delete]
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.catalog.DeleteEvent(c.UserContext(), operatorFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateTeamMember handles POST /api/admin/team
// @Summary Add a team member
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.TeamMemberInput true "Member"
// @Success 201 {object} models.TeamMember
// @Router /admin/team [post]
func (s *Server) CreateTeamMember(c *fiber.Ctx) error {
	var req service.TeamMemberInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	member, err := s.catalog.CreateTeamMember(c.UserContext(), operatorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// UpdateTeamMember handles PUT /api/admin/team/:id
// @Summary Update a team member
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body service.TeamMemberInput true "Changed fields"
// @Success 200 {object} models.TeamMember
// @Router /admin/team/{id} [put]
func (s *Server) UpdateTeamMember(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.TeamMemberInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	member, err := s.catalog.UpdateTeamMember(c.UserContext(), operatorFrom(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(member)
}

// DeleteTeamMember handles DELETE /api/admin/team/:id
// @Summary Remove a team member
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 204
// @Router /admin/team/{id} [delete]
func (s *Server) DeleteTeamMember(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.catalog.DeleteTeamMember(c.UserContext(), operatorFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
