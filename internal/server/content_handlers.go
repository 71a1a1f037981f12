package server

import (
	"sangrachna/internal/models"
	"sangrachna/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/poems
// @Summary Poems page feed
// @Description Approved poems and pen-down posts, newest first
// @Tags content
// @Produce json
// @Success 200 {array} models.FeedItem
// @Router /poems [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	items, err := s.feed.Feed(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// SubmitPoem handles POST /api/poems
// @Summary Submit a poem
// @Tags content
// @Accept json
// @Produce json
// @Param request body service.PoemSubmission true "Poem"
// @Success 201 {object} models.Poem
// @Failure 400 {object} models.ErrorResponse
// @Router /poems [post]
func (s *Server) SubmitPoem(c *fiber.Ctx) error {
	var req service.PoemSubmission
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	poem, err := s.submissions.SubmitPoem(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(poem)
}

// ToggleLike handles POST /api/poems/:id/like
// @Summary Toggle a like on a poem
// @Description Likes the poem for the calling address, or removes an existing like
// @Tags content
// @Produce json
// @Param id path string true "Poem ID"
// @Success 200 {object} models.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /poems/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.likes.Toggle(c.UserContext(), id, voterID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// SubmitPendown handles POST /api/pendown
// @Summary Submit a pen-down post
// @Tags content
// @Accept json
// @Produce json
// @Param request body service.PendownSubmission true "Post"
// @Success 201 {object} models.PendownPost
// @Failure 400 {object} models.ErrorResponse
// @Router /pendown [post]
func (s *Server) SubmitPendown(c *fiber.Ctx) error {
	var req service.PendownSubmission
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.submissions.SubmitPendown(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListPoems handles GET /api/admin/poems
// @Summary List every poem for moderation
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Poem
// @Router /admin/poems [get]
func (s *Server) ListPoems(c *fiber.Ctx) error {
	poems, err := s.moderation.ListPoems(c.UserContext(), operatorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(poems)
}

// ListPendown handles GET /api/admin/pendown
// @Summary List every pen-down post for moderation
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.PendownPost
// @Router /admin/pendown [get]
func (s *Server) ListPendown(c *fiber.Ctx) error {
	posts, err := s.moderation.ListPendown(c.UserContext(), operatorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// TransitionPoem handles POST /api/admin/poems/:id/status
// @Summary Approve or reject a poem
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Poem ID"
// @Param request body object{status=string} true "Target status"
// @Success 200 {object} transitionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/poems/{id}/status [post]
func (s *Server) TransitionPoem(c *fiber.Ctx) error {
	return s.transitionContent(c, models.ContentKindPoem)
}

// TransitionPendown handles POST /api/admin/pendown/:id/status
// @Summary Approve or reject a pen-down post
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body object{status=string} true "Target status"
// @Success 200 {object} transitionResponse
// @Router /admin/pendown/{id}/status [post]
func (s *Server) TransitionPendown(c *fiber.Ctx) error {
	return s.transitionContent(c, models.ContentKindPendown)
}

func (s *Server) transitionContent(c *fiber.Ctx, kind models.ContentKind) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	rec, err := s.moderation.Transition(c.UserContext(), operatorFrom(c), kind, id, models.ContentStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transitionResponse{Record: rec})
}

// DeletePoem handles DELETE /api/admin/poems/:id
// @Summary Delete a poem
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Poem ID"
// @Success 204
// @Router /admin/poems/{id} [delete]
func (s *Server) DeletePoem(c *fiber.Ctx) error {
	return s.deleteContent(c, models.ContentKindPoem)
}

// DeletePendown handles DELETE /api/admin/pendown/:id
// @Summary Delete a pen-down post
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Router /admin/pendown/{id} [delete]
func (s *Server) DeletePendown(c *fiber.Ctx) error {
	return s.deleteContent(c, models.ContentKindPendown)
}

func (s *Server) deleteContent(c *fiber.Ctx, kind models.ContentKind) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.moderation.Delete(c.UserContext(), operatorFrom(c), kind, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
