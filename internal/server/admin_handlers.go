package server

import (
	"fmt"

	"whisper/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminListMessages handles GET /api/admin/messages
// @Summary List all messages (moderation)
// @Tags admin
// @Produce json
// @Success 200 {array} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/messages [get]
func (s *Server) AdminListMessages(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	messages, err := s.modService.ListMessages(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	// Moderators always see the full shape, sender included.
	resp := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, messages[i].Response(true))
	}
	return c.JSON(resp)
}

// AdminDeleteMessage handles DELETE /api/admin/messages/:id
func (s *Server) AdminDeleteMessage(c *fiber.Ctx) error {
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.modService.DeleteMessage(c.Context(), messageID); err != nil {
		return models.RespondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AdminAddCoins handles POST /api/admin/add-coins
// @Summary Credit coins to a user (moderation)
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{user_id=int,amount=int} true "Target and amount"
// @Success 200 {object} object{detail=string,new_balance=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/add-coins [post]
func (s *Server) AdminAddCoins(c *fiber.Ctx) error {
	var req struct {
		UserID uint  `json:"user_id"`
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	account, user, err := s.modService.AddCoins(c.Context(), req.UserID, req.Amount)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"detail":      fmt.Sprintf("%d coins added to user %s.", req.Amount, user.Username),
		"new_balance": account.Coins,
	})
}

// AdminBanUser handles POST /api/admin/ban-user
func (s *Server) AdminBanUser(c *fiber.Ctx) error {
	return s.setBanState(c, true)
}

// AdminUnbanUser handles POST /api/admin/unban-user
func (s *Server) AdminUnbanUser(c *fiber.Ctx) error {
	return s.setBanState(c, false)
}

func (s *Server) setBanState(c *fiber.Ctx, banned bool) error {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	user, err := s.modService.SetBanned(c.Context(), req.UserID, banned)
	if err != nil {
		return models.RespondError(c, err)
	}

	verb := "banned"
	if !banned {
		verb = "unbanned"
	}
	return c.JSON(fiber.Map{
		"detail": fmt.Sprintf("User %s has been %s.", user.Username, verb),
	})
}
