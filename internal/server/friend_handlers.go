package server

import (
	"fmt"

	"whisper/internal/middleware"
	"whisper/internal/models"
	"whisper/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddFriend handles POST /api/friends/add
// @Summary Add a friend by username
// @Description Spend 50 coins to add a user to your friends list
// @Tags friends
// @Accept json
// @Produce json
// @Param request body object{username=string} true "Target username"
// @Success 200 {object} object{detail=string}
// @Failure 402 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /friends/add [post]
func (s *Server) AddFriend(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	friend, err := s.friendService.AddFriend(c.Context(), userID, req.Username)
	if err != nil {
		return models.RespondError(c, err)
	}

	middleware.CoinsSpent.WithLabelValues("add_friend").Add(float64(service.CostAddFriend))

	return c.JSON(fiber.Map{
		"detail": fmt.Sprintf("%s has been added to your friends list.", friend.Username),
	})
}

// SendFriendMessage handles POST /api/friends/send-message
// @Summary Message a friend directly
// @Description Spend 20 coins to send a non-anonymous message to a friend
// @Tags friends
// @Accept json
// @Produce json
// @Param request body object{username=string,text=string} true "Target and text"
// @Success 200 {object} object{detail=string}
// @Failure 402 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /friends/send-message [post]
func (s *Server) SendFriendMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username string `json:"username"`
		Text     string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := s.friendService.SendToFriend(c.Context(), userID, req.Username, req.Text); err != nil {
		return models.RespondError(c, err)
	}

	middleware.MessagesSent.WithLabelValues("friend").Inc()
	middleware.CoinsSpent.WithLabelValues("friend_message").Add(float64(service.CostFriendMessage))

	return c.JSON(fiber.Map{
		"detail": fmt.Sprintf("Message sent to %s.", req.Username),
	})
}

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	friends, err := s.friendService.ListFriends(c.Context(), userID)
	if err != nil {
		return models.RespondError(c, err)
	}

	resp := make([]models.UserSummary, 0, len(friends))
	for i := range friends {
		resp = append(resp, friends[i].Summary())
	}
	return c.JSON(resp)
}
