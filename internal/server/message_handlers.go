package server

import (
	"whisper/internal/middleware"
	"whisper/internal/models"
	"whisper/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendMessage handles POST /api/messages/send
// @Summary Send an anonymous message
// @Description Spend 10 coins to drop a message into the anonymous pool
// @Tags messages
// @Accept json
// @Produce json
// @Param request body object{text=string} true "Message text"
// @Success 201 {object} models.MessageResponse
// @Failure 402 {object} models.ErrorResponse
// @Router /messages/send [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.Send(c.Context(), userID, req.Text)
	if err != nil {
		return models.RespondError(c, err)
	}

	middleware.MessagesSent.WithLabelValues("anonymous").Inc()
	middleware.CoinsSpent.WithLabelValues("send").Add(float64(service.CostSendMessage))

	return c.Status(fiber.StatusCreated).JSON(message.Response(false))
}

// ReceiveMessage handles POST /api/messages/receive
// @Summary Receive a random anonymous message
// @Description Claim one message from the pool; never one of your own
// @Tags messages
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /messages/receive [post]
func (s *Server) ReceiveMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	message, err := s.messageService.Receive(c.Context(), userID)
	if err != nil {
		return models.RespondError(c, err)
	}
	if message == nil {
		// An empty pool is a valid outcome, not an error.
		return c.JSON(fiber.Map{"detail": "No new messages available."})
	}

	middleware.MessagesDelivered.Inc()

	return c.JSON(message.Response(message.IsSenderRevealed))
}

// GetMyMessages handles GET /api/messages/mine
// @Summary List received messages
// @Description Received messages, newest first; sender identity only on revealed ones
// @Tags messages
// @Produce json
// @Success 200 {array} models.MessageResponse
// @Router /messages/mine [get]
func (s *Server) GetMyMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	messages, err := s.messageService.ListReceived(c.Context(), userID)
	if err != nil {
		return models.RespondError(c, err)
	}

	resp := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		// Sender-revealed shape iff revealed at read time.
		resp = append(resp, messages[i].Response(messages[i].IsSenderRevealed))
	}
	return c.JSON(resp)
}

// GetSentMessages handles GET /api/messages/sent
func (s *Server) GetSentMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	messages, err := s.messageService.ListSent(c.Context(), userID)
	if err != nil {
		return models.RespondError(c, err)
	}

	resp := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		// Senders see their own identity regardless of reveal state.
		resp = append(resp, messages[i].Response(true))
	}
	return c.JSON(resp)
}

// RevealSender handles POST /api/messages/:id/reveal
// @Summary Reveal the sender of a received message
// @Description Spend 30 coins to irreversibly disclose the sender's identity
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} models.MessageResponse
// @Failure 402 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /messages/{id}/reveal [post]
func (s *Server) RevealSender(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	message, err := s.messageService.Reveal(c.Context(), userID, messageID)
	if err != nil {
		return models.RespondError(c, err)
	}

	middleware.CoinsSpent.WithLabelValues("reveal").Add(float64(service.CostRevealSender))

	return c.JSON(message.Response(true))
}

// ReplyToMessage handles POST /api/messages/:id/reply
// @Summary Reply to a received message
// @Description Spend 20 coins to attach a one-time reply
// @Tags messages
// @Accept json
// @Produce json
// @Param id path int true "Message ID"
// @Param request body object{reply_text=string} true "Reply text"
// @Success 200 {object} models.MessageResponse
// @Failure 402 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /messages/{id}/reply [post]
func (s *Server) ReplyToMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ReplyText string `json:"reply_text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.Reply(c.Context(), userID, messageID, req.ReplyText)
	if err != nil {
		return models.RespondError(c, err)
	}

	middleware.CoinsSpent.WithLabelValues("reply").Add(float64(service.CostReply))

	return c.JSON(message.Response(message.IsSenderRevealed))
}

// DeleteMessage handles DELETE /api/messages/:id (receiver discarding a
// received message).
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.messageService.Discard(c.Context(), userID, messageID); err != nil {
		return models.RespondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
