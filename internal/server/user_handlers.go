package server

import (
	"whisper/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Current user profile
// @Description Profile plus coin balance and ban state
// @Tags users
// @Produce json
// @Success 200 {object} object{user=models.User,account=models.Account}
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondError(c, err)
	}

	account, err := s.accountRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":    user,
		"account": account,
	})
}
