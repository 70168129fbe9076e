package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

// deleteUser removes the volunteer and everything hanging off them. The
// stores own the deletion order, so a failure part-way leaves nothing
// half-removed.
func (s *Server) deleteUser(c *fiber.Ctx) error {
	if err := s.store.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return s.renderError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
