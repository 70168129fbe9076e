package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/achievement"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

type achievementJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Points   int    `json:"points"`
}

func toAchievementJSON(a *db.Achievement) achievementJSON {
	return achievementJSON{
		ID:       a.ID,
		Name:     a.Name,
		Category: a.Category,
		Points:   a.Points,
	}
}

// checkAchievements re-evaluates the user's history and reports what this
// call newly unlocked. Safe to call on every page load; repeats return an
// empty list.
func (s *Server) checkAchievements(c *fiber.Ctx) error {
	unlocked, err := achievement.CheckAndUnlock(c.Context(), s.store, s.notifier, s.clock, s.logger, c.Params("id"), s.cfg.MealsPerShift)
	if err != nil {
		return s.renderError(c, err)
	}

	out := make([]achievementJSON, len(unlocked))
	for i := range unlocked {
		out[i] = toAchievementJSON(&unlocked[i])
	}
	return c.JSON(fiber.Map{"unlocked": out})
}
