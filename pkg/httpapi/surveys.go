package httpapi

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/survey"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

type assignSurveyRequest struct {
	UserIDs []string `json:"userIds"`
}

func (s *Server) assignSurvey(c *fiber.Ctx) error {
	var req assignSurveyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.UserIDs) == 0 {
		return badRequest(c, "userIds must not be empty")
	}

	result, err := survey.ManuallyAssign(c.Context(), s.store, s.notifier, s.clock, s.logger, c.Params("id"), req.UserIDs, s.cfg.SurveyTokenTTL)
	if err != nil {
		return s.renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"assigned": result.Assigned,
		"skipped":  result.Skipped,
	})
}

// evaluateSurveyTriggers re-checks every active trigger survey against the
// user's activity. The portal calls this after shift completions; repeats
// are cheap because live assignments block re-assignment.
func (s *Server) evaluateSurveyTriggers(c *fiber.Ctx) error {
	created, err := survey.EvaluateTriggers(c.Context(), s.store, s.notifier, s.clock, s.logger, c.Params("id"), s.cfg.SurveyTokenTTL)
	if err != nil {
		return s.renderError(c, err)
	}

	assignments := make([]fiber.Map, len(created))
	for i := range created {
		assignments[i] = fiber.Map{
			"id":       created[i].ID,
			"surveyId": created[i].SurveyID,
			"status":   string(created[i].Status),
		}
	}
	return c.JSON(fiber.Map{"assignments": assignments})
}

func (s *Server) eligibleUsers(c *fiber.Ctx) error {
	result, err := survey.FindEligibleUsers(c.Context(), s.store, s.clock, c.Params("id"))
	if err != nil {
		return s.renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"eligibleUserIds": result.EligibleUserIDs,
		"totalEligible":   result.TotalEligible,
	})
}

// viewSurvey resolves a survey link. Invalid links answer with the status
// the assignment landed in: 410 once expired, 409 once completed.
func (s *Server) viewSurvey(c *fiber.Ctx) error {
	v, err := survey.ValidateToken(c.Context(), s.store, s.clock, s.logger, c.Params("token"))
	if err != nil {
		return s.renderError(c, err)
	}
	if !v.Valid {
		status := fiber.StatusConflict
		if v.Assignment.Status == db.AssignmentExpired {
			status = fiber.StatusGone
		}
		return c.Status(status).JSON(fiber.Map{"valid": false, "error": v.Message})
	}

	return c.JSON(fiber.Map{
		"valid": true,
		"survey": fiber.Map{
			"id":          v.Survey.ID,
			"title":       v.Survey.Title,
			"description": v.Survey.Description,
			"questions":   json.RawMessage(v.Survey.Questions),
		},
		"volunteer": fiber.Map{
			"id":   v.User.ID,
			"name": v.User.Name,
		},
	})
}

type submitSurveyRequest struct {
	Answers []survey.Answer `json:"answers"`
}

func (s *Server) submitSurvey(c *fiber.Ctx) error {
	var req submitSurveyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	response, err := survey.Submit(c.Context(), s.store, s.clock, s.logger, c.Params("token"), req.Answers)
	if err != nil {
		return s.renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"responseId": response.ID,
	})
}
