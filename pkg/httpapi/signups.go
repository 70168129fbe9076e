package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/signup"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

type signupJSON struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ShiftID        string    `json:"shiftId"`
	GroupBookingID string    `json:"groupBookingId,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toSignupJSON(s *db.Signup) signupJSON {
	return signupJSON{
		ID:             s.ID,
		UserID:         s.UserID,
		ShiftID:        s.ShiftID,
		GroupBookingID: s.GroupBookingID,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type createSignupRequest struct {
	UserID  string `json:"userId"`
	ShiftID string `json:"shiftId"`
	Status  string `json:"status"`
}

func (s *Server) createSignup(c *fiber.Ctx) error {
	var req createSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == "" || req.ShiftID == "" {
		return badRequest(c, "userId and shiftId are required")
	}

	status := db.SignupConfirmed
	if req.Status != "" {
		status = db.SignupStatus(req.Status)
	}
	created, err := signup.Create(c.Context(), s.store, s.notifier, s.clock, s.logger, signup.CreateParams{
		UserID:  req.UserID,
		ShiftID: req.ShiftID,
		Status:  status,
	})
	if err != nil {
		return s.renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"signup": toSignupJSON(created)})
}

type moveSignupRequest struct {
	ShiftID string `json:"shiftId"`
	Note    string `json:"note"`
}

func (s *Server) moveSignup(c *fiber.Ctx) error {
	var req moveSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ShiftID == "" {
		return badRequest(c, "shiftId is required")
	}

	moved, err := signup.Move(c.Context(), s.store, s.notifier, s.clock, s.logger, c.Params("id"), req.ShiftID, req.Note)
	if err != nil {
		return s.renderError(c, err)
	}
	return c.JSON(fiber.Map{"signup": toSignupJSON(moved)})
}

func (s *Server) cancelSignup(c *fiber.Ctx) error {
	canceled, err := signup.Cancel(c.Context(), s.store, s.notifier, s.clock, s.logger, c.Params("id"))
	if err != nil {
		return s.renderError(c, err)
	}
	return c.JSON(fiber.Map{"signup": toSignupJSON(canceled)})
}

type groupBookingRequest struct {
	LeaderID  string   `json:"leaderId"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

func (s *Server) createGroupBooking(c *fiber.Ctx) error {
	var req groupBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := signup.CreateGroupBooking(c.Context(), s.store, s.notifier, s.clock, s.logger, signup.GroupBookingParams{
		ShiftID:   c.Params("id"),
		LeaderID:  req.LeaderID,
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		return s.renderError(c, err)
	}

	signups := make([]signupJSON, len(result.Signups))
	for i := range result.Signups {
		signups[i] = toSignupJSON(&result.Signups[i])
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"groupBookingId": result.Booking.ID,
		"signups":        signups,
	})
}

func (s *Server) promoteWaitlist(c *fiber.Ctx) error {
	promoted, err := signup.PromoteFromWaitlist(c.Context(), s.store, s.notifier, s.clock, s.logger, c.Params("id"), nil)
	if err != nil {
		return s.renderError(c, err)
	}

	out := make([]signupJSON, len(promoted))
	for i := range promoted {
		out[i] = toSignupJSON(&promoted[i])
	}
	return c.JSON(fiber.Map{"promoted": out})
}
