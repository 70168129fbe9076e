package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/roster"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/signup"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

type shiftJSON struct {
	ID          string    `json:"id"`
	ShiftTypeID string    `json:"shiftTypeId"`
	Location    string    `json:"location"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Capacity    int       `json:"capacity"`
}

func toShiftJSON(shift *db.Shift) shiftJSON {
	return shiftJSON{
		ID:          shift.ID,
		ShiftTypeID: shift.ShiftTypeID,
		Location:    shift.Location,
		StartAt:     shift.StartAt,
		EndAt:       shift.EndAt,
		Capacity:    shift.Capacity,
	}
}

// listShifts returns shifts for a civil-day range: from and to are
// YYYY-MM-DD dates, both inclusive, location optional.
func (s *Server) listShifts(c *fiber.Ctx) error {
	fromDate, toDate := c.Query("from"), c.Query("to")
	if fromDate == "" || toDate == "" {
		return badRequest(c, "from and to dates are required")
	}
	start, _, err := s.clock.BoundsForDate(fromDate)
	if err != nil {
		return badRequest(c, "from must look like 2025-03-10")
	}
	_, end, err := s.clock.BoundsForDate(toDate)
	if err != nil {
		return badRequest(c, "to must look like 2025-03-10")
	}

	shifts, err := s.store.ListShiftsInRange(c.Context(), start, end, c.Query("location"))
	if err != nil {
		return s.renderError(c, err)
	}
	out := make([]shiftJSON, len(shifts))
	for i := range shifts {
		out[i] = toShiftJSON(&shifts[i])
	}
	return c.JSON(fiber.Map{"shifts": out})
}

func (s *Server) deleteShiftsByDay(c *fiber.Ctx) error {
	date, location := c.Query("date"), c.Query("location")
	if date == "" || location == "" {
		return badRequest(c, "date and location are required")
	}

	result, err := signup.DeleteShiftsByDayLocation(c.Context(), s.store, s.notifier, s.clock, s.logger, date, location)
	if err != nil {
		return s.renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"deletedShifts":      result.DeletedShifts,
		"deletedSignups":     result.DeletedSignups,
		"affectedVolunteers": result.AffectedVolunteers,
	})
}

type generateShiftsRequest struct {
	ShiftType string `json:"shiftType"`
	Location  string `json:"location"`
	RRule     string `json:"rrule"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Capacity  int    `json:"capacity"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// generateShifts expands a recurring template between two civil days. The
// shift type is referenced by name.
func (s *Server) generateShifts(c *fiber.Ctx) error {
	var req generateShiftsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	shiftType, err := s.store.GetShiftTypeByName(c.Context(), req.ShiftType)
	if err != nil {
		return s.renderError(c, err)
	}
	from, _, err := s.clock.BoundsForDate(req.From)
	if err != nil {
		return badRequest(c, "from must look like 2025-03-10")
	}
	to, _, err := s.clock.BoundsForDate(req.To)
	if err != nil {
		return badRequest(c, "to must look like 2025-03-10")
	}

	result, err := roster.Generate(c.Context(), s.store, s.clock, s.logger, roster.Template{
		ShiftTypeID: shiftType.ID,
		Location:    req.Location,
		RRule:       req.RRule,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
	}, from, to)
	if err != nil {
		return s.renderError(c, err)
	}

	created := make([]shiftJSON, len(result.Created))
	for i := range result.Created {
		created[i] = toShiftJSON(&result.Created[i])
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"created": created,
		"skipped": result.Skipped,
	})
}
