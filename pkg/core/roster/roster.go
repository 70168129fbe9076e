// Package roster expands recurring shift templates into concrete shifts.
// Dates that already carry a shift of the same type at the same location are
// left alone, so a generation run can be repeated or widened without
// duplicating the calendar.
package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// clockLayout is the wall-clock format templates use for shift windows.
const clockLayout = "15:04"

// Template describes one recurring shift: an RRULE selecting the days, a
// wall-clock window in the civil timezone, a location, and a capacity.
// An EndTime at or before StartTime rolls into the next day.
type Template struct {
	ShiftTypeID string
	Location    string
	RRule       string
	StartTime   string
	EndTime     string
	Capacity    int
}

// ValidateTemplate reports whether a template could ever generate shifts.
// Config loading runs this so a bad RRULE fails at startup, not mid-sweep.
func ValidateTemplate(t Template) error {
	if t.ShiftTypeID == "" {
		return &db.ValidationError{Field: "shiftType", Reason: "must be set"}
	}
	if t.Location == "" {
		return &db.ValidationError{Field: "location", Reason: "must be set"}
	}
	if t.Capacity < 0 {
		return &db.ValidationError{Field: "capacity", Reason: "must not be negative"}
	}
	if _, err := rrule.StrToRRule(t.RRule); err != nil {
		return &db.ValidationError{Field: "rrule", Reason: err.Error()}
	}
	if _, err := time.Parse(clockLayout, t.StartTime); err != nil {
		return &db.ValidationError{Field: "startTime", Reason: "must look like 17:30"}
	}
	if _, err := time.Parse(clockLayout, t.EndTime); err != nil {
		return &db.ValidationError{Field: "endTime", Reason: "must look like 21:00"}
	}
	return nil
}

// GenerateResult reports one generation run.
type GenerateResult struct {
	Created []db.Shift
	Skipped int
}

// Generate materialises the template's occurrences between from and to
// (civil days, inclusive) as shift rows, inserted in a single transaction.
// Occurrences whose date already has a shift of the template's type at the
// template's location count as Skipped.
func Generate(ctx context.Context, store db.Store, clock *civiltime.Clock, logger *zap.Logger, template Template, from, to time.Time) (*GenerateResult, error) {
	if err := ValidateTemplate(template); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, &db.ValidationError{Field: "to", Reason: "must not be before from"}
	}
	if _, err := store.GetShiftType(ctx, template.ShiftTypeID); err != nil {
		return nil, err
	}

	rule, err := rrule.StrToRRule(template.RRule)
	if err != nil {
		return nil, &db.ValidationError{Field: "rrule", Reason: err.Error()}
	}
	// Occurrences land on civil-day starts; Between is endpoint-inclusive,
	// so ending the rule window at to's day start covers to itself. The
	// existing-shift query runs one day longer to see shifts starting late
	// on the final day.
	windowStart := clock.DayStart(from)
	windowEnd := clock.DayStart(to)
	rule.DTStart(windowStart)
	occurrences := rule.Between(windowStart, windowEnd, true)

	existing, err := store.ListShiftsInRange(ctx, windowStart, windowEnd.AddDate(0, 0, 1), template.Location)
	if err != nil {
		return nil, fmt.Errorf("loading existing shifts: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		if s.ShiftTypeID == template.ShiftTypeID {
			taken[clock.CivilDate(s.StartAt)] = true
		}
	}

	startClock, _ := time.Parse(clockLayout, template.StartTime)
	endClock, _ := time.Parse(clockLayout, template.EndTime)

	result := &GenerateResult{}
	for _, occurrence := range occurrences {
		date := occurrence.In(clock.Location())
		if taken[clock.CivilDate(date)] {
			result.Skipped++
			continue
		}

		start := time.Date(date.Year(), date.Month(), date.Day(),
			startClock.Hour(), startClock.Minute(), 0, 0, clock.Location())
		end := time.Date(date.Year(), date.Month(), date.Day(),
			endClock.Hour(), endClock.Minute(), 0, 0, clock.Location())
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}

		result.Created = append(result.Created, db.Shift{
			ID:          uuid.New().String(),
			ShiftTypeID: template.ShiftTypeID,
			Location:    template.Location,
			StartAt:     start,
			EndAt:       end,
			Capacity:    template.Capacity,
		})
	}

	if len(result.Created) > 0 {
		err = store.InTx(ctx, func(tx db.Store) error {
			for i := range result.Created {
				if err := tx.CreateShift(ctx, &result.Created[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("inserting generated shifts: %w", err)
		}
	}

	logger.Info("Generated shifts from template",
		zap.String("shift_type_id", template.ShiftTypeID),
		zap.String("location", template.Location),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped))
	return result, nil
}
