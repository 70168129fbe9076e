package signup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

// DeleteDayResult reports what a day+location bulk delete removed.
type DeleteDayResult struct {
	DeletedShifts      int64
	DeletedSignups     int64
	AffectedVolunteers []string
}

// DeleteShiftsByDayLocation removes every shift starting on the given civil
// day (YYYY-MM-DD) at the given location, with its signups and group
// bookings. Deletes run child-first inside one transaction. Fails with a
// NotFound when nothing matches.
func DeleteShiftsByDayLocation(ctx context.Context, store db.Store, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, date, location string) (*DeleteDayResult, error) {
	dayStart, dayEnd, err := clock.BoundsForDate(date)
	if err != nil {
		return nil, &db.ValidationError{Field: "date", Reason: err.Error()}
	}

	logger.Info("Deleting shifts for day",
		zap.String("date", date),
		zap.String("location", location))

	result := &DeleteDayResult{}
	err = store.InTx(ctx, func(tx db.Store) error {
		shifts, err := tx.ListShiftsInRange(ctx, dayStart, dayEnd, location)
		if err != nil {
			return err
		}
		if len(shifts) == 0 {
			return &db.NotFoundError{Entity: "shifts", ID: fmt.Sprintf("%s at %s", date, location)}
		}

		shiftIDs := make([]string, len(shifts))
		for i, s := range shifts {
			shiftIDs[i] = s.ID
		}

		active, err := tx.ListActiveSignupsForShifts(ctx, shiftIDs)
		if err != nil {
			return err
		}
		seen := make(map[string]bool)
		for _, s := range active {
			if !seen[s.UserID] {
				seen[s.UserID] = true
				result.AffectedVolunteers = append(result.AffectedVolunteers, s.UserID)
			}
		}

		// Child rows first: signups, then group bookings, then the shifts.
		if result.DeletedSignups, err = tx.DeleteSignupsForShifts(ctx, shiftIDs); err != nil {
			return err
		}
		if _, err = tx.DeleteGroupBookingsForShifts(ctx, shiftIDs); err != nil {
			return err
		}
		if result.DeletedShifts, err = tx.DeleteShifts(ctx, shiftIDs); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Shifts deleted",
		zap.String("date", date),
		zap.String("location", location),
		zap.Int64("deleted_shifts", result.DeletedShifts),
		zap.Int64("deleted_signups", result.DeletedSignups),
		zap.Int("affected_volunteers", len(result.AffectedVolunteers)))

	for _, userID := range result.AffectedVolunteers {
		notifier.Publish(ctx, notify.Event{
			Type:    notify.EventShiftDeleted,
			UserID:  userID,
			Message: fmt.Sprintf("Your shift on %s at %s was removed", date, location),
			At:      clock.Now(),
		})
	}

	return result, nil
}
