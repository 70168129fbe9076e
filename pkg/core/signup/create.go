// Package signup enforces shift capacity and the one-confirmed-shift-per-day
// rule. Every mutating operation runs inside one store transaction: the
// shift row is locked before capacity is counted, and the user row is locked
// before the same-day check, so concurrent requests serialise instead of
// racing. Notifications go out only after the transaction commits.
package signup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

// CreateParams describes a signup request. Status is the requested lifecycle
// state and defaults to CONFIRMED; shifts at capacity demote a CONFIRMED
// request to WAITLISTED rather than rejecting it.
type CreateParams struct {
	UserID  string
	ShiftID string
	Status  db.SignupStatus
}

// Create places a volunteer on a shift.
//
// Inside one transaction it locks the user row, then the shift row, verifies
// the user holds no active signup on the shift, applies the capacity
// ceiling, and checks the same-civil-day rule against the shift's start in
// the configured timezone. A conflicting confirmed shift on the same day
// fails with a DoubleBookingError naming the clash.
func Create(ctx context.Context, store db.Store, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, params CreateParams) (*db.Signup, error) {
	status := params.Status
	if status == "" {
		status = db.SignupConfirmed
	}
	switch status {
	case db.SignupConfirmed, db.SignupPending, db.SignupWaitlisted, db.SignupRegularPending:
	default:
		return nil, &db.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot request status %s", status)}
	}

	logger.Info("Creating signup",
		zap.String("user_id", params.UserID),
		zap.String("shift_id", params.ShiftID),
		zap.String("requested_status", string(status)))

	var created *db.Signup
	err := store.InTx(ctx, func(tx db.Store) error {
		user, err := tx.GetUserForUpdate(ctx, params.UserID)
		if err != nil {
			return err
		}
		shift, err := tx.GetShiftForUpdate(ctx, params.ShiftID)
		if err != nil {
			return err
		}

		existing, err := tx.GetActiveSignup(ctx, user.ID, shift.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &db.DuplicateSignupError{UserID: user.ID, ShiftID: shift.ID}
		}

		if status == db.SignupConfirmed {
			confirmed, err := tx.CountConfirmed(ctx, shift.ID)
			if err != nil {
				return err
			}
			if confirmed >= shift.Capacity {
				logger.Info("Shift at capacity, waitlisting",
					zap.String("shift_id", shift.ID),
					zap.Int("capacity", shift.Capacity))
				status = db.SignupWaitlisted
			}
		}

		if status == db.SignupConfirmed {
			if err := checkDayClear(ctx, tx, clock, user.ID, shift.StartAt, ""); err != nil {
				return err
			}
		}

		created = &db.Signup{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			ShiftID:   shift.ID,
			Status:    status,
			CreatedAt: clock.Now(),
		}
		return tx.CreateSignup(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Signup created",
		zap.String("signup_id", created.ID),
		zap.String("status", string(created.Status)))

	notifier.Publish(ctx, notify.Event{
		Type:      notify.EventSignupCreated,
		UserID:    created.UserID,
		ShiftID:   created.ShiftID,
		SubjectID: created.ID,
		Message:   fmt.Sprintf("Signup %s", created.Status),
		At:        clock.Now(),
	})

	return created, nil
}

// checkDayClear fails with a DoubleBookingError when the user already holds
// a confirmed signup on the civil day containing shiftStart. excludeSignupID
// drops one signup from the check, for moves.
func checkDayClear(ctx context.Context, tx db.Store, clock *civiltime.Clock, userID string, shiftStart time.Time, excludeSignupID string) error {
	dayStart, dayEnd := clock.DayBoundsOf(shiftStart)
	clash, err := tx.FindConfirmedInWindow(ctx, userID, dayStart, dayEnd, excludeSignupID)
	if err != nil {
		return err
	}
	if clash != nil {
		return &db.DoubleBookingError{
			Date:                clock.CivilDate(shiftStart),
			ConflictingShiftID:  clash.ShiftID,
			ConflictingLocation: clash.ShiftLocation,
			ConflictingStart:    clash.ShiftStart,
		}
	}
	return nil
}
