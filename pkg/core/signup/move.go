package signup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

// Move reassigns a signup to a different shift and forces it CONFIRMED.
//
// Unlike Create, the capacity ceiling is hard here: a full target shift
// fails with a CapacityError instead of waitlisting. The same-day check
// excludes the signup being moved, so moving between two shifts on one day
// is allowed. Any precondition failure rolls the whole move back.
func Move(ctx context.Context, store db.Store, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, signupID, targetShiftID, note string) (*db.Signup, error) {
	logger.Info("Moving signup",
		zap.String("signup_id", signupID),
		zap.String("target_shift_id", targetShiftID))

	var moved *db.Signup
	var fromShift, toShift *db.Shift
	err := store.InTx(ctx, func(tx db.Store) error {
		current, err := tx.GetSignup(ctx, signupID)
		if err != nil {
			return err
		}
		if !current.Status.Active() {
			return fmt.Errorf("signup %s is canceled: %w", signupID, db.ErrConflict)
		}

		if _, err := tx.GetUserForUpdate(ctx, current.UserID); err != nil {
			return err
		}
		fromShift, err = tx.GetShift(ctx, current.ShiftID)
		if err != nil {
			return err
		}
		toShift, err = tx.GetShiftForUpdate(ctx, targetShiftID)
		if err != nil {
			return err
		}

		existing, err := tx.GetActiveSignup(ctx, current.UserID, toShift.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &db.DuplicateSignupError{UserID: current.UserID, ShiftID: toShift.ID}
		}

		confirmed, err := tx.CountConfirmed(ctx, toShift.ID)
		if err != nil {
			return err
		}
		if confirmed >= toShift.Capacity {
			return &db.CapacityError{ShiftID: toShift.ID, Capacity: toShift.Capacity}
		}

		if err := checkDayClear(ctx, tx, clock, current.UserID, toShift.StartAt, current.ID); err != nil {
			return err
		}

		current.ShiftID = toShift.ID
		current.Status = db.SignupConfirmed
		if err := tx.UpdateSignup(ctx, current); err != nil {
			return err
		}
		moved = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Signup moved",
		zap.String("signup_id", moved.ID),
		zap.String("from_shift_id", fromShift.ID),
		zap.String("to_shift_id", toShift.ID))

	message := fmt.Sprintf("Your shift moved from %s at %s to %s at %s",
		fromShift.Location, fromShift.StartAt.In(clock.Location()).Format("Mon 2 Jan 3:04pm"),
		toShift.Location, toShift.StartAt.In(clock.Location()).Format("Mon 2 Jan 3:04pm"))
	if note != "" {
		message += ": " + note
	}
	notifier.Publish(ctx, notify.Event{
		Type:      notify.EventSignupMoved,
		UserID:    moved.UserID,
		ShiftID:   moved.ShiftID,
		SubjectID: moved.ID,
		Message:   message,
		At:        clock.Now(),
	})

	return moved, nil
}
