package signup

import (
	"context"

	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

// Cancel releases a signup's place on its shift. Cancelling an already
// canceled signup is a no-op. The freed capacity is not re-filled here;
// PromoteFromWaitlist is a separate admin action.
func Cancel(ctx context.Context, store db.Store, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, signupID string) (*db.Signup, error) {
	var canceled *db.Signup
	var alreadyCanceled bool
	err := store.InTx(ctx, func(tx db.Store) error {
		current, err := tx.GetSignup(ctx, signupID)
		if err != nil {
			return err
		}
		if current.Status == db.SignupCanceled {
			alreadyCanceled = true
			canceled = current
			return nil
		}
		current.Status = db.SignupCanceled
		if err := tx.UpdateSignup(ctx, current); err != nil {
			return err
		}
		canceled = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadyCanceled {
		return canceled, nil
	}

	logger.Info("Signup canceled",
		zap.String("signup_id", canceled.ID),
		zap.String("user_id", canceled.UserID),
		zap.String("shift_id", canceled.ShiftID))

	notifier.Publish(ctx, notify.Event{
		Type:      notify.EventSignupCanceled,
		UserID:    canceled.UserID,
		ShiftID:   canceled.ShiftID,
		SubjectID: canceled.ID,
		Message:   "Your signup was canceled",
		At:        clock.Now(),
	})

	return canceled, nil
}
