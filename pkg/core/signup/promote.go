package signup

import (
	"context"

	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

// PromotionPolicy orders a shift's waitlist into promotion preference. The
// store hands candidates over oldest-first; a policy may reorder or drop
// them. Promotion is an explicit admin action, never a background side
// effect of cancellation.
type PromotionPolicy func(waitlist []db.Signup) []db.Signup

// OldestFirst promotes in signup-creation order.
func OldestFirst(waitlist []db.Signup) []db.Signup {
	return waitlist
}

// PromoteFromWaitlist confirms waitlisted signups on the shift while
// capacity remains, in policy order. Candidates whose promotion would break
// the one-confirmed-shift-per-day rule are skipped, not failed. Returns the
// signups promoted.
func PromoteFromWaitlist(ctx context.Context, store db.Store, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, shiftID string, policy PromotionPolicy) ([]db.Signup, error) {
	if policy == nil {
		policy = OldestFirst
	}

	var promoted []db.Signup
	err := store.InTx(ctx, func(tx db.Store) error {
		shift, err := tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		confirmed, err := tx.CountConfirmed(ctx, shift.ID)
		if err != nil {
			return err
		}
		free := shift.Capacity - confirmed
		if free <= 0 {
			return nil
		}

		waitlist, err := tx.ListWaitlisted(ctx, shift.ID)
		if err != nil {
			return err
		}

		for _, candidate := range policy(waitlist) {
			if free <= 0 {
				break
			}
			if err := checkDayClear(ctx, tx, clock, candidate.UserID, shift.StartAt, candidate.ID); err != nil {
				if db.IsConflict(err) {
					logger.Info("Skipping waitlist candidate with same-day clash",
						zap.String("signup_id", candidate.ID),
						zap.String("user_id", candidate.UserID))
					continue
				}
				return err
			}
			candidate.Status = db.SignupConfirmed
			if err := tx.UpdateSignup(ctx, &candidate); err != nil {
				return err
			}
			promoted = append(promoted, candidate)
			free--
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Waitlist promotion finished",
		zap.String("shift_id", shiftID),
		zap.Int("promoted", len(promoted)))

	for _, s := range promoted {
		notifier.Publish(ctx, notify.Event{
			Type:      notify.EventWaitlistPromoted,
			UserID:    s.UserID,
			ShiftID:   s.ShiftID,
			SubjectID: s.ID,
			Message:   "A place opened up and your signup is confirmed",
			At:        clock.Now(),
		})
	}

	return promoted, nil
}
