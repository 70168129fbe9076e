package signup

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

// GroupBookingParams describes a block booking. MemberIDs lists every
// volunteer to place, leader included if they are attending.
type GroupBookingParams struct {
	ShiftID   string
	LeaderID  string
	Name      string
	MemberIDs []string
}

// GroupBookingResult is the created booking and its member signups.
type GroupBookingResult struct {
	Booking *db.GroupBooking
	Signups []db.Signup
}

// CreateGroupBooking places a block of volunteers on one shift atomically.
// The whole group must fit in the remaining capacity and every member must
// pass the duplicate and same-day checks; one failing member aborts the
// booking. User rows are locked in sorted order before the shift row so
// concurrent bookings sharing members cannot deadlock.
func CreateGroupBooking(ctx context.Context, store db.Store, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, params GroupBookingParams) (*GroupBookingResult, error) {
	if len(params.MemberIDs) == 0 {
		return nil, &db.ValidationError{Field: "memberIds", Reason: "a group booking needs at least one member"}
	}
	memberIDs := uniqueSorted(params.MemberIDs)
	if len(memberIDs) != len(params.MemberIDs) {
		return nil, &db.ValidationError{Field: "memberIds", Reason: "duplicate member"}
	}

	logger.Info("Creating group booking",
		zap.String("shift_id", params.ShiftID),
		zap.String("leader_id", params.LeaderID),
		zap.Int("members", len(memberIDs)))

	result := &GroupBookingResult{}
	err := store.InTx(ctx, func(tx db.Store) error {
		for _, id := range memberIDs {
			if _, err := tx.GetUserForUpdate(ctx, id); err != nil {
				return err
			}
		}
		shift, err := tx.GetShiftForUpdate(ctx, params.ShiftID)
		if err != nil {
			return err
		}

		confirmed, err := tx.CountConfirmed(ctx, shift.ID)
		if err != nil {
			return err
		}
		if confirmed+len(memberIDs) > shift.Capacity {
			return &db.CapacityError{ShiftID: shift.ID, Capacity: shift.Capacity}
		}

		for _, userID := range memberIDs {
			existing, err := tx.GetActiveSignup(ctx, userID, shift.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return &db.DuplicateSignupError{UserID: userID, ShiftID: shift.ID}
			}
			if err := checkDayClear(ctx, tx, clock, userID, shift.StartAt, ""); err != nil {
				return err
			}
		}

		booking := &db.GroupBooking{
			ID:        uuid.New().String(),
			ShiftID:   shift.ID,
			LeaderID:  params.LeaderID,
			Name:      params.Name,
			CreatedAt: clock.Now(),
		}
		if err := tx.CreateGroupBooking(ctx, booking); err != nil {
			return err
		}

		for _, userID := range memberIDs {
			s := db.Signup{
				ID:             uuid.New().String(),
				UserID:         userID,
				ShiftID:        shift.ID,
				GroupBookingID: booking.ID,
				Status:         db.SignupConfirmed,
				CreatedAt:      clock.Now(),
			}
			if err := tx.CreateSignup(ctx, &s); err != nil {
				return err
			}
			result.Signups = append(result.Signups, s)
		}
		result.Booking = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Group booking created",
		zap.String("booking_id", result.Booking.ID),
		zap.Int("signups", len(result.Signups)))

	for _, s := range result.Signups {
		notifier.Publish(ctx, notify.Event{
			Type:      notify.EventSignupCreated,
			UserID:    s.UserID,
			ShiftID:   s.ShiftID,
			SubjectID: s.ID,
			Message:   fmt.Sprintf("You are confirmed with group %q", result.Booking.Name),
			At:        clock.Now(),
		})
	}

	return result, nil
}

func uniqueSorted(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	deduped := out[:0]
	for i, id := range out {
		if i == 0 || out[i-1] != id {
			deduped = append(deduped, id)
		}
	}
	return deduped
}
