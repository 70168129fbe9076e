package achievement

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

// DefaultMealsPerShift is the meals estimate used for completed shifts with
// no recorded actuals.
const DefaultMealsPerShift = 120

// CheckAndUnlock evaluates every active achievement the user has not
// unlocked yet and records the ones whose criteria now hold. Returns the
// achievements newly unlocked by this call, which is empty on a repeat call
// with no new history.
//
// Unlock rows are inserted conflict-guarded, so two concurrent checks for
// the same user cannot double-insert; only the inserting call reports the
// achievement as new. A malformed criteria document fails only its own
// achievement: it is logged and skipped.
func CheckAndUnlock(ctx context.Context, store db.Store, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, userID string, mealsPerShift int) ([]db.Achievement, error) {
	if mealsPerShift <= 0 {
		mealsPerShift = DefaultMealsPerShift
	}

	if _, err := store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	metrics, err := buildMetrics(ctx, store, clock, userID, mealsPerShift)
	if err != nil {
		return nil, err
	}

	unlockedIDs, err := store.ListUnlockedAchievementIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	already := make(map[string]bool, len(unlockedIDs))
	for _, id := range unlockedIDs {
		already[id] = true
	}

	achievements, err := store.ListActiveAchievements(ctx)
	if err != nil {
		return nil, err
	}

	var unlocked []db.Achievement
	for _, a := range achievements {
		if already[a.ID] {
			continue
		}

		criterion, err := ParseCriterion(a.Criteria)
		if err != nil {
			logger.Warn("Skipping achievement with bad criteria",
				zap.String("achievement_id", a.ID),
				zap.String("name", a.Name),
				zap.Error(err))
			continue
		}
		if !criterion.Met(metrics) {
			continue
		}

		inserted, err := store.InsertUserAchievement(ctx, &db.UserAchievement{
			UserID:        userID,
			AchievementID: a.ID,
			UnlockedAt:    clock.Now(),
			Progress:      criterion.Progress(metrics),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record unlock of %s: %w", a.ID, err)
		}
		if !inserted {
			// A concurrent check beat us to it; it reports the delta.
			continue
		}

		logger.Info("Achievement unlocked",
			zap.String("user_id", userID),
			zap.String("achievement_id", a.ID),
			zap.String("name", a.Name))
		unlocked = append(unlocked, a)
	}

	for _, a := range unlocked {
		notifier.Publish(ctx, notify.Event{
			Type:      notify.EventAchievementUnlocked,
			UserID:    userID,
			SubjectID: a.ID,
			Message:   fmt.Sprintf("Achievement unlocked: %s", a.Name),
			At:        clock.Now(),
		})
	}

	return unlocked, nil
}

// buildMetrics loads the user's completed-shift history and friendship count
// and folds them into the snapshot criteria evaluate against.
func buildMetrics(ctx context.Context, store db.Store, clock *civiltime.Clock, userID string, mealsPerShift int) (Metrics, error) {
	now := clock.Now()
	m := Metrics{
		CompletedByType: make(map[string]int),
		Now:             now,
	}

	completed, err := store.ListCompletedSignups(ctx, userID, now)
	if err != nil {
		return Metrics{}, err
	}

	months := make(map[int]bool)
	for _, s := range completed {
		m.CompletedShifts++
		m.CompletedHours += s.ShiftEnd.Sub(s.ShiftStart).Hours()
		m.CompletedByType[s.ShiftTypeName]++

		if s.MealsServed != nil {
			m.EstimatedMeals += *s.MealsServed
		} else {
			m.EstimatedMeals += mealsPerShift
		}

		year, month := clock.MonthOf(s.ShiftStart)
		months[year*12+int(month)-1] = true

		if m.FirstShiftEnd.IsZero() || s.ShiftEnd.Before(m.FirstShiftEnd) {
			m.FirstShiftEnd = s.ShiftEnd
		}
	}
	m.ConsecutiveMonths = longestMonthRun(months)

	friends, err := store.CountAcceptedFriends(ctx, userID)
	if err != nil {
		return Metrics{}, err
	}
	m.AcceptedFriends = friends

	return m, nil
}

// longestMonthRun finds the longest consecutive run in a set of month
// ordinals (year*12 + month index).
func longestMonthRun(months map[int]bool) int {
	if len(months) == 0 {
		return 0
	}
	ordinals := make([]int, 0, len(months))
	for o := range months {
		ordinals = append(ordinals, o)
	}
	sort.Ints(ordinals)

	longest, run := 1, 1
	for i := 1; i < len(ordinals); i++ {
		if ordinals[i] == ordinals[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
