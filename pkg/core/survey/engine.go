package survey

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

const (
	// DefaultTokenTTL is how long a survey link stays usable when the
	// caller does not configure a window.
	DefaultTokenTTL = 30 * 24 * time.Hour

	// assignBatchSize caps how many per-user assignment transactions a bulk
	// run holds open at once, so a large cohort cannot drain the pool.
	assignBatchSize = 50
)

// activity is the per-user metric snapshot trigger thresholds compare
// against.
type activity struct {
	completedShifts int
	completedHours  float64
}

// eligible reports whether the user's metric sits inside the survey's
// trigger window. FIRST_SHIFT fires once any shift is completed; the other
// types compare their metric against [TriggerValue, TriggerMaxValue], the
// max being open-ended when unset.
func (a activity) eligible(s *db.Survey) bool {
	var metric float64
	switch s.TriggerType {
	case db.TriggerFirstShift:
		return a.completedShifts >= 1
	case db.TriggerShiftsCompleted:
		metric = float64(a.completedShifts)
	case db.TriggerHoursVolunteered:
		metric = a.completedHours
	default:
		return false
	}
	if metric < float64(s.TriggerValue) {
		return false
	}
	if s.TriggerMaxValue != nil && metric > float64(*s.TriggerMaxValue) {
		return false
	}
	return true
}

// EvaluateTriggers checks every active trigger survey against one user's
// completed-shift history and assigns the ones whose window the user now
// sits in. Returns the assignments created by this call.
//
// Assignment rows are inserted conflict-guarded: a user who already holds a
// live assignment for a survey is left alone, so the evaluation can run on
// every shift completion without duplicating work. Each new assignment gets
// its token inside the same transaction.
func EvaluateTriggers(ctx context.Context, store db.Store, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, userID string, tokenTTL time.Duration) ([]db.SurveyAssignment, error) {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	if _, err := store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	history, err := store.ListCompletedSignups(ctx, userID, clock.Now())
	if err != nil {
		return nil, fmt.Errorf("loading completed shifts: %w", err)
	}
	var act activity
	for _, s := range history {
		act.completedShifts++
		act.completedHours += s.ShiftEnd.Sub(s.ShiftStart).Hours()
	}

	surveys, err := store.ListActiveTriggerSurveys(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading trigger surveys: %w", err)
	}

	var created []db.SurveyAssignment
	for i := range surveys {
		s := &surveys[i]
		if !act.eligible(s) {
			continue
		}

		assignment, err := assign(ctx, store, clock, s.ID, userID, tokenTTL)
		if err != nil {
			return nil, err
		}
		if assignment == nil {
			continue
		}
		created = append(created, *assignment)

		logger.Info("Assigned survey by trigger",
			zap.String("survey_id", s.ID),
			zap.String("user_id", userID),
			zap.String("trigger_type", string(s.TriggerType)))
	}

	for _, a := range created {
		title := titleOf(surveys, a.SurveyID)
		notifier.Publish(ctx, notify.Event{
			Type:      notify.EventSurveyAssigned,
			UserID:    userID,
			SubjectID: a.ID,
			Message:   fmt.Sprintf("You have a new survey: %s", title),
			At:        clock.Now(),
		})
	}
	return created, nil
}

func titleOf(surveys []db.Survey, id string) string {
	for _, s := range surveys {
		if s.ID == id {
			return s.Title
		}
	}
	return ""
}

// assign creates one assignment plus its token in a single transaction.
// Returns nil when the user already holds a live assignment for the survey.
func assign(ctx context.Context, store db.Store, clock *civiltime.Clock, surveyID, userID string, tokenTTL time.Duration) (*db.SurveyAssignment, error) {
	assignment := &db.SurveyAssignment{
		ID:        uuid.New().String(),
		SurveyID:  surveyID,
		UserID:    userID,
		Status:    db.AssignmentPending,
		CreatedAt: clock.Now(),
	}

	inserted := false
	err := store.InTx(ctx, func(tx db.Store) error {
		var err error
		inserted, err = tx.CreateAssignment(ctx, assignment)
		if err != nil || !inserted {
			return err
		}
		token, err := NewToken()
		if err != nil {
			return err
		}
		return tx.CreateSurveyToken(ctx, &db.SurveyToken{
			ID:           uuid.New().String(),
			AssignmentID: assignment.ID,
			Token:        token,
			ExpiresAt:    clock.Now().Add(tokenTTL),
			CreatedAt:    clock.Now(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("assigning survey %s to user %s: %w", surveyID, userID, err)
	}
	if !inserted {
		return nil, nil
	}
	return assignment, nil
}

// AssignResult reports a bulk assignment run. Skipped holds the users who
// already had a live assignment or do not exist.
type AssignResult struct {
	Assigned []string
	Skipped  []string
}

// ManuallyAssign gives the survey to each listed user, skipping anyone who
// already holds a live assignment. Users are processed concurrently but at
// most assignBatchSize transactions run at once. One user's failure aborts
// the run; already-committed assignments stay.
func ManuallyAssign(ctx context.Context, store db.Store, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, surveyID string, userIDs []string, tokenTTL time.Duration) (*AssignResult, error) {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	sv, err := store.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	assignments := make([]*db.SurveyAssignment, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(assignBatchSize)
	for i, userID := range userIDs {
		g.Go(func() error {
			if _, err := store.GetUser(gctx, userID); err != nil {
				if db.IsNotFound(err) {
					return nil
				}
				return err
			}
			assignment, err := assign(gctx, store, clock, surveyID, userID, tokenTTL)
			if err != nil {
				return err
			}
			assignments[i] = assignment
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &AssignResult{}
	for i, userID := range userIDs {
		if assignments[i] == nil {
			result.Skipped = append(result.Skipped, userID)
			continue
		}
		result.Assigned = append(result.Assigned, userID)
		notifier.Publish(ctx, notify.Event{
			Type:      notify.EventSurveyAssigned,
			UserID:    userID,
			SubjectID: assignments[i].ID,
			Message:   fmt.Sprintf("You have a new survey: %s", sv.Title),
			At:        clock.Now(),
		})
	}

	logger.Info("Bulk survey assignment finished",
		zap.String("survey_id", surveyID),
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// EligibleResult is the preview of a trigger sweep: the users whose metric
// sits inside the survey's window and who hold no live assignment yet.
type EligibleResult struct {
	EligibleUserIDs []string
	TotalEligible   int
}

// FindEligibleUsers reports who a trigger sweep for the survey would assign,
// without creating anything.
func FindEligibleUsers(ctx context.Context, store db.Store, clock *civiltime.Clock, surveyID string) (*EligibleResult, error) {
	sv, err := store.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if sv.TriggerType == "" {
		return nil, &db.ValidationError{Field: "survey", Reason: "survey has no trigger and is assigned manually"}
	}

	activities, err := store.ListVolunteerActivity(ctx, clock.Now())
	if err != nil {
		return nil, fmt.Errorf("loading volunteer activity: %w", err)
	}
	assigned, err := store.ListUsersWithLiveAssignment(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("loading existing assignments: %w", err)
	}
	hasLive := make(map[string]bool, len(assigned))
	for _, id := range assigned {
		hasLive[id] = true
	}

	result := &EligibleResult{}
	for _, va := range activities {
		if hasLive[va.UserID] {
			continue
		}
		act := activity{completedShifts: va.CompletedShifts, completedHours: va.CompletedHours}
		if act.eligible(sv) {
			result.EligibleUserIDs = append(result.EligibleUserIDs, va.UserID)
		}
	}
	sort.Strings(result.EligibleUserIDs)
	result.TotalEligible = len(result.EligibleUserIDs)
	return result, nil
}
