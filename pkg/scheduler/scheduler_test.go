package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db/dbtest"
)

func seedLapsedWork(t *testing.T, store *dbtest.MemStore, clock *civiltime.Clock) (signupID, assignmentID string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, &db.User{ID: "user-1", Email: "v@example.org", Name: "Vol"}))
	require.NoError(t, store.CreateShiftType(ctx, &db.ShiftType{ID: "type-1", Name: "Dinner service"}))

	// Confirmed signup on a shift that ended a day ago.
	require.NoError(t, store.CreateShift(ctx, &db.Shift{
		ID:          "shift-done",
		ShiftTypeID: "type-1",
		Location:    "Wellington",
		StartAt:     clock.Now().Add(-27 * time.Hour),
		EndAt:       clock.Now().Add(-24 * time.Hour),
		Capacity:    5,
	}))
	require.NoError(t, store.CreateSignup(ctx, &db.Signup{
		ID:      "signup-lapsed",
		UserID:  "user-1",
		ShiftID: "shift-done",
		Status:  db.SignupConfirmed,
	}))

	// Pending assignment whose token lapsed an hour ago.
	require.NoError(t, store.CreateSurvey(ctx, &db.Survey{ID: "survey-1", Title: "Feedback", IsActive: true}))
	inserted, err := store.CreateAssignment(ctx, &db.SurveyAssignment{
		ID:       "asg-lapsed",
		SurveyID: "survey-1",
		UserID:   "user-1",
		Status:   db.AssignmentPending,
	})
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, store.CreateSurveyToken(ctx, &db.SurveyToken{
		ID:           "tok-1",
		AssignmentID: "asg-lapsed",
		Token:        "opaque",
		ExpiresAt:    clock.Now().Add(-time.Hour),
	}))

	return "signup-lapsed", "asg-lapsed"
}

func TestSweep_RunsBothPasses(t *testing.T) {
	clock, err := civiltime.NewClockAt("Pacific/Auckland", time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	store := dbtest.NewMemStore()
	signupID, assignmentID := seedLapsedWork(t, store, clock)

	s := New(store, clock, zap.NewNop(), 0, 8*time.Hour)
	s.Sweep(context.Background())

	flipped, err := store.GetSignup(context.Background(), signupID)
	require.NoError(t, err)
	assert.Equal(t, db.SignupNoShow, flipped.Status)
	assert.Equal(t, db.AssignmentExpired, store.AssignmentByID(assignmentID).Status)
}

func TestRun_SweepsOnStartAndStopsOnCancel(t *testing.T) {
	clock, err := civiltime.NewClockAt("Pacific/Auckland", time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	store := dbtest.NewMemStore()
	signupID, _ := seedLapsedWork(t, store, clock)

	ctx, cancel := context.WithCancel(context.Background())
	s := New(store, clock, zap.NewNop(), time.Hour, 8*time.Hour)

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// The initial sweep happens without waiting for the first tick.
	require.Eventually(t, func() bool {
		flipped, err := store.GetSignup(context.Background(), signupID)
		return err == nil && flipped.Status == db.SignupNoShow
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
