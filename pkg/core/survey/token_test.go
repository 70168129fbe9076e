package survey

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

func TestNewToken_OpaqueAndUnique(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40)
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "+")
}

// seedAssignment wires a survey, user, assignment, and token directly into
// the store so the state machine can be driven from any starting state.
func (f *fixture) seedAssignment(t *testing.T, assignmentID, token string, status db.AssignmentStatus, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.store.GetSurvey(ctx, "survey-1"); err != nil {
		require.NoError(t, f.store.CreateSurvey(ctx, &db.Survey{
			ID:        "survey-1",
			Title:     "Volunteer feedback",
			Questions: json.RawMessage(feedbackQuestions),
			IsActive:  true,
		}))
	}
	if _, err := f.store.GetUser(ctx, "user-1"); err != nil {
		f.seedUser(t, "user-1")
	}

	inserted, err := f.store.CreateAssignment(ctx, &db.SurveyAssignment{
		ID:        assignmentID,
		SurveyID:  "survey-1",
		UserID:    "user-1",
		Status:    status,
		CreatedAt: f.clock.Now(),
	})
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, f.store.CreateSurveyToken(ctx, &db.SurveyToken{
		ID:           assignmentID + "-token",
		AssignmentID: assignmentID,
		Token:        token,
		ExpiresAt:    expiresAt,
		CreatedAt:    f.clock.Now(),
	}))
}

func completeAnswers() []Answer {
	return []Answer{
		answer("q-rating", `5`),
		answer("q-return", `true`),
		answer("q-role", `"Kitchen"`),
	}
}

func TestValidateToken_ReturnsBundleWhileLive(t *testing.T) {
	f := newFixture(t)
	f.seedAssignment(t, "asg-1", "tok-live", db.AssignmentPending, f.clock.Now().Add(24*time.Hour))

	v, err := ValidateToken(context.Background(), f.store, f.clock, f.logger, "tok-live")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Empty(t, v.Message)
	assert.Equal(t, "asg-1", v.Assignment.ID)
	assert.Equal(t, "Volunteer feedback", v.Survey.Title)
	assert.Equal(t, "user-1", v.User.ID)
}

func TestValidateToken_DismissedStaysReachable(t *testing.T) {
	f := newFixture(t)
	f.seedAssignment(t, "asg-1", "tok-dismissed", db.AssignmentDismissed, f.clock.Now().Add(24*time.Hour))

	v, err := ValidateToken(context.Background(), f.store, f.clock, f.logger, "tok-dismissed")
	require.NoError(t, err)
	assert.True(t, v.Valid)
}

func TestValidateToken_LapsedTokenExpiresAssignment(t *testing.T) {
	f := newFixture(t)
	f.seedAssignment(t, "asg-1", "tok-old", db.AssignmentPending, f.clock.Now().Add(-time.Hour))

	v, err := ValidateToken(context.Background(), f.store, f.clock, f.logger, "tok-old")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Message, "expired")
	assert.Equal(t, db.AssignmentExpired, v.Assignment.Status)
	assert.Equal(t, db.AssignmentExpired, f.store.AssignmentByID("asg-1").Status)

	// A second look sees the already-expired assignment and changes nothing.
	again, err := ValidateToken(context.Background(), f.store, f.clock, f.logger, "tok-old")
	require.NoError(t, err)
	assert.False(t, again.Valid)
	assert.Contains(t, again.Message, "expired")
}

func TestValidateToken_CompletedAssignment(t *testing.T) {
	f := newFixture(t)
	f.seedAssignment(t, "asg-1", "tok-done", db.AssignmentCompleted, f.clock.Now().Add(24*time.Hour))

	v, err := ValidateToken(context.Background(), f.store, f.clock, f.logger, "tok-done")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Message, "already been completed")
}

func TestValidateToken_UnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := ValidateToken(context.Background(), f.store, f.clock, f.logger, "tok-ghost")
	assert.True(t, db.IsNotFound(err))
}

func TestSubmit_RecordsResponseAndClosesEverything(t *testing.T) {
	f := newFixture(t)
	f.seedAssignment(t, "asg-1", "tok-live", db.AssignmentPending, f.clock.Now().Add(24*time.Hour))

	response, err := Submit(context.Background(), f.store, f.clock, f.logger, "tok-live", completeAnswers())
	require.NoError(t, err)
	require.NotNil(t, response)
	assert.Equal(t, "asg-1", response.AssignmentID)
	assert.Contains(t, string(response.Answers), "q-rating")

	stored := f.store.ResponseForAssignment("asg-1")
	require.NotNil(t, stored)
	assert.Equal(t, response.ID, stored.ID)
	assert.Equal(t, db.AssignmentCompleted, f.store.AssignmentByID("asg-1").Status)

	token := f.store.TokenForAssignment("asg-1")
	require.NotNil(t, token.UsedAt)
	assert.Equal(t, f.clock.Now(), *token.UsedAt)
}

func TestSubmit_SecondSubmissionConflicts(t *testing.T) {
	f := newFixture(t)
	f.seedAssignment(t, "asg-1", "tok-live", db.AssignmentPending, f.clock.Now().Add(24*time.Hour))

	_, err := Submit(context.Background(), f.store, f.clock, f.logger, "tok-live", completeAnswers())
	require.NoError(t, err)

	_, err = Submit(context.Background(), f.store, f.clock, f.logger, "tok-live", completeAnswers())
	assert.True(t, db.IsConflict(err))

	// Exactly one response exists for the assignment.
	require.NotNil(t, f.store.ResponseForAssignment("asg-1"))
}

func TestSubmit_UsedTokenRollsBackCleanly(t *testing.T) {
	f := newFixture(t)
	f.seedAssignment(t, "asg-1", "tok-live", db.AssignmentPending, f.clock.Now().Add(24*time.Hour))

	// A concurrent winner consumed the token after this caller's pre-checks.
	require.NoError(t, f.store.ConsumeToken(context.Background(), "asg-1-token", f.clock.Now()))

	_, err := Submit(context.Background(), f.store, f.clock, f.logger, "tok-live", completeAnswers())
	assert.True(t, db.IsConflict(err))

	assert.Nil(t, f.store.ResponseForAssignment("asg-1"), "rolled-back response is not visible")
	assert.Equal(t, db.AssignmentPending, f.store.AssignmentByID("asg-1").Status)
}

func TestSubmit_ValidationFailureLeavesTokenUsable(t *testing.T) {
	f := newFixture(t)
	f.seedAssignment(t, "asg-1", "tok-live", db.AssignmentPending, f.clock.Now().Add(24*time.Hour))

	// q-role is required but missing.
	_, err := Submit(context.Background(), f.store, f.clock, f.logger, "tok-live", []Answer{
		answer("q-rating", `5`),
		answer("q-return", `true`),
	})
	require.Error(t, err)
	assert.True(t, db.IsValidation(err))
	assert.Contains(t, err.Error(), "q-role")

	assert.Nil(t, f.store.ResponseForAssignment("asg-1"), "no partial answers are persisted")

	v, err := ValidateToken(context.Background(), f.store, f.clock, f.logger, "tok-live")
	require.NoError(t, err)
	assert.True(t, v.Valid, "a failed submission does not burn the token")
}

func TestSubmit_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	f.seedAssignment(t, "asg-1", "tok-old", db.AssignmentPending, f.clock.Now().Add(-time.Hour))

	_, err := Submit(context.Background(), f.store, f.clock, f.logger, "tok-old", completeAnswers())
	assert.True(t, db.IsExpired(err))
	assert.Equal(t, db.AssignmentExpired, f.store.AssignmentByID("asg-1").Status)
}

func TestSubmit_UnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := Submit(context.Background(), f.store, f.clock, f.logger, "tok-ghost", completeAnswers())
	assert.True(t, db.IsNotFound(err))
}
