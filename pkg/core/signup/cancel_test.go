package signup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

func TestCancel_ReleasesPlace(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	f.seedUser(t, "user-1")
	f.seedShift(t, "shift-1", "Wellington", 2025, time.March, 10, 17, 5)

	created := f.mustCreate(t, CreateParams{UserID: "user-1", ShiftID: "shift-1"})
	require.Equal(t, 1, f.confirmedCount(t, "shift-1"))

	canceled, err := Cancel(context.Background(), f.store, f.events, f.clock, f.logger, created.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SignupCanceled, canceled.Status)
	assert.Equal(t, 0, f.confirmedCount(t, "shift-1"))

	events := f.events.byType(notify.EventSignupCanceled)
	require.Len(t, events, 1)
	assert.Equal(t, "user-1", events[0].UserID)
	assert.Equal(t, "shift-1", events[0].ShiftID)
}

func TestCancel_Idempotent(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	f.seedUser(t, "user-1")
	f.seedShift(t, "shift-1", "Wellington", 2025, time.March, 10, 17, 5)

	created := f.mustCreate(t, CreateParams{UserID: "user-1", ShiftID: "shift-1"})

	_, err := Cancel(context.Background(), f.store, f.events, f.clock, f.logger, created.ID)
	require.NoError(t, err)

	again, err := Cancel(context.Background(), f.store, f.events, f.clock, f.logger, created.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SignupCanceled, again.Status)

	// The repeat is silent: no second notification.
	assert.Len(t, f.events.byType(notify.EventSignupCanceled), 1)
}

func TestCancel_UnknownSignup(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)

	_, err := Cancel(context.Background(), f.store, f.events, f.clock, f.logger, "missing")
	assert.True(t, db.IsNotFound(err))
}

func TestCancel_FreesTheDay(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	f.seedUser(t, "user-1")
	f.seedShift(t, "shift-lunch", "Wellington", 2025, time.March, 10, 11, 5)
	f.seedShift(t, "shift-dinner", "Wellington", 2025, time.March, 10, 17, 5)

	first := f.mustCreate(t, CreateParams{UserID: "user-1", ShiftID: "shift-lunch"})

	// While the lunch signup stands the dinner one clashes.
	_, err := f.create(t, CreateParams{UserID: "user-1", ShiftID: "shift-dinner"})
	assert.True(t, db.IsConflict(err))

	_, err = Cancel(context.Background(), f.store, f.events, f.clock, f.logger, first.ID)
	require.NoError(t, err)

	replacement := f.mustCreate(t, CreateParams{UserID: "user-1", ShiftID: "shift-dinner"})
	assert.Equal(t, db.SignupConfirmed, replacement.Status)
}
