package signup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

func TestCreateGroupBooking_PlacesWholeGroup(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	for _, u := range []string{"user-1", "user-2", "user-3"} {
		f.seedUser(t, u)
	}
	f.seedShift(t, "shift-1", "Wellington", 2025, time.March, 10, 17, 5)

	result, err := CreateGroupBooking(context.Background(), f.store, f.events, f.clock, f.logger, GroupBookingParams{
		ShiftID:   "shift-1",
		LeaderID:  "user-1",
		Name:      "Rotary Club",
		MemberIDs: []string{"user-1", "user-2", "user-3"},
	})
	require.NoError(t, err)

	assert.Len(t, result.Signups, 3)
	assert.Equal(t, 3, f.confirmedCount(t, "shift-1"))
	for _, s := range result.Signups {
		assert.Equal(t, db.SignupConfirmed, s.Status)
		assert.Equal(t, result.Booking.ID, s.GroupBookingID)
	}
}

func TestCreateGroupBooking_FailsWhenGroupExceedsCapacity(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	for _, u := range []string{"user-1", "user-2", "user-3", "user-4"} {
		f.seedUser(t, u)
	}
	f.seedShift(t, "shift-1", "Wellington", 2025, time.March, 10, 17, 3)

	// One place already taken leaves room for two, not three.
	f.mustCreate(t, CreateParams{UserID: "user-4", ShiftID: "shift-1"})

	_, err := CreateGroupBooking(context.Background(), f.store, f.events, f.clock, f.logger, GroupBookingParams{
		ShiftID:   "shift-1",
		LeaderID:  "user-1",
		Name:      "Rotary Club",
		MemberIDs: []string{"user-1", "user-2", "user-3"},
	})
	require.Error(t, err)
	var full *db.CapacityError
	require.ErrorAs(t, err, &full)

	assert.Equal(t, 1, f.confirmedCount(t, "shift-1"))
}

func TestCreateGroupBooking_OneClashingMemberAbortsAll(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	for _, u := range []string{"user-1", "user-2"} {
		f.seedUser(t, u)
	}
	f.seedShift(t, "shift-target", "Wellington", 2025, time.March, 10, 17, 5)
	f.seedShift(t, "shift-other", "Onehunga", 2025, time.March, 10, 11, 5)

	// user-2 is already confirmed elsewhere on the day.
	f.mustCreate(t, CreateParams{UserID: "user-2", ShiftID: "shift-other"})

	_, err := CreateGroupBooking(context.Background(), f.store, f.events, f.clock, f.logger, GroupBookingParams{
		ShiftID:   "shift-target",
		LeaderID:  "user-1",
		Name:      "Rotary Club",
		MemberIDs: []string{"user-1", "user-2"},
	})
	require.Error(t, err)
	var clash *db.DoubleBookingError
	require.ErrorAs(t, err, &clash)

	// The transaction rolled back: user-1 was not placed either.
	assert.Equal(t, 0, f.confirmedCount(t, "shift-target"))
	s, err := f.store.GetActiveSignup(context.Background(), "user-1", "shift-target")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestCreateGroupBooking_RejectsBadMemberLists(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	f.seedUser(t, "user-1")
	f.seedShift(t, "shift-1", "Wellington", 2025, time.March, 10, 17, 5)

	_, err := CreateGroupBooking(context.Background(), f.store, f.events, f.clock, f.logger, GroupBookingParams{
		ShiftID:  "shift-1",
		LeaderID: "user-1",
		Name:     "Rotary Club",
	})
	assert.True(t, db.IsValidation(err))

	_, err = CreateGroupBooking(context.Background(), f.store, f.events, f.clock, f.logger, GroupBookingParams{
		ShiftID:   "shift-1",
		LeaderID:  "user-1",
		Name:      "Rotary Club",
		MemberIDs: []string{"user-1", "user-1"},
	})
	assert.True(t, db.IsValidation(err))
}
