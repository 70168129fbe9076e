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

func TestDeleteShiftsByDayLocation_RemovesDayAtLocation(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	f.seedUser(t, "user-1")
	f.seedUser(t, "user-2")
	f.seedShift(t, "shift-lunch", "Wellington", 2025, time.March, 10, 11, 5)
	f.seedShift(t, "shift-dinner", "Wellington", 2025, time.March, 10, 17, 5)
	f.seedShift(t, "shift-elsewhere", "Onehunga", 2025, time.March, 10, 17, 5)
	f.seedShift(t, "shift-next-day", "Wellington", 2025, time.March, 11, 17, 5)

	f.mustCreate(t, CreateParams{UserID: "user-1", ShiftID: "shift-lunch"})
	f.mustCreate(t, CreateParams{UserID: "user-2", ShiftID: "shift-dinner"})

	result, err := DeleteShiftsByDayLocation(context.Background(), f.store, f.events, f.clock, f.logger, "2025-03-10", "Wellington")
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.DeletedShifts)
	assert.Equal(t, int64(2), result.DeletedSignups)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, result.AffectedVolunteers)

	_, err = f.store.GetShift(context.Background(), "shift-lunch")
	assert.True(t, db.IsNotFound(err))
	_, err = f.store.GetShift(context.Background(), "shift-elsewhere")
	assert.NoError(t, err)
	_, err = f.store.GetShift(context.Background(), "shift-next-day")
	assert.NoError(t, err)

	assert.Len(t, f.events.byType(notify.EventShiftDeleted), 2)
}

func TestDeleteShiftsByDayLocation_ReportsEachVolunteerOnce(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	f.seedUser(t, "user-1")
	f.seedShift(t, "shift-lunch", "Wellington", 2025, time.March, 10, 11, 5)
	f.seedShift(t, "shift-dinner", "Wellington", 2025, time.March, 10, 17, 5)

	f.mustCreate(t, CreateParams{UserID: "user-1", ShiftID: "shift-lunch"})
	// A waitlist entry on the second shift is still an active signup.
	f.mustCreate(t, CreateParams{UserID: "user-1", ShiftID: "shift-dinner", Status: db.SignupWaitlisted})

	result, err := DeleteShiftsByDayLocation(context.Background(), f.store, f.events, f.clock, f.logger, "2025-03-10", "Wellington")
	require.NoError(t, err)

	assert.Equal(t, []string{"user-1"}, result.AffectedVolunteers)
	assert.Len(t, f.events.byType(notify.EventShiftDeleted), 1)
}

func TestDeleteShiftsByDayLocation_NothingMatches(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	f.seedShift(t, "shift-dinner", "Wellington", 2025, time.March, 10, 17, 5)

	_, err := DeleteShiftsByDayLocation(context.Background(), f.store, f.events, f.clock, f.logger, "2025-03-10", "Onehunga")
	assert.True(t, db.IsNotFound(err))

	_, err = DeleteShiftsByDayLocation(context.Background(), f.store, f.events, f.clock, f.logger, "2025-04-01", "Wellington")
	assert.True(t, db.IsNotFound(err))
}

func TestDeleteShiftsByDayLocation_RejectsBadDate(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)

	_, err := DeleteShiftsByDayLocation(context.Background(), f.store, f.events, f.clock, f.logger, "10/03/2025", "Wellington")
	assert.True(t, db.IsValidation(err))
}

func TestDeleteShiftsByDayLocation_RemovesGroupBookings(t *testing.T) {
	f := newFixture(t, 2025, time.March, 1, 9)
	f.seedUser(t, "user-1")
	f.seedUser(t, "user-2")
	f.seedShift(t, "shift-dinner", "Wellington", 2025, time.March, 10, 17, 5)

	_, err := CreateGroupBooking(context.Background(), f.store, f.events, f.clock, f.logger, GroupBookingParams{
		ShiftID:   "shift-dinner",
		LeaderID:  "user-1",
		Name:      "Rotary Club",
		MemberIDs: []string{"user-1", "user-2"},
	})
	require.NoError(t, err)

	result, err := DeleteShiftsByDayLocation(context.Background(), f.store, f.events, f.clock, f.logger, "2025-03-10", "Wellington")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.DeletedShifts)
	assert.Equal(t, int64(2), result.DeletedSignups)
}
