package roster

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db/dbtest"
)

const testShiftType = "shift-type-dinner"

type fixture struct {
	store  *dbtest.MemStore
	clock  *civiltime.Clock
	logger *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock, err := civiltime.NewClockAt("Pacific/Auckland", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	f := &fixture{store: dbtest.NewMemStore(), clock: clock, logger: zap.NewNop()}
	require.NoError(t, f.store.CreateShiftType(context.Background(), &db.ShiftType{
		ID:   testShiftType,
		Name: "Dinner service",
	}))
	return f
}

func (f *fixture) day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, f.clock.Location())
}

func dinnerTemplate() Template {
	return Template{
		ShiftTypeID: testShiftType,
		Location:    "Wellington",
		RRule:       "FREQ=WEEKLY;BYDAY=MO,WE",
		StartTime:   "17:30",
		EndTime:     "21:00",
		Capacity:    8,
	}
}

func TestGenerate_ExpandsWeeklyRule(t *testing.T) {
	f := newFixture(t)

	// 2025-03-03 is a Monday; two full weeks give two Mondays and two
	// Wednesdays.
	result, err := Generate(context.Background(), f.store, f.clock, f.logger,
		dinnerTemplate(), f.day(2025, 3, 3), f.day(2025, 3, 16))
	require.NoError(t, err)
	require.Len(t, result.Created, 4)
	assert.Zero(t, result.Skipped)

	first := result.Created[0]
	assert.Equal(t, testShiftType, first.ShiftTypeID)
	assert.Equal(t, "Wellington", first.Location)
	assert.Equal(t, 8, first.Capacity)
	assert.True(t, first.StartAt.Equal(time.Date(2025, 3, 3, 17, 30, 0, 0, f.clock.Location())))
	assert.True(t, first.EndAt.Equal(time.Date(2025, 3, 3, 21, 0, 0, 0, f.clock.Location())))

	stored, err := f.store.ListShiftsInRange(context.Background(),
		f.day(2025, 3, 3), f.day(2025, 3, 17), "Wellington")
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, "2025-03-03", f.clock.CivilDate(stored[0].StartAt))
	assert.Equal(t, "2025-03-05", f.clock.CivilDate(stored[1].StartAt))
	assert.Equal(t, "2025-03-10", f.clock.CivilDate(stored[2].StartAt))
	assert.Equal(t, "2025-03-12", f.clock.CivilDate(stored[3].StartAt))
}

func TestGenerate_SkipsDatesAlreadyStaffed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Same type and location on the second Monday: that date is taken.
	require.NoError(t, f.store.CreateShift(ctx, &db.Shift{
		ID:          uuid.New().String(),
		ShiftTypeID: testShiftType,
		Location:    "Wellington",
		StartAt:     time.Date(2025, 3, 10, 12, 0, 0, 0, f.clock.Location()),
		EndAt:       time.Date(2025, 3, 10, 15, 0, 0, 0, f.clock.Location()),
		Capacity:    4,
	}))
	// A different shift type on the first Wednesday does not block.
	require.NoError(t, f.store.CreateShiftType(ctx, &db.ShiftType{ID: "shift-type-prep", Name: "Kitchen prep"}))
	require.NoError(t, f.store.CreateShift(ctx, &db.Shift{
		ID:          uuid.New().String(),
		ShiftTypeID: "shift-type-prep",
		Location:    "Wellington",
		StartAt:     time.Date(2025, 3, 5, 12, 0, 0, 0, f.clock.Location()),
		EndAt:       time.Date(2025, 3, 5, 15, 0, 0, 0, f.clock.Location()),
		Capacity:    4,
	}))

	result, err := Generate(ctx, f.store, f.clock, f.logger,
		dinnerTemplate(), f.day(2025, 3, 3), f.day(2025, 3, 16))
	require.NoError(t, err)
	assert.Len(t, result.Created, 3)
	assert.Equal(t, 1, result.Skipped)

	for _, s := range result.Created {
		assert.NotEqual(t, "2025-03-10", f.clock.CivilDate(s.StartAt))
	}
}

func TestGenerate_RerunCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := Generate(ctx, f.store, f.clock, f.logger,
		dinnerTemplate(), f.day(2025, 3, 3), f.day(2025, 3, 16))
	require.NoError(t, err)
	require.Len(t, first.Created, 4)

	second, err := Generate(ctx, f.store, f.clock, f.logger,
		dinnerTemplate(), f.day(2025, 3, 3), f.day(2025, 3, 16))
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, 4, second.Skipped)
}

func TestGenerate_OvernightWindowRollsToNextDay(t *testing.T) {
	f := newFixture(t)
	template := dinnerTemplate()
	template.RRule = "FREQ=WEEKLY;BYDAY=FR"
	template.StartTime = "22:00"
	template.EndTime = "01:00"

	result, err := Generate(context.Background(), f.store, f.clock, f.logger,
		template, f.day(2025, 3, 7), f.day(2025, 3, 7))
	require.NoError(t, err)
	require.Len(t, result.Created, 1)

	shift := result.Created[0]
	assert.True(t, shift.StartAt.Equal(time.Date(2025, 3, 7, 22, 0, 0, 0, f.clock.Location())))
	assert.True(t, shift.EndAt.Equal(time.Date(2025, 3, 8, 1, 0, 0, 0, f.clock.Location())))
}

func TestGenerate_CoversDaylightSavingEnd(t *testing.T) {
	f := newFixture(t)
	template := dinnerTemplate()
	template.RRule = "FREQ=WEEKLY;BYDAY=SU"

	// Clocks go back on 2025-04-06; the 25-hour day still gets its 17:30
	// shift at the right wall-clock time.
	result, err := Generate(context.Background(), f.store, f.clock, f.logger,
		template, f.day(2025, 4, 6), f.day(2025, 4, 6))
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.True(t, result.Created[0].StartAt.Equal(time.Date(2025, 4, 6, 17, 30, 0, 0, f.clock.Location())))
}

func TestGenerate_Rejections(t *testing.T) {
	f := newFixture(t)
	from, to := f.day(2025, 3, 3), f.day(2025, 3, 16)

	cases := []struct {
		name   string
		mutate func(*Template)
		check  func(error) bool
	}{
		{"bad rrule", func(tpl *Template) { tpl.RRule = "FREQ=SOMETIMES" }, db.IsValidation},
		{"bad start time", func(tpl *Template) { tpl.StartTime = "5:30pm" }, db.IsValidation},
		{"bad end time", func(tpl *Template) { tpl.EndTime = "25:00" }, db.IsValidation},
		{"negative capacity", func(tpl *Template) { tpl.Capacity = -1 }, db.IsValidation},
		{"missing location", func(tpl *Template) { tpl.Location = "" }, db.IsValidation},
		{"unknown shift type", func(tpl *Template) { tpl.ShiftTypeID = "shift-type-ghost" }, db.IsNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			template := dinnerTemplate()
			tc.mutate(&template)
			_, err := Generate(context.Background(), f.store, f.clock, f.logger, template, from, to)
			assert.True(t, tc.check(err), "got %v", err)
		})
	}

	t.Run("window reversed", func(t *testing.T) {
		_, err := Generate(context.Background(), f.store, f.clock, f.logger, dinnerTemplate(), to, from)
		assert.True(t, db.IsValidation(err))
	})
}
