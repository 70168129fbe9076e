package signup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db/dbtest"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

const testShiftType = "shift-type-dinner"

// eventRecorder captures published notifications for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *eventRecorder) Publish(ctx context.Context, event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) byType(t notify.EventType) []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// fixture bundles the collaborators every signup test wires up.
type fixture struct {
	store  *dbtest.MemStore
	events *eventRecorder
	clock  *civiltime.Clock
	logger *zap.Logger
}

// newFixture freezes the clock at the given Auckland wall-clock time and
// seeds the shared shift type.
func newFixture(t *testing.T, year int, month time.Month, day, hour int) *fixture {
	t.Helper()

	loc, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)
	now := time.Date(year, month, day, hour, 0, 0, 0, loc)

	clock, err := civiltime.NewClockAt("Pacific/Auckland", now)
	require.NoError(t, err)

	f := &fixture{
		store:  dbtest.NewMemStore(),
		events: &eventRecorder{},
		clock:  clock,
		logger: zap.NewNop(),
	}
	require.NoError(t, f.store.CreateShiftType(context.Background(), &db.ShiftType{
		ID:   testShiftType,
		Name: "Dinner service",
	}))
	return f
}

func (f *fixture) seedUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.store.CreateUser(context.Background(), &db.User{
		ID:        id,
		Email:     id + "@example.org",
		Name:      id,
		CreatedAt: f.clock.Now(),
	}))
}

// seedShift creates a shift starting at the given Auckland wall-clock time.
func (f *fixture) seedShift(t *testing.T, id, location string, year int, month time.Month, day, hour, capacity int) *db.Shift {
	t.Helper()
	start := time.Date(year, month, day, hour, 0, 0, 0, f.clock.Location())
	shift := &db.Shift{
		ID:          id,
		ShiftTypeID: testShiftType,
		Location:    location,
		StartAt:     start,
		EndAt:       start.Add(3 * time.Hour),
		Capacity:    capacity,
	}
	require.NoError(t, f.store.CreateShift(context.Background(), shift))
	return shift
}

func (f *fixture) create(t *testing.T, params CreateParams) (*db.Signup, error) {
	t.Helper()
	return Create(context.Background(), f.store, f.events, f.clock, f.logger, params)
}

func (f *fixture) mustCreate(t *testing.T, params CreateParams) *db.Signup {
	t.Helper()
	s, err := f.create(t, params)
	require.NoError(t, err)
	return s
}

func (f *fixture) confirmedCount(t *testing.T, shiftID string) int {
	t.Helper()
	n, err := f.store.CountConfirmed(context.Background(), shiftID)
	require.NoError(t, err)
	return n
}
