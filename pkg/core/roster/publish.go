package roster

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// PublicationEntry is one shift prepared for publishing, with its staffing
// level at build time.
type PublicationEntry struct {
	ShiftID   string
	ShiftType string
	Location  string
	Start     time.Time
	End       time.Time
	Confirmed int
	Capacity  int
}

// Publication is a window of shifts ready to publish, ordered by start time.
type Publication struct {
	Entries []PublicationEntry
}

// BuildPublication collects the shifts starting between the civil days of
// from and to (inclusive) at the given location, joined with their shift
// type names and confirmed headcounts. Location may be empty to cover all
// locations.
func BuildPublication(ctx context.Context, store db.Store, clock *civiltime.Clock, logger *zap.Logger, from, to time.Time, location string) (*Publication, error) {
	if to.Before(from) {
		return nil, &db.ValidationError{Field: "window", Reason: "to is before from"}
	}

	windowStart := clock.DayStart(from)
	windowEnd := clock.DayStart(to).AddDate(0, 0, 1)

	shifts, err := store.ListShiftsInRange(ctx, windowStart, windowEnd, location)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return &Publication{}, nil
	}

	shiftIDs := make([]string, len(shifts))
	for i, s := range shifts {
		shiftIDs[i] = s.ID
	}
	signups, err := store.ListActiveSignupsForShifts(ctx, shiftIDs)
	if err != nil {
		return nil, err
	}
	confirmed := make(map[string]int)
	for _, s := range signups {
		if s.Status == db.SignupConfirmed {
			confirmed[s.ShiftID]++
		}
	}

	typeNames := make(map[string]string)
	entries := make([]PublicationEntry, 0, len(shifts))
	for _, s := range shifts {
		name, ok := typeNames[s.ShiftTypeID]
		if !ok {
			st, err := store.GetShiftType(ctx, s.ShiftTypeID)
			if err != nil {
				return nil, err
			}
			name = st.Name
			typeNames[s.ShiftTypeID] = name
		}
		entries = append(entries, PublicationEntry{
			ShiftID:   s.ID,
			ShiftType: name,
			Location:  s.Location,
			Start:     s.StartAt,
			End:       s.EndAt,
			Confirmed: confirmed[s.ID],
			Capacity:  s.Capacity,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

	logger.Info("Built roster publication",
		zap.Int("shifts", len(entries)),
		zap.String("location", location))

	return &Publication{Entries: entries}, nil
}
