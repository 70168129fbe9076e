// Package achievement recomputes unlock state from volunteer history.
// Checks are idempotent: unlock rows are inserted conflict-guarded, so a
// check can run on every signup, login, or dashboard load without
// double-awarding.
package achievement

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// Metrics is the volunteer history snapshot criteria evaluate against. It is
// rebuilt from the store on every check; nothing is cached between calls.
type Metrics struct {
	CompletedShifts   int
	CompletedHours    float64
	ConsecutiveMonths int
	CompletedByType   map[string]int
	FirstShiftEnd     time.Time
	EstimatedMeals    int
	AcceptedFriends   int
	Now               time.Time
}

// Criterion is one achievement requirement. Each criteria kind is its own
// type; ParseCriterion rejects kinds it does not know rather than skipping
// them silently.
type Criterion interface {
	// Met reports whether the volunteer's history satisfies the criterion.
	Met(m Metrics) bool
	// Progress is the metric value snapshotted onto the unlock row.
	Progress(m Metrics) int
}

// ShiftsCompleted requires at least Value completed confirmed signups.
type ShiftsCompleted struct {
	Value int
}

func (c ShiftsCompleted) Met(m Metrics) bool     { return m.CompletedShifts >= c.Value }
func (c ShiftsCompleted) Progress(m Metrics) int { return m.CompletedShifts }

// HoursVolunteered requires at least Value hours across completed shifts.
type HoursVolunteered struct {
	Value float64
}

func (c HoursVolunteered) Met(m Metrics) bool     { return m.CompletedHours >= c.Value }
func (c HoursVolunteered) Progress(m Metrics) int { return int(m.CompletedHours) }

// ConsecutiveMonths requires a run of at least Value consecutive calendar
// months each containing a completed shift.
type ConsecutiveMonths struct {
	Value int
}

func (c ConsecutiveMonths) Met(m Metrics) bool     { return m.ConsecutiveMonths >= c.Value }
func (c ConsecutiveMonths) Progress(m Metrics) int { return m.ConsecutiveMonths }

// SpecificShiftType requires at least Value completed shifts of one named
// shift type.
type SpecificShiftType struct {
	Value     int
	ShiftType string
}

func (c SpecificShiftType) Met(m Metrics) bool     { return m.CompletedByType[c.ShiftType] >= c.Value }
func (c SpecificShiftType) Progress(m Metrics) int { return m.CompletedByType[c.ShiftType] }

// YearsVolunteering requires at least Value years since the volunteer's
// first completed shift.
type YearsVolunteering struct {
	Value int
}

func (c YearsVolunteering) Met(m Metrics) bool {
	if m.FirstShiftEnd.IsZero() {
		return false
	}
	return !m.FirstShiftEnd.AddDate(c.Value, 0, 0).After(m.Now)
}

func (c YearsVolunteering) Progress(m Metrics) int {
	if m.FirstShiftEnd.IsZero() {
		return 0
	}
	years := 0
	for !m.FirstShiftEnd.AddDate(years+1, 0, 0).After(m.Now) {
		years++
	}
	return years
}

// CommunityImpact requires an estimated meals-served total of at least
// Value. Shifts with recorded actuals use them; the rest use the per-shift
// estimate.
type CommunityImpact struct {
	Value int
}

func (c CommunityImpact) Met(m Metrics) bool     { return m.EstimatedMeals >= c.Value }
func (c CommunityImpact) Progress(m Metrics) int { return m.EstimatedMeals }

// FriendsCount requires at least Value accepted friendships.
type FriendsCount struct {
	Value int
}

func (c FriendsCount) Met(m Metrics) bool     { return m.AcceptedFriends >= c.Value }
func (c FriendsCount) Progress(m Metrics) int { return m.AcceptedFriends }

// ParseCriterion decodes an achievement's criteria document into its typed
// kind. Unknown kinds and malformed documents fail with a ValidationError;
// the caller decides whether that skips or aborts.
func ParseCriterion(raw json.RawMessage) (Criterion, error) {
	var head struct {
		Type      string   `json:"type"`
		Value     *float64 `json:"value"`
		ShiftType string   `json:"shiftType"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, &db.ValidationError{Field: "criteria", Reason: fmt.Sprintf("malformed criteria document: %v", err)}
	}
	if head.Value == nil {
		return nil, &db.ValidationError{Field: "criteria", Reason: "criteria document has no value"}
	}
	if *head.Value < 0 {
		return nil, &db.ValidationError{Field: "criteria", Reason: "criteria value must not be negative"}
	}
	value := *head.Value

	switch head.Type {
	case "shifts_completed":
		return ShiftsCompleted{Value: int(value)}, nil
	case "hours_volunteered":
		return HoursVolunteered{Value: value}, nil
	case "consecutive_months":
		return ConsecutiveMonths{Value: int(value)}, nil
	case "specific_shift_type":
		if head.ShiftType == "" {
			return nil, &db.ValidationError{Field: "criteria", Reason: "specific_shift_type criteria needs a shiftType"}
		}
		return SpecificShiftType{Value: int(value), ShiftType: head.ShiftType}, nil
	case "years_volunteering":
		return YearsVolunteering{Value: int(value)}, nil
	case "community_impact":
		return CommunityImpact{Value: int(value)}, nil
	case "friends_count":
		return FriendsCount{Value: int(value)}, nil
	default:
		return nil, &db.ValidationError{Field: "criteria", Reason: fmt.Sprintf("unknown criteria type %q", head.Type)}
	}
}
