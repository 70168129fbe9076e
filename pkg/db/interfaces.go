package db

import (
	"context"
	"time"
)

// Store is the persistence gateway the engines run against. The postgres
// package provides the production implementation; dbtest provides an
// in-memory one for service tests.
//
// Transactional contract: InTx runs fn against a store scoped to one
// database transaction and commits iff fn returns nil. Locking reads
// (GetShiftForUpdate) and conflict-guarded inserts only make their
// guarantees inside InTx. Calling InTx on an already tx-scoped store joins
// the surrounding transaction.
type Store interface {
	InTx(ctx context.Context, fn func(Store) error) error

	UserStore
	ShiftStore
	SignupStore
	GroupBookingStore
	AchievementStore
	SurveyStore
}

// UserStore covers volunteer accounts and their friendship graph.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	// GetUserForUpdate locks the user row for the rest of the transaction.
	// Engines take this lock before the shift lock, always in that order, so
	// same-user races (the one-confirmed-shift-per-day rule) serialise
	// without deadlocking against each other.
	GetUserForUpdate(ctx context.Context, id string) (*User, error)
	// DeleteUser removes the user and everything hanging off it (signups,
	// unlocks, survey assignments with their tokens and responses,
	// friendships).
	DeleteUser(ctx context.Context, id string) error
	CreateFriendship(ctx context.Context, friendship *Friendship) error
	CountAcceptedFriends(ctx context.Context, userID string) (int, error)
}

// ShiftStore covers shift types and shifts.
type ShiftStore interface {
	CreateShiftType(ctx context.Context, st *ShiftType) error
	GetShiftType(ctx context.Context, id string) (*ShiftType, error)
	GetShiftTypeByName(ctx context.Context, name string) (*ShiftType, error)
	CreateShift(ctx context.Context, shift *Shift) error
	GetShift(ctx context.Context, id string) (*Shift, error)
	// GetShiftForUpdate locks the shift row for the rest of the transaction,
	// serialising capacity checks against concurrent signups.
	GetShiftForUpdate(ctx context.Context, id string) (*Shift, error)
	// ListShiftsInRange returns shifts with StartAt in [from, to), optionally
	// restricted to one location (empty string means all locations).
	ListShiftsInRange(ctx context.Context, from, to time.Time, location string) ([]Shift, error)
	DeleteShifts(ctx context.Context, ids []string) (int64, error)
}

// SignupStore covers signup rows and the queries the capacity and
// daily-uniqueness invariants are built on.
type SignupStore interface {
	// CreateSignup inserts the signup. A unique-index violation on the active
	// (user, shift) pair comes back as a DuplicateSignupError.
	CreateSignup(ctx context.Context, signup *Signup) error
	GetSignup(ctx context.Context, id string) (*Signup, error)
	// GetActiveSignup returns the user's non-canceled signup on the shift, or
	// nil when there is none.
	GetActiveSignup(ctx context.Context, userID, shiftID string) (*Signup, error)
	UpdateSignup(ctx context.Context, signup *Signup) error
	CountConfirmed(ctx context.Context, shiftID string) (int, error)
	// FindConfirmedInWindow returns one confirmed signup of the user whose
	// shift starts in [from, to), skipping excludeSignupID (pass "" to skip
	// nothing). Returns nil when the window is clear.
	FindConfirmedInWindow(ctx context.Context, userID string, from, to time.Time, excludeSignupID string) (*SignupWithShift, error)
	ListActiveSignupsForShifts(ctx context.Context, shiftIDs []string) ([]SignupWithShift, error)
	// ListWaitlisted returns a shift's waitlist, oldest signup first.
	ListWaitlisted(ctx context.Context, shiftID string) ([]Signup, error)
	DeleteSignupsForShifts(ctx context.Context, shiftIDs []string) (int64, error)
	// MarkNoShows flips CONFIRMED signups on shifts that ended before the
	// cutoff to NO_SHOW and reports how many rows changed.
	MarkNoShows(ctx context.Context, endedBefore time.Time) (int64, error)
	// ListCompletedSignups returns the user's CONFIRMED signups whose shift
	// ended before the given instant, joined to shift fields.
	ListCompletedSignups(ctx context.Context, userID string, before time.Time) ([]SignupWithShift, error)
}

// GroupBookingStore covers capacity blocks booked by one leader.
type GroupBookingStore interface {
	CreateGroupBooking(ctx context.Context, booking *GroupBooking) error
	DeleteGroupBookingsForShifts(ctx context.Context, shiftIDs []string) (int64, error)
}

// AchievementStore covers achievement templates and unlock records.
type AchievementStore interface {
	CreateAchievement(ctx context.Context, a *Achievement) error
	ListActiveAchievements(ctx context.Context) ([]Achievement, error)
	ListUnlockedAchievementIDs(ctx context.Context, userID string) ([]string, error)
	// InsertUserAchievement records an unlock. It is an upsert-or-ignore:
	// the bool reports whether a row was actually inserted, so concurrent
	// unlock checks never double-insert and only the winner reports the delta.
	InsertUserAchievement(ctx context.Context, ua *UserAchievement) (bool, error)
}

// SurveyStore covers surveys, assignments, tokens, and responses.
type SurveyStore interface {
	CreateSurvey(ctx context.Context, survey *Survey) error
	GetSurvey(ctx context.Context, id string) (*Survey, error)
	ListActiveTriggerSurveys(ctx context.Context) ([]Survey, error)
	HasLiveAssignment(ctx context.Context, surveyID, userID string) (bool, error)
	// CreateAssignment inserts the assignment unless a live one already exists
	// for the (survey, user) pair; the bool reports whether a row was inserted.
	CreateAssignment(ctx context.Context, a *SurveyAssignment) (bool, error)
	UpdateAssignmentStatus(ctx context.Context, assignmentID string, status AssignmentStatus) error
	CreateSurveyToken(ctx context.Context, token *SurveyToken) error
	GetTokenBundle(ctx context.Context, token string) (*TokenBundle, error)
	// ConsumeToken marks the token used iff it is still unused and unexpired
	// at the given instant; otherwise it fails with a Conflict or Expired kind.
	ConsumeToken(ctx context.Context, tokenID string, now time.Time) error
	CreateSurveyResponse(ctx context.Context, response *SurveyResponse) error
	// ExpireLapsedAssignments flips live assignments whose token expiry has
	// passed to EXPIRED and reports how many rows changed.
	ExpireLapsedAssignments(ctx context.Context, now time.Time) (int64, error)
	ListVolunteerActivity(ctx context.Context, before time.Time) ([]VolunteerActivity, error)
	ListUsersWithLiveAssignment(ctx context.Context, surveyID string) ([]string, error)
}
