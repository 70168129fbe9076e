package db

import (
	"encoding/json"
	"time"
)

// SignupStatus is the lifecycle state of a signup. Only CONFIRMED counts
// toward shift capacity.
type SignupStatus string

const (
	SignupPending        SignupStatus = "PENDING"
	SignupConfirmed      SignupStatus = "CONFIRMED"
	SignupWaitlisted     SignupStatus = "WAITLISTED"
	SignupRegularPending SignupStatus = "REGULAR_PENDING"
	SignupNoShow         SignupStatus = "NO_SHOW"
	SignupCanceled       SignupStatus = "CANCELED"
)

// Active reports whether the signup still occupies the (user, shift) pair.
func (s SignupStatus) Active() bool {
	return s != SignupCanceled
}

// AssignmentStatus is the lifecycle state of a survey assignment.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "PENDING"
	AssignmentDismissed AssignmentStatus = "DISMISSED"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
	AssignmentExpired   AssignmentStatus = "EXPIRED"
)

// Live reports whether the assignment blocks re-assigning the same survey to
// the same user. Dismissed assignments stay live: the survey remains
// reachable through its token.
func (s AssignmentStatus) Live() bool {
	return s != AssignmentExpired
}

// TriggerType selects the volunteer metric a survey's trigger threshold is
// compared against.
type TriggerType string

const (
	TriggerShiftsCompleted  TriggerType = "SHIFTS_COMPLETED"
	TriggerHoursVolunteered TriggerType = "HOURS_VOLUNTEERED"
	TriggerFirstShift       TriggerType = "FIRST_SHIFT"
)

// FriendshipStatus is the state of a friend referral.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
	FriendshipDeclined FriendshipStatus = "DECLINED"
)

// User is a volunteer account.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Friendship is a referral between two volunteers. Only ACCEPTED rows count
// toward the friends-count achievement criterion.
type Friendship struct {
	ID          string
	RequesterID string
	AddresseeID string
	Status      FriendshipStatus
	CreatedAt   time.Time
}

// ShiftType categorises shifts (kitchen prep, front of house, dishwash).
type ShiftType struct {
	ID          string
	Name        string
	Description string
}

// Shift is a staffed time window [StartAt, EndAt) at one location.
type Shift struct {
	ID          string
	ShiftTypeID string
	Location    string
	StartAt     time.Time
	EndAt       time.Time
	Capacity    int
}

// Signup links a user to a shift. GroupBookingID is empty for individual
// signups. MealsServed records actuals where the shift lead counted them.
type Signup struct {
	ID             string
	UserID         string
	ShiftID        string
	GroupBookingID string
	Status         SignupStatus
	MealsServed    *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GroupBooking is a block of signups one leader created on a single shift.
type GroupBooking struct {
	ID        string
	ShiftID   string
	LeaderID  string
	Name      string
	CreatedAt time.Time
}

// Achievement is an admin-managed unlock template. Criteria is a typed JSON
// document decoded by the achievement engine.
type Achievement struct {
	ID       string
	Name     string
	Category string
	Criteria json.RawMessage
	Points   int
	IsActive bool
}

// UserAchievement records that a user unlocked an achievement. Rows are
// immutable once created.
type UserAchievement struct {
	UserID        string
	AchievementID string
	UnlockedAt    time.Time
	Progress      int
}

// Survey is an admin-authored questionnaire. Questions is an ordered typed
// JSON document decoded by the survey engine. TriggerType is empty for
// surveys that are only assigned manually.
type Survey struct {
	ID              string
	Title           string
	Description     string
	Questions       json.RawMessage
	TriggerType     TriggerType
	TriggerValue    int
	TriggerMaxValue *int
	IsActive        bool
}

// SurveyAssignment links a survey to a user. At most one live (non-expired)
// assignment exists per (survey, user) pair.
type SurveyAssignment struct {
	ID        string
	SurveyID  string
	UserID    string
	Status    AssignmentStatus
	CreatedAt time.Time
}

// SurveyToken is the single-use credential granting access to one assignment
// without a login.
type SurveyToken struct {
	ID           string
	AssignmentID string
	Token        string
	ExpiresAt    time.Time
	UsedAt       *time.Time
	CreatedAt    time.Time
}

// SurveyResponse is the submitted answer set for a completed assignment.
type SurveyResponse struct {
	ID           string
	AssignmentID string
	Answers      json.RawMessage
	SubmittedAt  time.Time
}

// SignupWithShift joins a signup to the fields of its shift that history and
// collision queries need.
type SignupWithShift struct {
	Signup
	ShiftStart    time.Time
	ShiftEnd      time.Time
	ShiftLocation string
	ShiftTypeID   string
	ShiftTypeName string
}

// VolunteerActivity is the aggregate completed-shift history of one user,
// used for bulk survey eligibility sweeps.
type VolunteerActivity struct {
	UserID          string
	CompletedShifts int
	CompletedHours  float64
}

// TokenBundle is a survey token joined to its assignment, survey, and user.
type TokenBundle struct {
	Token      SurveyToken
	Assignment SurveyAssignment
	Survey     Survey
	User       User
}
