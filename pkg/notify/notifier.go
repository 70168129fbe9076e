// Package notify carries domain events from the engines to connected
// clients. Engines publish after their transaction commits; publishing is
// fire-and-forget and never blocks the caller.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EventType names the domain event a notification carries.
type EventType string

const (
	EventSignupCreated       EventType = "SIGNUP_CREATED"
	EventSignupMoved         EventType = "SIGNUP_MOVED"
	EventSignupCanceled      EventType = "SIGNUP_CANCELED"
	EventWaitlistPromoted    EventType = "WAITLIST_PROMOTED"
	EventShiftDeleted        EventType = "SHIFT_DELETED"
	EventAchievementUnlocked EventType = "ACHIEVEMENT_UNLOCKED"
	EventSurveyAssigned      EventType = "SURVEY_ASSIGNED"
)

// Event is one notification. UserID is the recipient; an empty UserID
// broadcasts to every connection. SubjectID points at the signup,
// achievement, or assignment the event is about.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	ShiftID   string    `json:"shiftId,omitempty"`
	SubjectID string    `json:"subjectId,omitempty"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// Notifier delivers events. Implementations must not block: a slow or absent
// consumer never holds up the engine that published.
type Notifier interface {
	Publish(ctx context.Context, event Event)
}

// Fanout publishes each event to every wrapped notifier in order.
type Fanout []Notifier

func (f Fanout) Publish(ctx context.Context, event Event) {
	for _, n := range f {
		n.Publish(ctx, event)
	}
}

// LogNotifier writes events to the application log. It backs headless runs
// (CLI commands, sweeps) where no client is connected.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l *LogNotifier) Publish(ctx context.Context, event Event) {
	l.Logger.Info("notification",
		zap.String("type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.String("shift_id", event.ShiftID),
		zap.String("subject_id", event.SubjectID),
		zap.String("message", event.Message),
	)
}
