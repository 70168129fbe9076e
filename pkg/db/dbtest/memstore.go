// Package dbtest provides an in-memory db.Store for service tests. It
// enforces the same uniqueness and guard rules as the PostgreSQL schema, so
// engine tests exercise conflict paths without a running database.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

type state struct {
	users         map[string]db.User
	friendships   map[string]db.Friendship
	shiftTypes    map[string]db.ShiftType
	shifts        map[string]db.Shift
	groupBookings map[string]db.GroupBooking
	signups       map[string]db.Signup
	achievements  map[string]db.Achievement
	unlocks       map[string]db.UserAchievement
	surveys       map[string]db.Survey
	assignments   map[string]db.SurveyAssignment
	tokens        map[string]db.SurveyToken
	responses     map[string]db.SurveyResponse
}

func newState() *state {
	return &state{
		users:         make(map[string]db.User),
		friendships:   make(map[string]db.Friendship),
		shiftTypes:    make(map[string]db.ShiftType),
		shifts:        make(map[string]db.Shift),
		groupBookings: make(map[string]db.GroupBooking),
		signups:       make(map[string]db.Signup),
		achievements:  make(map[string]db.Achievement),
		unlocks:       make(map[string]db.UserAchievement),
		surveys:       make(map[string]db.Survey),
		assignments:   make(map[string]db.SurveyAssignment),
		tokens:        make(map[string]db.SurveyToken),
		responses:     make(map[string]db.SurveyResponse),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.friendships {
		c.friendships[k] = v
	}
	for k, v := range s.shiftTypes {
		c.shiftTypes[k] = v
	}
	for k, v := range s.shifts {
		c.shifts[k] = v
	}
	for k, v := range s.groupBookings {
		c.groupBookings[k] = v
	}
	for k, v := range s.signups {
		c.signups[k] = v
	}
	for k, v := range s.achievements {
		c.achievements[k] = v
	}
	for k, v := range s.unlocks {
		c.unlocks[k] = v
	}
	for k, v := range s.surveys {
		c.surveys[k] = v
	}
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	for k, v := range s.responses {
		c.responses[k] = v
	}
	return c
}

// MemStore implements db.Store with maps behind one mutex. InTx holds the
// lock for the whole callback, which serialises transactions the way row
// locks do in PostgreSQL; a callback error rolls the state back.
type MemStore struct {
	mu   sync.Mutex
	st   *state
	inTx bool
}

var _ db.Store = (*MemStore)(nil)

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{st: newState()}
}

// lock takes the store mutex unless the receiver is transaction-scoped, in
// which case InTx already holds it.
func (m *MemStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// InTx runs fn with the store lock held. Returning an error restores the
// pre-transaction state.
func (m *MemStore) InTx(ctx context.Context, fn func(db.Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	tx := &MemStore{st: m.st, inTx: true}
	if err := fn(tx); err != nil {
		*m.st = *snapshot
		return err
	}
	return nil
}

func unlockKey(userID, achievementID string) string {
	return userID + "|" + achievementID
}

// --- users ---

func (m *MemStore) CreateUser(ctx context.Context, user *db.User) error {
	defer m.lock()()
	for _, u := range m.st.users {
		if u.Email == user.Email {
			return fmt.Errorf("email %s already registered: %w", user.Email, db.ErrConflict)
		}
	}
	m.st.users[user.ID] = *user
	return nil
}

func (m *MemStore) GetUser(ctx context.Context, id string) (*db.User, error) {
	defer m.lock()()
	u, ok := m.st.users[id]
	if !ok {
		return nil, &db.NotFoundError{Entity: "user", ID: id}
	}
	return &u, nil
}

func (m *MemStore) GetUserForUpdate(ctx context.Context, id string) (*db.User, error) {
	return m.GetUser(ctx, id)
}

func (m *MemStore) DeleteUser(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.st.users[id]; !ok {
		return &db.NotFoundError{Entity: "user", ID: id}
	}
	for sid, s := range m.st.signups {
		if s.UserID == id {
			delete(m.st.signups, sid)
		}
	}
	for fid, f := range m.st.friendships {
		if f.RequesterID == id || f.AddresseeID == id {
			delete(m.st.friendships, fid)
		}
	}
	for k, ua := range m.st.unlocks {
		if ua.UserID == id {
			delete(m.st.unlocks, k)
		}
	}
	for aid, a := range m.st.assignments {
		if a.UserID != id {
			continue
		}
		for tid, t := range m.st.tokens {
			if t.AssignmentID == aid {
				delete(m.st.tokens, tid)
			}
		}
		for rid, r := range m.st.responses {
			if r.AssignmentID == aid {
				delete(m.st.responses, rid)
			}
		}
		delete(m.st.assignments, aid)
	}
	for gid, g := range m.st.groupBookings {
		if g.LeaderID == id {
			m.detachGroupBooking(gid)
			delete(m.st.groupBookings, gid)
		}
	}
	delete(m.st.users, id)
	return nil
}

func (m *MemStore) CreateFriendship(ctx context.Context, friendship *db.Friendship) error {
	defer m.lock()()
	for _, f := range m.st.friendships {
		if f.RequesterID == friendship.RequesterID && f.AddresseeID == friendship.AddresseeID {
			return fmt.Errorf("friendship already exists: %w", db.ErrConflict)
		}
	}
	m.st.friendships[friendship.ID] = *friendship
	return nil
}

func (m *MemStore) CountAcceptedFriends(ctx context.Context, userID string) (int, error) {
	defer m.lock()()
	count := 0
	for _, f := range m.st.friendships {
		if f.Status == db.FriendshipAccepted && (f.RequesterID == userID || f.AddresseeID == userID) {
			count++
		}
	}
	return count, nil
}

// --- shifts ---

func (m *MemStore) CreateShiftType(ctx context.Context, st *db.ShiftType) error {
	defer m.lock()()
	for _, existing := range m.st.shiftTypes {
		if existing.Name == st.Name {
			return fmt.Errorf("shift type %q already exists: %w", st.Name, db.ErrConflict)
		}
	}
	m.st.shiftTypes[st.ID] = *st
	return nil
}

func (m *MemStore) GetShiftType(ctx context.Context, id string) (*db.ShiftType, error) {
	defer m.lock()()
	st, ok := m.st.shiftTypes[id]
	if !ok {
		return nil, &db.NotFoundError{Entity: "shift type", ID: id}
	}
	return &st, nil
}

func (m *MemStore) GetShiftTypeByName(ctx context.Context, name string) (*db.ShiftType, error) {
	defer m.lock()()
	for _, st := range m.st.shiftTypes {
		if st.Name == name {
			return &st, nil
		}
	}
	return nil, &db.NotFoundError{Entity: "shift type", ID: name}
}

func (m *MemStore) CreateShift(ctx context.Context, shift *db.Shift) error {
	defer m.lock()()
	m.st.shifts[shift.ID] = *shift
	return nil
}

func (m *MemStore) GetShift(ctx context.Context, id string) (*db.Shift, error) {
	defer m.lock()()
	s, ok := m.st.shifts[id]
	if !ok {
		return nil, &db.NotFoundError{Entity: "shift", ID: id}
	}
	return &s, nil
}

func (m *MemStore) GetShiftForUpdate(ctx context.Context, id string) (*db.Shift, error) {
	return m.GetShift(ctx, id)
}

func (m *MemStore) ListShiftsInRange(ctx context.Context, from, to time.Time, location string) ([]db.Shift, error) {
	defer m.lock()()
	var shifts []db.Shift
	for _, s := range m.st.shifts {
		if s.StartAt.Before(from) || !s.StartAt.Before(to) {
			continue
		}
		if location != "" && s.Location != location {
			continue
		}
		shifts = append(shifts, s)
	}
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].StartAt.Equal(shifts[j].StartAt) {
			return shifts[i].StartAt.Before(shifts[j].StartAt)
		}
		return shifts[i].Location < shifts[j].Location
	})
	return shifts, nil
}

func (m *MemStore) DeleteShifts(ctx context.Context, ids []string) (int64, error) {
	defer m.lock()()
	var deleted int64
	for _, id := range ids {
		if _, ok := m.st.shifts[id]; !ok {
			continue
		}
		for sid, s := range m.st.signups {
			if s.ShiftID == id {
				delete(m.st.signups, sid)
			}
		}
		for gid, g := range m.st.groupBookings {
			if g.ShiftID == id {
				m.detachGroupBooking(gid)
				delete(m.st.groupBookings, gid)
			}
		}
		delete(m.st.shifts, id)
		deleted++
	}
	return deleted, nil
}

// --- signups ---

func (m *MemStore) CreateSignup(ctx context.Context, signup *db.Signup) error {
	defer m.lock()()
	for _, s := range m.st.signups {
		if s.UserID == signup.UserID && s.ShiftID == signup.ShiftID && s.Status.Active() {
			return &db.DuplicateSignupError{UserID: signup.UserID, ShiftID: signup.ShiftID}
		}
	}
	m.st.signups[signup.ID] = *signup
	return nil
}

func (m *MemStore) GetSignup(ctx context.Context, id string) (*db.Signup, error) {
	defer m.lock()()
	s, ok := m.st.signups[id]
	if !ok {
		return nil, &db.NotFoundError{Entity: "signup", ID: id}
	}
	return &s, nil
}

func (m *MemStore) GetActiveSignup(ctx context.Context, userID, shiftID string) (*db.Signup, error) {
	defer m.lock()()
	for _, s := range m.st.signups {
		if s.UserID == userID && s.ShiftID == shiftID && s.Status.Active() {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (m *MemStore) UpdateSignup(ctx context.Context, signup *db.Signup) error {
	defer m.lock()()
	existing, ok := m.st.signups[signup.ID]
	if !ok {
		return &db.NotFoundError{Entity: "signup", ID: signup.ID}
	}
	if signup.Status.Active() {
		for id, s := range m.st.signups {
			if id != signup.ID && s.UserID == existing.UserID && s.ShiftID == signup.ShiftID && s.Status.Active() {
				return &db.DuplicateSignupError{UserID: existing.UserID, ShiftID: signup.ShiftID}
			}
		}
	}
	existing.ShiftID = signup.ShiftID
	existing.Status = signup.Status
	existing.MealsServed = signup.MealsServed
	existing.UpdatedAt = time.Now()
	m.st.signups[signup.ID] = existing
	return nil
}

func (m *MemStore) CountConfirmed(ctx context.Context, shiftID string) (int, error) {
	defer m.lock()()
	count := 0
	for _, s := range m.st.signups {
		if s.ShiftID == shiftID && s.Status == db.SignupConfirmed {
			count++
		}
	}
	return count, nil
}

func (m *MemStore) FindConfirmedInWindow(ctx context.Context, userID string, from, to time.Time, excludeSignupID string) (*db.SignupWithShift, error) {
	defer m.lock()()
	var found *db.SignupWithShift
	for _, s := range m.st.signups {
		if s.UserID != userID || s.Status != db.SignupConfirmed || s.ID == excludeSignupID {
			continue
		}
		shift, ok := m.st.shifts[s.ShiftID]
		if !ok || shift.StartAt.Before(from) || !shift.StartAt.Before(to) {
			continue
		}
		joined := m.joinShift(s)
		if found == nil || joined.ShiftStart.Before(found.ShiftStart) {
			found = &joined
		}
	}
	return found, nil
}

func (m *MemStore) ListActiveSignupsForShifts(ctx context.Context, shiftIDs []string) ([]db.SignupWithShift, error) {
	defer m.lock()()
	want := make(map[string]bool, len(shiftIDs))
	for _, id := range shiftIDs {
		want[id] = true
	}
	var joined []db.SignupWithShift
	for _, s := range m.st.signups {
		if want[s.ShiftID] && s.Status.Active() {
			joined = append(joined, m.joinShift(s))
		}
	}
	sort.Slice(joined, func(i, j int) bool {
		if !joined[i].ShiftStart.Equal(joined[j].ShiftStart) {
			return joined[i].ShiftStart.Before(joined[j].ShiftStart)
		}
		return joined[i].CreatedAt.Before(joined[j].CreatedAt)
	})
	return joined, nil
}

func (m *MemStore) ListWaitlisted(ctx context.Context, shiftID string) ([]db.Signup, error) {
	defer m.lock()()
	var signups []db.Signup
	for _, s := range m.st.signups {
		if s.ShiftID == shiftID && s.Status == db.SignupWaitlisted {
			signups = append(signups, s)
		}
	}
	sort.Slice(signups, func(i, j int) bool {
		if !signups[i].CreatedAt.Equal(signups[j].CreatedAt) {
			return signups[i].CreatedAt.Before(signups[j].CreatedAt)
		}
		return signups[i].ID < signups[j].ID
	})
	return signups, nil
}

func (m *MemStore) DeleteSignupsForShifts(ctx context.Context, shiftIDs []string) (int64, error) {
	defer m.lock()()
	want := make(map[string]bool, len(shiftIDs))
	for _, id := range shiftIDs {
		want[id] = true
	}
	var deleted int64
	for id, s := range m.st.signups {
		if want[s.ShiftID] {
			delete(m.st.signups, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemStore) MarkNoShows(ctx context.Context, endedBefore time.Time) (int64, error) {
	defer m.lock()()
	var changed int64
	for id, s := range m.st.signups {
		if s.Status != db.SignupConfirmed {
			continue
		}
		shift, ok := m.st.shifts[s.ShiftID]
		if !ok || !shift.EndAt.Before(endedBefore) {
			continue
		}
		s.Status = db.SignupNoShow
		s.UpdatedAt = time.Now()
		m.st.signups[id] = s
		changed++
	}
	return changed, nil
}

func (m *MemStore) ListCompletedSignups(ctx context.Context, userID string, before time.Time) ([]db.SignupWithShift, error) {
	defer m.lock()()
	var joined []db.SignupWithShift
	for _, s := range m.st.signups {
		if s.UserID != userID || s.Status != db.SignupConfirmed {
			continue
		}
		shift, ok := m.st.shifts[s.ShiftID]
		if !ok || !shift.EndAt.Before(before) {
			continue
		}
		joined = append(joined, m.joinShift(s))
	}
	sort.Slice(joined, func(i, j int) bool {
		return joined[i].ShiftStart.Before(joined[j].ShiftStart)
	})
	return joined, nil
}

// --- group bookings ---

func (m *MemStore) CreateGroupBooking(ctx context.Context, booking *db.GroupBooking) error {
	defer m.lock()()
	m.st.groupBookings[booking.ID] = *booking
	return nil
}

func (m *MemStore) DeleteGroupBookingsForShifts(ctx context.Context, shiftIDs []string) (int64, error) {
	defer m.lock()()
	want := make(map[string]bool, len(shiftIDs))
	for _, id := range shiftIDs {
		want[id] = true
	}
	var deleted int64
	for id, g := range m.st.groupBookings {
		if want[g.ShiftID] {
			m.detachGroupBooking(id)
			delete(m.st.groupBookings, id)
			deleted++
		}
	}
	return deleted, nil
}

// detachGroupBooking clears the booking reference from signups, mirroring
// the schema's ON DELETE SET NULL.
func (m *MemStore) detachGroupBooking(bookingID string) {
	for id, s := range m.st.signups {
		if s.GroupBookingID == bookingID {
			s.GroupBookingID = ""
			m.st.signups[id] = s
		}
	}
}

// --- achievements ---

func (m *MemStore) CreateAchievement(ctx context.Context, a *db.Achievement) error {
	defer m.lock()()
	m.st.achievements[a.ID] = *a
	return nil
}

func (m *MemStore) ListActiveAchievements(ctx context.Context) ([]db.Achievement, error) {
	defer m.lock()()
	var achievements []db.Achievement
	for _, a := range m.st.achievements {
		if a.IsActive {
			achievements = append(achievements, a)
		}
	}
	sort.Slice(achievements, func(i, j int) bool {
		return achievements[i].Name < achievements[j].Name
	})
	return achievements, nil
}

func (m *MemStore) ListUnlockedAchievementIDs(ctx context.Context, userID string) ([]string, error) {
	defer m.lock()()
	var ids []string
	for _, ua := range m.st.unlocks {
		if ua.UserID == userID {
			ids = append(ids, ua.AchievementID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemStore) InsertUserAchievement(ctx context.Context, ua *db.UserAchievement) (bool, error) {
	defer m.lock()()
	key := unlockKey(ua.UserID, ua.AchievementID)
	if _, ok := m.st.unlocks[key]; ok {
		return false, nil
	}
	m.st.unlocks[key] = *ua
	return true, nil
}

// --- surveys ---

func (m *MemStore) CreateSurvey(ctx context.Context, survey *db.Survey) error {
	defer m.lock()()
	m.st.surveys[survey.ID] = *survey
	return nil
}

func (m *MemStore) GetSurvey(ctx context.Context, id string) (*db.Survey, error) {
	defer m.lock()()
	s, ok := m.st.surveys[id]
	if !ok {
		return nil, &db.NotFoundError{Entity: "survey", ID: id}
	}
	return &s, nil
}

func (m *MemStore) ListActiveTriggerSurveys(ctx context.Context) ([]db.Survey, error) {
	defer m.lock()()
	var surveys []db.Survey
	for _, s := range m.st.surveys {
		if s.IsActive && s.TriggerType != "" {
			surveys = append(surveys, s)
		}
	}
	sort.Slice(surveys, func(i, j int) bool {
		return surveys[i].Title < surveys[j].Title
	})
	return surveys, nil
}

func (m *MemStore) HasLiveAssignment(ctx context.Context, surveyID, userID string) (bool, error) {
	defer m.lock()()
	return m.hasLiveAssignmentLocked(surveyID, userID), nil
}

func (m *MemStore) hasLiveAssignmentLocked(surveyID, userID string) bool {
	for _, a := range m.st.assignments {
		if a.SurveyID == surveyID && a.UserID == userID && a.Status.Live() {
			return true
		}
	}
	return false
}

func (m *MemStore) CreateAssignment(ctx context.Context, a *db.SurveyAssignment) (bool, error) {
	defer m.lock()()
	if m.hasLiveAssignmentLocked(a.SurveyID, a.UserID) {
		return false, nil
	}
	m.st.assignments[a.ID] = *a
	return true, nil
}

func (m *MemStore) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status db.AssignmentStatus) error {
	defer m.lock()()
	a, ok := m.st.assignments[assignmentID]
	if !ok {
		return &db.NotFoundError{Entity: "survey assignment", ID: assignmentID}
	}
	a.Status = status
	m.st.assignments[assignmentID] = a
	return nil
}

func (m *MemStore) CreateSurveyToken(ctx context.Context, token *db.SurveyToken) error {
	defer m.lock()()
	for _, t := range m.st.tokens {
		if t.Token == token.Token {
			return fmt.Errorf("token value collision: %w", db.ErrConflict)
		}
		if t.AssignmentID == token.AssignmentID {
			return fmt.Errorf("assignment %s already has a token: %w", token.AssignmentID, db.ErrConflict)
		}
	}
	m.st.tokens[token.ID] = *token
	return nil
}

// TokenForAssignment returns the token issued for an assignment, or nil.
// Inspection helper for engine tests; not part of db.Store.
func (m *MemStore) TokenForAssignment(assignmentID string) *db.SurveyToken {
	defer m.lock()()
	for _, t := range m.st.tokens {
		if t.AssignmentID == assignmentID {
			return &t
		}
	}
	return nil
}

// ResponseForAssignment returns the response recorded for an assignment, or
// nil. Inspection helper for engine tests; not part of db.Store.
func (m *MemStore) ResponseForAssignment(assignmentID string) *db.SurveyResponse {
	defer m.lock()()
	for _, r := range m.st.responses {
		if r.AssignmentID == assignmentID {
			return &r
		}
	}
	return nil
}

// AssignmentByID returns a stored assignment, or nil. Inspection helper for
// engine tests; not part of db.Store.
func (m *MemStore) AssignmentByID(id string) *db.SurveyAssignment {
	defer m.lock()()
	a, ok := m.st.assignments[id]
	if !ok {
		return nil
	}
	return &a
}

func (m *MemStore) GetTokenBundle(ctx context.Context, token string) (*db.TokenBundle, error) {
	defer m.lock()()
	for _, t := range m.st.tokens {
		if t.Token != token {
			continue
		}
		assignment, ok := m.st.assignments[t.AssignmentID]
		if !ok {
			return nil, &db.NotFoundError{Entity: "survey assignment", ID: t.AssignmentID}
		}
		survey, ok := m.st.surveys[assignment.SurveyID]
		if !ok {
			return nil, &db.NotFoundError{Entity: "survey", ID: assignment.SurveyID}
		}
		user, ok := m.st.users[assignment.UserID]
		if !ok {
			return nil, &db.NotFoundError{Entity: "user", ID: assignment.UserID}
		}
		return &db.TokenBundle{Token: t, Assignment: assignment, Survey: survey, User: user}, nil
	}
	return nil, &db.NotFoundError{Entity: "survey token"}
}

func (m *MemStore) ConsumeToken(ctx context.Context, tokenID string, now time.Time) error {
	defer m.lock()()
	t, ok := m.st.tokens[tokenID]
	if !ok {
		return &db.NotFoundError{Entity: "survey token", ID: tokenID}
	}
	if t.UsedAt != nil {
		return fmt.Errorf("survey token already used at %s: %w", t.UsedAt.UTC().Format(time.RFC3339), db.ErrConflict)
	}
	if !t.ExpiresAt.After(now) {
		return &db.ExpiredError{Entity: "survey token", ExpiredAt: t.ExpiresAt}
	}
	usedAt := now
	t.UsedAt = &usedAt
	m.st.tokens[tokenID] = t
	return nil
}

func (m *MemStore) CreateSurveyResponse(ctx context.Context, response *db.SurveyResponse) error {
	defer m.lock()()
	for _, r := range m.st.responses {
		if r.AssignmentID == response.AssignmentID {
			return fmt.Errorf("assignment %s already has a response: %w", response.AssignmentID, db.ErrConflict)
		}
	}
	m.st.responses[response.ID] = *response
	return nil
}

func (m *MemStore) ExpireLapsedAssignments(ctx context.Context, now time.Time) (int64, error) {
	defer m.lock()()
	var changed int64
	for _, t := range m.st.tokens {
		if t.UsedAt != nil || t.ExpiresAt.After(now) {
			continue
		}
		a, ok := m.st.assignments[t.AssignmentID]
		if !ok || (a.Status != db.AssignmentPending && a.Status != db.AssignmentDismissed) {
			continue
		}
		a.Status = db.AssignmentExpired
		m.st.assignments[a.ID] = a
		changed++
	}
	return changed, nil
}

func (m *MemStore) ListVolunteerActivity(ctx context.Context, before time.Time) ([]db.VolunteerActivity, error) {
	defer m.lock()()
	byUser := make(map[string]*db.VolunteerActivity)
	for _, s := range m.st.signups {
		if s.Status != db.SignupConfirmed {
			continue
		}
		shift, ok := m.st.shifts[s.ShiftID]
		if !ok || !shift.EndAt.Before(before) {
			continue
		}
		a := byUser[s.UserID]
		if a == nil {
			a = &db.VolunteerActivity{UserID: s.UserID}
			byUser[s.UserID] = a
		}
		a.CompletedShifts++
		a.CompletedHours += shift.EndAt.Sub(shift.StartAt).Hours()
	}
	var activity []db.VolunteerActivity
	for _, a := range byUser {
		activity = append(activity, *a)
	}
	sort.Slice(activity, func(i, j int) bool {
		return activity[i].UserID < activity[j].UserID
	})
	return activity, nil
}

func (m *MemStore) ListUsersWithLiveAssignment(ctx context.Context, surveyID string) ([]string, error) {
	defer m.lock()()
	var ids []string
	for _, a := range m.st.assignments {
		if a.SurveyID == surveyID && a.Status.Live() {
			ids = append(ids, a.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemStore) joinShift(s db.Signup) db.SignupWithShift {
	joined := db.SignupWithShift{Signup: s}
	shift, ok := m.st.shifts[s.ShiftID]
	if !ok {
		return joined
	}
	joined.ShiftStart = shift.StartAt
	joined.ShiftEnd = shift.EndAt
	joined.ShiftLocation = shift.Location
	joined.ShiftTypeID = shift.ShiftTypeID
	if st, ok := m.st.shiftTypes[shift.ShiftTypeID]; ok {
		joined.ShiftTypeName = st.Name
	}
	return joined
}
