package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

const surveyColumns = `id, title, description, questions, trigger_type, trigger_value, trigger_max_value, is_active`

// CreateSurvey inserts a survey record. An empty trigger type is stored as
// NULL so trigger sweeps never pick the survey up.
func (d *DB) CreateSurvey(ctx context.Context, survey *db.Survey) error {
	var triggerType *db.TriggerType
	if survey.TriggerType != "" {
		triggerType = &survey.TriggerType
	}

	_, err := d.q.Exec(ctx, `
		INSERT INTO surveys (id, title, description, questions, trigger_type, trigger_value, trigger_max_value, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, survey.ID, survey.Title, survey.Description, survey.Questions, triggerType, survey.TriggerValue, survey.TriggerMaxValue, survey.IsActive)
	if err != nil {
		return fmt.Errorf("failed to insert survey: %w", err)
	}
	return nil
}

// GetSurvey retrieves a survey by id
func (d *DB) GetSurvey(ctx context.Context, id string) (*db.Survey, error) {
	row := d.q.QueryRow(ctx, `
		SELECT `+surveyColumns+`
		FROM surveys
		WHERE id = $1
	`, id)
	survey, err := scanSurvey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &db.NotFoundError{Entity: "survey", ID: id}
		}
		return nil, fmt.Errorf("failed to query survey: %w", err)
	}
	return survey, nil
}

// ListActiveTriggerSurveys retrieves active surveys that carry a trigger
func (d *DB) ListActiveTriggerSurveys(ctx context.Context) ([]db.Survey, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+surveyColumns+`
		FROM surveys
		WHERE is_active AND trigger_type IS NOT NULL
		ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trigger surveys: %w", err)
	}
	defer rows.Close()

	var surveys []db.Survey
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, *survey)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trigger surveys: %w", err)
	}

	return surveys, nil
}

// HasLiveAssignment reports whether a live assignment exists for the
// (survey, user) pair.
func (d *DB) HasLiveAssignment(ctx context.Context, surveyID, userID string) (bool, error) {
	var exists bool
	err := d.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM survey_assignments
			WHERE survey_id = $1 AND user_id = $2 AND status <> 'EXPIRED'
		)
	`, surveyID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query live assignment: %w", err)
	}
	return exists, nil
}

// CreateAssignment inserts an assignment unless a live one already exists
// for the (survey, user) pair. The insert is conflict-guarded on the live
// partial index; the bool reports whether this call actually inserted the
// row.
func (d *DB) CreateAssignment(ctx context.Context, a *db.SurveyAssignment) (bool, error) {
	tag, err := d.q.Exec(ctx, `
		INSERT INTO survey_assignments (id, survey_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (survey_id, user_id) WHERE status <> 'EXPIRED' DO NOTHING
	`, a.ID, a.SurveyID, a.UserID, a.Status, a.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert survey assignment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateAssignmentStatus writes an assignment's status
func (d *DB) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status db.AssignmentStatus) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE survey_assignments SET status = $2 WHERE id = $1
	`, assignmentID, status)
	if err != nil {
		return fmt.Errorf("failed to update assignment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &db.NotFoundError{Entity: "survey assignment", ID: assignmentID}
	}
	return nil
}

// CreateSurveyToken inserts a token record
func (d *DB) CreateSurveyToken(ctx context.Context, token *db.SurveyToken) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO survey_tokens (id, assignment_id, token, expires_at, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, token.ID, token.AssignmentID, token.Token, token.ExpiresAt, token.UsedAt, token.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "survey_tokens_token_key") {
			return fmt.Errorf("token value collision: %w", db.ErrConflict)
		}
		return fmt.Errorf("failed to insert survey token: %w", err)
	}
	return nil
}

// GetTokenBundle retrieves a token by its opaque value, joined to its
// assignment, survey, and user.
func (d *DB) GetTokenBundle(ctx context.Context, token string) (*db.TokenBundle, error) {
	var b db.TokenBundle
	var triggerType *db.TriggerType
	err := d.q.QueryRow(ctx, `
		SELECT t.id, t.assignment_id, t.token, t.expires_at, t.used_at, t.created_at,
		       a.id, a.survey_id, a.user_id, a.status, a.created_at,
		       sv.id, sv.title, sv.description, sv.questions, sv.trigger_type, sv.trigger_value, sv.trigger_max_value, sv.is_active,
		       u.id, u.email, u.name, u.created_at
		FROM survey_tokens t
		JOIN survey_assignments a ON a.id = t.assignment_id
		JOIN surveys sv ON sv.id = a.survey_id
		JOIN users u ON u.id = a.user_id
		WHERE t.token = $1
	`, token).Scan(
		&b.Token.ID, &b.Token.AssignmentID, &b.Token.Token, &b.Token.ExpiresAt, &b.Token.UsedAt, &b.Token.CreatedAt,
		&b.Assignment.ID, &b.Assignment.SurveyID, &b.Assignment.UserID, &b.Assignment.Status, &b.Assignment.CreatedAt,
		&b.Survey.ID, &b.Survey.Title, &b.Survey.Description, &b.Survey.Questions, &triggerType, &b.Survey.TriggerValue, &b.Survey.TriggerMaxValue, &b.Survey.IsActive,
		&b.User.ID, &b.User.Email, &b.User.Name, &b.User.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &db.NotFoundError{Entity: "survey token"}
		}
		return nil, fmt.Errorf("failed to query survey token: %w", err)
	}
	if triggerType != nil {
		b.Survey.TriggerType = *triggerType
	}
	return &b, nil
}

// ConsumeToken marks the token used iff it is still unused and unexpired at
// the given instant. The guarded update makes concurrent submissions race
// safely: exactly one caller wins.
func (d *DB) ConsumeToken(ctx context.Context, tokenID string, now time.Time) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE survey_tokens SET used_at = $2
		WHERE id = $1 AND used_at IS NULL AND expires_at > $2
	`, tokenID, now)
	if err != nil {
		return fmt.Errorf("failed to consume survey token: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The guard failed; look at the row to say why.
	var usedAt *time.Time
	var expiresAt time.Time
	err = d.q.QueryRow(ctx, `
		SELECT used_at, expires_at FROM survey_tokens WHERE id = $1
	`, tokenID).Scan(&usedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &db.NotFoundError{Entity: "survey token", ID: tokenID}
		}
		return fmt.Errorf("failed to query survey token state: %w", err)
	}
	if usedAt != nil {
		return fmt.Errorf("survey token already used at %s: %w", usedAt.UTC().Format(time.RFC3339), db.ErrConflict)
	}
	return &db.ExpiredError{Entity: "survey token", ExpiredAt: expiresAt}
}

// CreateSurveyResponse inserts a response record. Each assignment takes at
// most one response.
func (d *DB) CreateSurveyResponse(ctx context.Context, response *db.SurveyResponse) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO survey_responses (id, assignment_id, answers, submitted_at)
		VALUES ($1, $2, $3, $4)
	`, response.ID, response.AssignmentID, response.Answers, response.SubmittedAt)
	if err != nil {
		if isUniqueViolation(err, "survey_responses_assignment_id_key") {
			return fmt.Errorf("assignment %s already has a response: %w", response.AssignmentID, db.ErrConflict)
		}
		return fmt.Errorf("failed to insert survey response: %w", err)
	}
	return nil
}

// ExpireLapsedAssignments flips live unanswered assignments whose token
// expiry has passed to EXPIRED and reports how many rows changed.
func (d *DB) ExpireLapsedAssignments(ctx context.Context, now time.Time) (int64, error) {
	tag, err := d.q.Exec(ctx, `
		UPDATE survey_assignments a SET status = 'EXPIRED'
		FROM survey_tokens t
		WHERE t.assignment_id = a.id
		  AND a.status IN ('PENDING', 'DISMISSED')
		  AND t.used_at IS NULL
		  AND t.expires_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire lapsed assignments: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListVolunteerActivity aggregates each user's completed shift count and
// hours, counting confirmed signups on shifts that ended before the cutoff.
func (d *DB) ListVolunteerActivity(ctx context.Context, before time.Time) ([]db.VolunteerActivity, error) {
	rows, err := d.q.Query(ctx, `
		SELECT s.user_id,
		       COUNT(*),
		       COALESCE(SUM(EXTRACT(EPOCH FROM (sh.end_at - sh.start_at)) / 3600.0), 0)
		FROM signups s
		JOIN shifts sh ON sh.id = s.shift_id
		WHERE s.status = 'CONFIRMED' AND sh.end_at < $1
		GROUP BY s.user_id
		ORDER BY s.user_id
	`, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query volunteer activity: %w", err)
	}
	defer rows.Close()

	var activity []db.VolunteerActivity
	for rows.Next() {
		var a db.VolunteerActivity
		if err := rows.Scan(&a.UserID, &a.CompletedShifts, &a.CompletedHours); err != nil {
			return nil, fmt.Errorf("failed to scan volunteer activity: %w", err)
		}
		activity = append(activity, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating volunteer activity: %w", err)
	}

	return activity, nil
}

// ListUsersWithLiveAssignment retrieves the ids of users holding a live
// assignment for the survey.
func (d *DB) ListUsersWithLiveAssignment(ctx context.Context, surveyID string) ([]string, error) {
	rows, err := d.q.Query(ctx, `
		SELECT user_id FROM survey_assignments
		WHERE survey_id = $1 AND status <> 'EXPIRED'
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query live assignments: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating live assignments: %w", err)
	}

	return ids, nil
}

func scanSurvey(row scanner) (*db.Survey, error) {
	var s db.Survey
	var triggerType *db.TriggerType
	if err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Questions, &triggerType, &s.TriggerValue, &s.TriggerMaxValue, &s.IsActive); err != nil {
		return nil, err
	}
	if triggerType != nil {
		s.TriggerType = *triggerType
	}
	return &s, nil
}
