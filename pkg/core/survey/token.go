package survey

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// NewToken returns an opaque URL-safe credential with 256 bits of entropy.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating survey token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenValidation is the outcome of checking a survey link. When Valid is
// false, Message says why in user-facing terms and Assignment carries the
// status the caller branches on. When Valid is true, the full bundle is
// populated so the caller can render the survey.
type TokenValidation struct {
	Valid      bool
	Message    string
	Assignment *db.SurveyAssignment
	Survey     *db.Survey
	User       *db.User
}

// ValidateToken resolves a survey link to its assignment. An unknown token
// is a not-found error. A lapsed token expires its assignment as a side
// effect and reports invalid. A completed assignment reports invalid
// without touching anything. Dismissed assignments stay reachable: the
// volunteer can still open and submit the survey.
func ValidateToken(ctx context.Context, store db.Store, clock *civiltime.Clock, logger *zap.Logger, token string) (*TokenValidation, error) {
	bundle, err := store.GetTokenBundle(ctx, token)
	if err != nil {
		return nil, err
	}
	now := clock.Now()

	if bundle.Token.ExpiresAt.Before(now) {
		if bundle.Assignment.Status != db.AssignmentExpired && bundle.Assignment.Status != db.AssignmentCompleted {
			if err := store.UpdateAssignmentStatus(ctx, bundle.Assignment.ID, db.AssignmentExpired); err != nil {
				return nil, fmt.Errorf("expiring assignment %s: %w", bundle.Assignment.ID, err)
			}
			bundle.Assignment.Status = db.AssignmentExpired
			logger.Info("Expired survey assignment on access",
				zap.String("assignment_id", bundle.Assignment.ID),
				zap.String("survey_id", bundle.Survey.ID))
		}
		return &TokenValidation{
			Valid:      false,
			Message:    "This survey link has expired.",
			Assignment: &bundle.Assignment,
		}, nil
	}

	if bundle.Assignment.Status == db.AssignmentCompleted {
		return &TokenValidation{
			Valid:      false,
			Message:    "This survey has already been completed.",
			Assignment: &bundle.Assignment,
		}, nil
	}

	return &TokenValidation{
		Valid:      true,
		Assignment: &bundle.Assignment,
		Survey:     &bundle.Survey,
		User:       &bundle.User,
	}, nil
}

// Submit records a volunteer's answers. The whole answer set is validated
// against the survey's question schema first; nothing is persisted on a
// validation failure. On success the response row, the assignment's
// COMPLETED transition, and the token's consumption commit in one
// transaction, so a concurrent second submission loses on the token guard
// and no assignment ever carries two responses.
func Submit(ctx context.Context, store db.Store, clock *civiltime.Clock, logger *zap.Logger, token string, answers []Answer) (*db.SurveyResponse, error) {
	bundle, err := store.GetTokenBundle(ctx, token)
	if err != nil {
		return nil, err
	}
	now := clock.Now()

	if bundle.Token.ExpiresAt.Before(now) {
		if bundle.Assignment.Status != db.AssignmentExpired && bundle.Assignment.Status != db.AssignmentCompleted {
			if err := store.UpdateAssignmentStatus(ctx, bundle.Assignment.ID, db.AssignmentExpired); err != nil {
				return nil, fmt.Errorf("expiring assignment %s: %w", bundle.Assignment.ID, err)
			}
		}
		return nil, &db.ExpiredError{Entity: "survey token", ExpiredAt: bundle.Token.ExpiresAt}
	}
	if bundle.Assignment.Status == db.AssignmentCompleted {
		return nil, fmt.Errorf("survey already completed: %w", db.ErrConflict)
	}

	questions, err := ParseQuestions(bundle.Survey.Questions)
	if err != nil {
		return nil, err
	}
	if err := ValidateAnswers(questions, answers); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encoding answers: %w", err)
	}

	response := &db.SurveyResponse{
		ID:           uuid.New().String(),
		AssignmentID: bundle.Assignment.ID,
		Answers:      encoded,
		SubmittedAt:  now,
	}
	err = store.InTx(ctx, func(tx db.Store) error {
		if err := tx.ConsumeToken(ctx, bundle.Token.ID, now); err != nil {
			return err
		}
		if err := tx.CreateSurveyResponse(ctx, response); err != nil {
			return err
		}
		return tx.UpdateAssignmentStatus(ctx, bundle.Assignment.ID, db.AssignmentCompleted)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Survey submitted",
		zap.String("survey_id", bundle.Survey.ID),
		zap.String("assignment_id", bundle.Assignment.ID),
		zap.String("user_id", bundle.User.ID))
	return response, nil
}

// ExpireLapsed sweeps assignments whose token window has closed, flipping
// pending and dismissed ones to EXPIRED. Completed assignments are never
// touched.
func ExpireLapsed(ctx context.Context, store db.Store, clock *civiltime.Clock, logger *zap.Logger) (int64, error) {
	expired, err := store.ExpireLapsedAssignments(ctx, clock.Now())
	if err != nil {
		return 0, fmt.Errorf("expiring lapsed assignments: %w", err)
	}
	if expired > 0 {
		logger.Info("Expired lapsed survey assignments", zap.Int64("count", expired))
	}
	return expired, nil
}
