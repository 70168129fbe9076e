package postgres

import (
	"context"
	"fmt"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// CreateAchievement inserts an achievement record
func (d *DB) CreateAchievement(ctx context.Context, a *db.Achievement) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO achievements (id, name, category, criteria, points, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.Name, a.Category, a.Criteria, a.Points, a.IsActive)
	if err != nil {
		return fmt.Errorf("failed to insert achievement: %w", err)
	}
	return nil
}

// ListActiveAchievements retrieves all active achievement templates
func (d *DB) ListActiveAchievements(ctx context.Context) ([]db.Achievement, error) {
	rows, err := d.q.Query(ctx, `
		SELECT id, name, category, criteria, points, is_active
		FROM achievements
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var achievements []db.Achievement
	for rows.Next() {
		var a db.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &a.Criteria, &a.Points, &a.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	return achievements, nil
}

// ListUnlockedAchievementIDs retrieves the ids of achievements the user has
// already unlocked.
func (d *DB) ListUnlockedAchievementIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := d.q.Query(ctx, `
		SELECT achievement_id FROM user_achievements WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unlocked achievements: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan achievement id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unlocked achievements: %w", err)
	}

	return ids, nil
}

// InsertUserAchievement records an unlock. The insert is conflict-guarded on
// the (user, achievement) primary key; the bool reports whether this call
// actually inserted the row.
func (d *DB) InsertUserAchievement(ctx context.Context, ua *db.UserAchievement) (bool, error) {
	tag, err := d.q.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at, progress)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, ua.UserID, ua.AchievementID, ua.UnlockedAt, ua.Progress)
	if err != nil {
		return false, fmt.Errorf("failed to insert user achievement: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
