package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

const signupColumns = `s.id, s.user_id, s.shift_id, s.group_booking_id, s.status, s.meals_served, s.created_at, s.updated_at`

const signupWithShiftQuery = `
	SELECT ` + signupColumns + `,
	       sh.start_at, sh.end_at, sh.location, sh.shift_type_id, st.name
	FROM signups s
	JOIN shifts sh ON sh.id = s.shift_id
	JOIN shift_types st ON st.id = sh.shift_type_id
`

// CreateSignup inserts a signup record. Losing the unique-index race on the
// active (user, shift) pair surfaces as a DuplicateSignupError.
func (d *DB) CreateSignup(ctx context.Context, signup *db.Signup) error {
	var groupBookingID *string
	if signup.GroupBookingID != "" {
		groupBookingID = &signup.GroupBookingID
	}

	_, err := d.q.Exec(ctx, `
		INSERT INTO signups (id, user_id, shift_id, group_booking_id, status, meals_served, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, signup.ID, signup.UserID, signup.ShiftID, groupBookingID, signup.Status, signup.MealsServed, signup.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "signups_active_user_shift_idx") {
			return &db.DuplicateSignupError{UserID: signup.UserID, ShiftID: signup.ShiftID}
		}
		return fmt.Errorf("failed to insert signup: %w", err)
	}
	return nil
}

// GetSignup retrieves a signup by id
func (d *DB) GetSignup(ctx context.Context, id string) (*db.Signup, error) {
	row := d.q.QueryRow(ctx, `
		SELECT `+signupColumns+`
		FROM signups s
		WHERE s.id = $1
	`, id)
	signup, err := scanSignup(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &db.NotFoundError{Entity: "signup", ID: id}
		}
		return nil, fmt.Errorf("failed to query signup: %w", err)
	}
	return signup, nil
}

// GetActiveSignup retrieves the user's non-canceled signup on the shift, or
// nil when there is none.
func (d *DB) GetActiveSignup(ctx context.Context, userID, shiftID string) (*db.Signup, error) {
	row := d.q.QueryRow(ctx, `
		SELECT `+signupColumns+`
		FROM signups s
		WHERE s.user_id = $1 AND s.shift_id = $2 AND s.status <> 'CANCELED'
	`, userID, shiftID)
	signup, err := scanSignup(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query active signup: %w", err)
	}
	return signup, nil
}

// UpdateSignup writes a signup's mutable fields (shift, status, and
// meals_served). Moving into a shift the user already actively holds trips
// the unique index and surfaces as a DuplicateSignupError.
func (d *DB) UpdateSignup(ctx context.Context, signup *db.Signup) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE signups SET shift_id = $2, status = $3, meals_served = $4, updated_at = NOW()
		WHERE id = $1
	`, signup.ID, signup.ShiftID, signup.Status, signup.MealsServed)
	if err != nil {
		if isUniqueViolation(err, "signups_active_user_shift_idx") {
			return &db.DuplicateSignupError{UserID: signup.UserID, ShiftID: signup.ShiftID}
		}
		return fmt.Errorf("failed to update signup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &db.NotFoundError{Entity: "signup", ID: signup.ID}
	}
	return nil
}

// CountConfirmed counts the signups holding capacity on a shift
func (d *DB) CountConfirmed(ctx context.Context, shiftID string) (int, error) {
	var count int
	err := d.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM signups WHERE shift_id = $1 AND status = 'CONFIRMED'
	`, shiftID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmed signups: %w", err)
	}
	return count, nil
}

// FindConfirmedInWindow retrieves one confirmed signup of the user whose
// shift starts in [from, to), skipping excludeSignupID. Returns nil when the
// window is clear.
func (d *DB) FindConfirmedInWindow(ctx context.Context, userID string, from, to time.Time, excludeSignupID string) (*db.SignupWithShift, error) {
	row := d.q.QueryRow(ctx, signupWithShiftQuery+`
		WHERE s.user_id = $1
		  AND s.status = 'CONFIRMED'
		  AND sh.start_at >= $2 AND sh.start_at < $3
		  AND s.id <> $4
		ORDER BY sh.start_at
		LIMIT 1
	`, userID, from, to, excludeSignupID)
	joined, err := scanSignupWithShift(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query confirmed signups in window: %w", err)
	}
	return joined, nil
}

// ListActiveSignupsForShifts retrieves every non-canceled signup on the
// given shifts, joined to shift fields.
func (d *DB) ListActiveSignupsForShifts(ctx context.Context, shiftIDs []string) ([]db.SignupWithShift, error) {
	if len(shiftIDs) == 0 {
		return nil, nil
	}
	rows, err := d.q.Query(ctx, signupWithShiftQuery+`
		WHERE s.shift_id = ANY($1) AND s.status <> 'CANCELED'
		ORDER BY sh.start_at, s.created_at
	`, shiftIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query signups for shifts: %w", err)
	}
	defer rows.Close()

	var signups []db.SignupWithShift
	for rows.Next() {
		joined, err := scanSignupWithShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signup: %w", err)
		}
		signups = append(signups, *joined)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signups: %w", err)
	}

	return signups, nil
}

// ListWaitlisted retrieves a shift's waitlist, oldest signup first
func (d *DB) ListWaitlisted(ctx context.Context, shiftID string) ([]db.Signup, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+signupColumns+`
		FROM signups s
		WHERE s.shift_id = $1 AND s.status = 'WAITLISTED'
		ORDER BY s.created_at, s.id
	`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query waitlist: %w", err)
	}
	defer rows.Close()

	var signups []db.Signup
	for rows.Next() {
		signup, err := scanSignup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signup: %w", err)
		}
		signups = append(signups, *signup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating waitlist: %w", err)
	}

	return signups, nil
}

// DeleteSignupsForShifts removes every signup on the given shifts and
// reports how many rows went.
func (d *DB) DeleteSignupsForShifts(ctx context.Context, shiftIDs []string) (int64, error) {
	if len(shiftIDs) == 0 {
		return 0, nil
	}
	tag, err := d.q.Exec(ctx, `DELETE FROM signups WHERE shift_id = ANY($1)`, shiftIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete signups: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkNoShows flips confirmed signups on shifts that ended before the cutoff
// to NO_SHOW and reports how many rows changed.
func (d *DB) MarkNoShows(ctx context.Context, endedBefore time.Time) (int64, error) {
	tag, err := d.q.Exec(ctx, `
		UPDATE signups s SET status = 'NO_SHOW', updated_at = NOW()
		FROM shifts sh
		WHERE sh.id = s.shift_id AND s.status = 'CONFIRMED' AND sh.end_at < $1
	`, endedBefore)
	if err != nil {
		return 0, fmt.Errorf("failed to mark no-shows: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListCompletedSignups retrieves the user's confirmed signups whose shift
// already ended, joined to shift fields, oldest shift first.
func (d *DB) ListCompletedSignups(ctx context.Context, userID string, before time.Time) ([]db.SignupWithShift, error) {
	rows, err := d.q.Query(ctx, signupWithShiftQuery+`
		WHERE s.user_id = $1 AND s.status = 'CONFIRMED' AND sh.end_at < $2
		ORDER BY sh.start_at
	`, userID, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed signups: %w", err)
	}
	defer rows.Close()

	var signups []db.SignupWithShift
	for rows.Next() {
		joined, err := scanSignupWithShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completed signup: %w", err)
		}
		signups = append(signups, *joined)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completed signups: %w", err)
	}

	return signups, nil
}

// CreateGroupBooking inserts a group booking record
func (d *DB) CreateGroupBooking(ctx context.Context, booking *db.GroupBooking) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO group_bookings (id, shift_id, leader_id, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, booking.ID, booking.ShiftID, booking.LeaderID, booking.Name, booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert group booking: %w", err)
	}
	return nil
}

// DeleteGroupBookingsForShifts removes every group booking on the given
// shifts and reports how many rows went.
func (d *DB) DeleteGroupBookingsForShifts(ctx context.Context, shiftIDs []string) (int64, error) {
	if len(shiftIDs) == 0 {
		return 0, nil
	}
	tag, err := d.q.Exec(ctx, `DELETE FROM group_bookings WHERE shift_id = ANY($1)`, shiftIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete group bookings: %w", err)
	}
	return tag.RowsAffected(), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSignup(row scanner) (*db.Signup, error) {
	var s db.Signup
	var groupBookingID *string
	if err := row.Scan(&s.ID, &s.UserID, &s.ShiftID, &groupBookingID, &s.Status, &s.MealsServed, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if groupBookingID != nil {
		s.GroupBookingID = *groupBookingID
	}
	return &s, nil
}

func scanSignupWithShift(row scanner) (*db.SignupWithShift, error) {
	var j db.SignupWithShift
	var groupBookingID *string
	err := row.Scan(
		&j.ID, &j.UserID, &j.ShiftID, &groupBookingID, &j.Status, &j.MealsServed, &j.CreatedAt, &j.UpdatedAt,
		&j.ShiftStart, &j.ShiftEnd, &j.ShiftLocation, &j.ShiftTypeID, &j.ShiftTypeName,
	)
	if err != nil {
		return nil, err
	}
	if groupBookingID != nil {
		j.GroupBookingID = *groupBookingID
	}
	return &j, nil
}
