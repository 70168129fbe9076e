package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// CreateShiftType inserts a shift type record
func (d *DB) CreateShiftType(ctx context.Context, st *db.ShiftType) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO shift_types (id, name, description)
		VALUES ($1, $2, $3)
	`, st.ID, st.Name, st.Description)
	if err != nil {
		if isUniqueViolation(err, "shift_types_name_key") {
			return fmt.Errorf("shift type %q already exists: %w", st.Name, db.ErrConflict)
		}
		return fmt.Errorf("failed to insert shift type: %w", err)
	}
	return nil
}

// GetShiftType retrieves a shift type by id
func (d *DB) GetShiftType(ctx context.Context, id string) (*db.ShiftType, error) {
	var st db.ShiftType
	err := d.q.QueryRow(ctx, `
		SELECT id, name, description
		FROM shift_types
		WHERE id = $1
	`, id).Scan(&st.ID, &st.Name, &st.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &db.NotFoundError{Entity: "shift type", ID: id}
		}
		return nil, fmt.Errorf("failed to query shift type: %w", err)
	}
	return &st, nil
}

// GetShiftTypeByName retrieves a shift type by its unique name
func (d *DB) GetShiftTypeByName(ctx context.Context, name string) (*db.ShiftType, error) {
	var st db.ShiftType
	err := d.q.QueryRow(ctx, `
		SELECT id, name, description
		FROM shift_types
		WHERE name = $1
	`, name).Scan(&st.ID, &st.Name, &st.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &db.NotFoundError{Entity: "shift type", ID: name}
		}
		return nil, fmt.Errorf("failed to query shift type: %w", err)
	}
	return &st, nil
}

// CreateShift inserts a shift record
func (d *DB) CreateShift(ctx context.Context, shift *db.Shift) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO shifts (id, shift_type_id, location, start_at, end_at, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, shift.ID, shift.ShiftTypeID, shift.Location, shift.StartAt, shift.EndAt, shift.Capacity)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

// GetShift retrieves a shift by id
func (d *DB) GetShift(ctx context.Context, id string) (*db.Shift, error) {
	return d.getShift(ctx, id, "")
}

// GetShiftForUpdate retrieves a shift by id and locks its row for the rest
// of the transaction.
func (d *DB) GetShiftForUpdate(ctx context.Context, id string) (*db.Shift, error) {
	return d.getShift(ctx, id, "FOR UPDATE")
}

func (d *DB) getShift(ctx context.Context, id, locking string) (*db.Shift, error) {
	var s db.Shift
	err := d.q.QueryRow(ctx, `
		SELECT id, shift_type_id, location, start_at, end_at, capacity
		FROM shifts
		WHERE id = $1 `+locking,
		id).Scan(&s.ID, &s.ShiftTypeID, &s.Location, &s.StartAt, &s.EndAt, &s.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &db.NotFoundError{Entity: "shift", ID: id}
		}
		return nil, fmt.Errorf("failed to query shift: %w", err)
	}
	return &s, nil
}

// ListShiftsInRange retrieves shifts starting in [from, to), optionally
// restricted to one location.
func (d *DB) ListShiftsInRange(ctx context.Context, from, to time.Time, location string) ([]db.Shift, error) {
	query := `
		SELECT id, shift_type_id, location, start_at, end_at, capacity
		FROM shifts
		WHERE start_at >= $1 AND start_at < $2
	`
	args := []any{from, to}
	if location != "" {
		query += ` AND location = $3`
		args = append(args, location)
	}
	query += ` ORDER BY start_at, location`

	rows, err := d.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []db.Shift
	for rows.Next() {
		var s db.Shift
		if err := rows.Scan(&s.ID, &s.ShiftTypeID, &s.Location, &s.StartAt, &s.EndAt, &s.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// DeleteShifts removes the given shifts and reports how many rows went
func (d *DB) DeleteShifts(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := d.q.Exec(ctx, `DELETE FROM shifts WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete shifts: %w", err)
	}
	return tag.RowsAffected(), nil
}
