package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// CreateUser inserts a user record
func (d *DB) CreateUser(ctx context.Context, user *db.User) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO users (id, email, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.Email, user.Name, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return fmt.Errorf("email %s already registered: %w", user.Email, db.ErrConflict)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id
func (d *DB) GetUser(ctx context.Context, id string) (*db.User, error) {
	return d.getUser(ctx, id, "")
}

// GetUserForUpdate retrieves a user by id and locks its row for the rest of
// the transaction.
func (d *DB) GetUserForUpdate(ctx context.Context, id string) (*db.User, error) {
	return d.getUser(ctx, id, "FOR UPDATE")
}

func (d *DB) getUser(ctx context.Context, id, locking string) (*db.User, error) {
	var u db.User
	err := d.q.QueryRow(ctx, `
		SELECT id, email, name, created_at
		FROM users
		WHERE id = $1 `+locking,
		id).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &db.NotFoundError{Entity: "user", ID: id}
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes a user. Signups, unlocks, survey assignments, tokens,
// responses, and friendships all cascade at the schema level.
func (d *DB) DeleteUser(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &db.NotFoundError{Entity: "user", ID: id}
	}
	return nil
}

// CreateFriendship inserts a friendship record
func (d *DB) CreateFriendship(ctx context.Context, friendship *db.Friendship) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO friendships (id, requester_id, addressee_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, friendship.ID, friendship.RequesterID, friendship.AddresseeID, friendship.Status, friendship.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "friendships_requester_id_addressee_id_key") {
			return fmt.Errorf("friendship already exists: %w", db.ErrConflict)
		}
		return fmt.Errorf("failed to insert friendship: %w", err)
	}
	return nil
}

// CountAcceptedFriends counts accepted friendships the user is on either
// side of.
func (d *DB) CountAcceptedFriends(ctx context.Context, userID string) (int, error) {
	var count int
	err := d.q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM friendships
		WHERE status = 'ACCEPTED' AND (requester_id = $1 OR addressee_id = $1)
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accepted friends: %w", err)
	}
	return count, nil
}
