package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"taskman/internal/apperr"
	"taskman/internal/models"
)

// uniqueViolation is the Postgres error code for a unique-constraint hit.
const uniqueViolation = "23505"

// UserStore persists user records. Duplicate email/username detection
// relies on the unique indexes: the store never pre-checks, so concurrent
// registrations are settled by Postgres and reported as ConflictError.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user. The caller supplies an already-hashed
// password; plaintext never reaches this layer.
func (s *UserStore) Create(ctx context.Context, email, username, hashedPassword string) (models.User, error) {
	user := models.User{
		Email:          email,
		Username:       username,
		HashedPassword: hashedPassword,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, username, hashed_password, is_active, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		user.Email, user.Username, user.HashedPassword, user.IsActive, user.IsAdmin, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.User{}, &apperr.ConflictError{Field: conflictField(pqErr.Constraint)}
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// conflictField recovers which unique column collided from the constraint
// name (users_email_key / users_username_key).
func conflictField(constraint string) string {
	if strings.Contains(constraint, "email") {
		return "email"
	}
	return "username"
}

// GetByID fetches a user by primary key.
func (s *UserStore) GetByID(ctx context.Context, id int) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, username, hashed_password, is_active, is_admin, created_at
		 FROM users WHERE id = $1`, id))
}

// GetByUsername fetches a user by username. Used by login.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, username, hashed_password, is_active, is_admin, created_at
		 FROM users WHERE username = $1`, username))
}

func (s *UserStore) scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.HashedPassword,
		&user.IsActive, &user.IsAdmin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// SetActive flips the is_active flag. There is no API surface for this;
// it exists for operators and tests, and the guard picks the change up on
// the next request.
func (s *UserStore) SetActive(ctx context.Context, id int, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}
