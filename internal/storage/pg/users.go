package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	internal_errors "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
)

const uniqueViolation = "23505"

// =========================================================================
// Public Methods (satisfy the service storage interfaces)
// =========================================================================

// SaveUser is the public entry point for creating a new user. It wraps the
// core logic in a transaction to ensure the operation is atomic.
func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(tx, user)
		return err
	})
	return id, err
}

// User fetches a user by username. It uses the main connection pool directly
// since no transaction is needed for a single read.
func (s *Storage) User(username string) (domain.User, error) {
	return s.user(s.db, "username", username)
}

func (s *Storage) UserById(id domain.UserId) (domain.User, error) {
	return s.user(s.db, "id", id)
}

// RegisterFailedLogin bumps the failed-attempt counter and, if the threshold
// is reached, starts the lockout window. The increment and the lockout
// decision happen in one statement so concurrent failures cannot race past
// the threshold.
func (s *Storage) RegisterFailedLogin(id domain.UserId, maxAttempts int, lockout time.Duration) (int, *time.Time, error) {
	var attempts int
	var lockedUntil *time.Time
	err := s.db.QueryRow(`
		UPDATE users
		SET login_attempts = login_attempts + 1,
		    locked_until = CASE
		        WHEN login_attempts + 1 >= $2 THEN NOW() + $3 * INTERVAL '1 second'
		        ELSE locked_until
		    END
		WHERE id = $1
		RETURNING login_attempts, locked_until`,
		id, maxAttempts, int64(lockout.Seconds())).Scan(&attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return 0, nil, fmt.Errorf("failed to register login attempt: %w", err)
	}
	return attempts, lockedUntil, nil
}

// ResetLoginAttempts clears the counter and any active lockout after a
// successful login, and stamps the login time.
func (s *Storage) ResetLoginAttempts(id domain.UserId) error {
	_, err := s.db.Exec("UPDATE users SET login_attempts = 0, locked_until = NULL, last_login = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

func (s *Storage) SetUserBlocked(id domain.UserId, blocked bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec("UPDATE users SET is_blocked = $2 WHERE id = $1", id, blocked)
		if err != nil {
			return fmt.Errorf("failed to update user block flag: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return nil
	})
}

// Users returns a page of accounts for the admin view, newest first. A
// non-empty search narrows by username or email substring.
func (s *Storage) Users(search string, limit, offset int) ([]domain.User, error) {
	rows, err := s.db.Query(`
		SELECT id, username, email, password_hash, is_admin, is_blocked, login_attempts, locked_until, last_login, created_at
		FROM users
		WHERE ($1 = '' OR username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Id, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsBlocked, &u.LoginAttempts, &u.LockedUntil, &u.LastLogin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) saveUser(q Querier, user domain.User) (domain.UserId, error) {
	var id int64
	err := q.QueryRow("INSERT INTO users(username, email, password_hash, is_admin) VALUES($1, $2, $3, $4) RETURNING id",
		user.Username, user.Email, user.PasswordHash, user.IsAdmin).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Username or email already taken", StatusCode: http.StatusConflict}
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return domain.UserId(id), nil
}

func (s *Storage) user(q Querier, column string, key any) (domain.User, error) {
	var user domain.User
	err := q.QueryRow(fmt.Sprintf(`
		SELECT id, username, email, password_hash, is_admin, is_blocked, login_attempts, locked_until, last_login, created_at
		FROM users WHERE %s = $1`, column), key).
		Scan(&user.Id, &user.Username, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.IsBlocked, &user.LoginAttempts, &user.LockedUntil, &user.LastLogin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}
