package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/models"
)

// CreateUser persists a new user account.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, display_name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return apperr.Store("failed to insert user", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, password_hash, created_at FROM users WHERE "+column+" = ?",
		value,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("user not found: %s", value)
	}
	if err != nil {
		return nil, apperr.Store("failed to get user", err)
	}
	return user, nil
}

// LinkAccount registers a financial account for a user. Settlement payouts to
// users with at least one linked account are mirrored into the plan ledger
// instead of parked as pending transactions.
func (s *SQLiteStore) LinkAccount(ctx context.Context, userID, provider, label string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO linked_accounts (id, user_id, provider, label, created_at) VALUES (?, ?, ?, ?, ?)",
		id, userID, provider, label, time.Now().Unix(),
	)
	if err != nil {
		return "", apperr.Store("failed to link account", err)
	}
	return id, nil
}

// HasLinkedAccount reports whether the user has at least one linked financial
// account.
func (s *SQLiteStore) HasLinkedAccount(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM linked_accounts WHERE user_id = ? LIMIT 1",
		userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperr.Store("failed to check linked accounts", err)
	}
	return true, nil
}

// DisplayName resolves a user ID to a display name. Cosmetic: callers fall
// back to the person's name when the lookup fails.
func (s *SQLiteStore) DisplayName(ctx context.Context, userID string) (string, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.DisplayName, nil
}
