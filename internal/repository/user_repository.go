package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rigzlion8/watermaji/internal/domain"
	"github.com/rigzlion8/watermaji/pkg/database"
)

const userColumns = `id, first_name, last_name, email, phone, password_hash, role, auth_provider,
		google_id, avatar, is_email_verified, is_active, last_login_at, preferences, refresh_token,
		created_at, updated_at`

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, phone, password_hash, role, auth_provider,
			google_id, avatar, is_email_verified, is_active, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	preferences, err := marshalPreferences(user.Preferences)
	if err != nil {
		return err
	}

	_, err = r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.AuthProvider,
		user.GoogleID,
		user.Avatar,
		user.IsEmailVerified,
		user.IsActive,
		preferences,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("user with email %s already exists: %w", user.Email, domain.ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email. Emails are stored lowercased, so the
// comparison is case-insensitive as long as callers sanitize input.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.scanUser(r.db.DB.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
}

// GetByEmailOrGoogleID retrieves a user matching either the email or the
// google id, preferring the email match.
func (r *userRepository) GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE email = $1 OR google_id = $2
		ORDER BY (email = $1) DESC
		LIMIT 1
	`, userColumns)
	return r.scanUser(r.db.DB.QueryRowContext(ctx, query, email, googleID))
}

// UpdateProfile applies the allow-listed profile fields and returns the
// updated user. Nil fields keep their current value.
func (r *userRepository) UpdateProfile(ctx context.Context, userID string, update *domain.ProfileUpdate) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone = COALESCE($4, phone),
			preferences = COALESCE($5, preferences),
			updated_at = $6
		WHERE id = $1
		RETURNING %s
	`, userColumns)

	var preferences []byte
	if update.Preferences != nil {
		var err error
		preferences, err = marshalPreferences(update.Preferences)
		if err != nil {
			return nil, err
		}
	}

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query,
		userID,
		update.FirstName,
		update.LastName,
		update.Phone,
		preferences,
		time.Now(),
	))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user with id %s not found: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// UpdateGoogleProfile refreshes the Google-linked identity fields on login
func (r *userRepository) UpdateGoogleProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET google_id = $2, first_name = $3, last_name = $4, avatar = $5,
			is_email_verified = TRUE, last_login_at = $6, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.GoogleID,
		user.FirstName,
		user.LastName,
		user.Avatar,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update google profile: %w", err)
	}

	return checkRowsAffected(result, user.ID)
}

// UpdatePassword replaces the stored password hash
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, userID, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return checkRowsAffected(result, userID)
}

// UpdateLastLogin updates the last login timestamp for a user
func (r *userRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	query := `UPDATE users SET last_login_at = $2 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return checkRowsAffected(result, userID)
}

// UpdateRefreshToken overwrites the stored refresh token; nil clears it
func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshToken *string) error {
	query := `UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, userID, refreshToken, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	return checkRowsAffected(result, userID)
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var (
		phone, passwordHash, googleID, avatar, refreshToken sql.NullString
		lastLoginAt                                         sql.NullTime
		preferences                                         []byte
	)

	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&phone,
		&passwordHash,
		&user.Role,
		&user.AuthProvider,
		&googleID,
		&avatar,
		&user.IsEmailVerified,
		&user.IsActive,
		&lastLoginAt,
		&preferences,
		&refreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if phone.Valid {
		user.Phone = &phone.String
	}
	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}
	if googleID.Valid {
		user.GoogleID = &googleID.String
	}
	if avatar.Valid {
		user.Avatar = &avatar.String
	}
	if refreshToken.Valid {
		user.RefreshToken = &refreshToken.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	if len(preferences) > 0 {
		if err := json.Unmarshal(preferences, &user.Preferences); err != nil {
			return nil, fmt.Errorf("failed to decode preferences: %w", err)
		}
	}

	return user, nil
}

func marshalPreferences(preferences map[string]interface{}) ([]byte, error) {
	if preferences == nil {
		return nil, nil
	}
	data, err := json.Marshal(preferences)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	return data, nil
}

func checkRowsAffected(result sql.Result, userID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, domain.ErrNotFound)
	}

	return nil
}
