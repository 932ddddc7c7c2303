package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"videotube-api/internal/models"
)

// SQLiteUserStore persists users in the embedded database.
type SQLiteUserStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteUserStore(db *sql.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db, now: utcNow}
}

func (s *SQLiteUserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, username, email, password, avatar, cover_image, refresh_token, created_at, updated_at
		FROM users
		WHERE username = ? OR email = ?
		LIMIT 1
	`, username, email)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user by username or email: %w", err)
	}
	return user, nil
}

// Create inserts user and assigns its id and timestamps.
func (s *SQLiteUserStore) Create(ctx context.Context, user *models.User) error {
	now := s.now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, full_name, username, email, password, avatar, cover_image, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID.Hex(), user.FullName, user.Username, user.Email, user.Password, user.Avatar,
		user.CoverImage, user.RefreshToken, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByIDSanitized loads a user without the password and refresh token.
func (s *SQLiteUserStore) FindByIDSanitized(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, username, email, '', avatar, cover_image, '', created_at, updated_at
		FROM users
		WHERE id = ?
	`, id.Hex())

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id.Hex(), err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user                 models.User
		id                   string
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &user.FullName, &user.Username, &user.Email, &user.Password,
		&user.Avatar, &user.CoverImage, &user.RefreshToken, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if user.ID, err = primitive.ObjectIDFromHex(id); err != nil {
		return nil, err
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
