package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/corp-idp/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/corp-idp/internal/services/idp/storage"
	"github.com/louisbranch/corp-idp/internal/services/idp/storage/sqlite/migrations"
	"github.com/louisbranch/corp-idp/internal/services/idp/user"
	_ "modernc.org/sqlite"
)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements identity provider persistence over SQLite.
//
// A single SQLite file backs subjects, codes, and tokens so redemption can
// rely on the same visibility and locking boundaries.
type Store struct {
	sqlDB *sql.DB
}

// DB returns the raw database handle for the OAuth store.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// Open opens the identity SQLite store and applies bundled migrations.
//
// Schema lifecycle lives here, at open time, so protocol endpoints can assume
// their tables already exist.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutUser persists a subject record.
func (s *Store) PutUser(ctx context.Context, u user.User) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, email, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name`,
		u.ID, u.Email, u.Name, toMillis(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUserByEmail loads a subject record by its normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}

// GetUser loads a subject record by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (user.User, error) {
	var u user.User
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = ?`,
		userID,
	).Scan(&u.ID, &u.Email, &u.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}
