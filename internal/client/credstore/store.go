// Package credstore is the durable tier of the session: it persists the
// access/refresh token pair and a cached copy of the user profile in a local
// key-value table, and rehydrates them across process restarts.
//
// Writes are individual upserts with no surrounding transaction, so a crash
// between the access and refresh writes can leave the pair torn. Callers must
// tolerate that; the session bootstrap treats any inconsistency as "no
// session" and clears the store.
package credstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nutrilog/nutrilog/internal/client/migrations"
	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/pressly/goose/v3"
)

// Fixed keys in the metadata table.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserData     = "user_data"
)

// Store is the typed credential store over a Repository.
type Store struct {
	repo Repository
	db   *sql.DB
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the local SQLite database at dsn,
// applies migrations, and returns a Store backed by it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{repo: NewSQLiteRepository(db), db: db}, nil
}

// Close releases the underlying database handle, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveTokens persists the token pair. The two writes are independent; a crash
// in between can leave a stale refresh token next to a new access token.
func (s *Store) SaveTokens(ctx context.Context, tokens models.Credentials) error {
	if err := s.repo.Set(ctx, keyAccessToken, []byte(tokens.Access)); err != nil {
		return err
	}
	return s.repo.Set(ctx, keyRefreshToken, []byte(tokens.Refresh))
}

// AccessToken returns the stored access token, or "" if none is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, keyAccessToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// RefreshToken returns the stored refresh token, or "" if none is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, keyRefreshToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SaveUser caches the profile for cold-start rehydration.
func (s *Store) SaveUser(ctx context.Context, user *models.Profile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, keyUserData, data)
}

// User returns the cached profile. A missing or corrupted entry reads as
// (nil, nil): storage inconsistency is never fatal, it just means no session.
func (s *Store) User(ctx context.Context) (*models.Profile, error) {
	data, err := s.repo.Get(ctx, keyUserData)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var user models.Profile
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

// Clear removes all session keys. Each delete is attempted even if an
// earlier one fails; the joined error is informational, not fatal.
func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(
		s.repo.Delete(ctx, keyAccessToken),
		s.repo.Delete(ctx, keyRefreshToken),
		s.repo.Delete(ctx, keyUserData),
	)
}
