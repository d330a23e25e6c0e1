// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jeranaias/portal-tui/internal/model"
)

var (
	// ErrUserExists is returned when registering an email that is taken.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when no user has the email.
	ErrUserNotFound = errors.New("user not found")

	// ErrChatNotFound is returned when a chat does not exist for the user.
	ErrChatNotFound = errors.New("chat not found")
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// User is a registered account.
type User struct {
	ID           string
	Email        string
	Name         string
	Department   string
	PasswordHash string
	CreatedAt    time.Time
}

// Store is the backend database. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, and an in-memory database
	// lives only as long as its single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// =============================================================================
// USERS
// =============================================================================

// CreateUser inserts u, assigning an id and creation time when unset.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.Email = strings.TrimSpace(u.Email)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, department, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Department, u.PasswordHash, u.CreatedAt.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByEmail looks a user up by email, ignoring case.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	var (
		u       User
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, department, password_hash, created_at FROM users WHERE email = ?`,
		strings.TrimSpace(email)).
		Scan(&u.ID, &u.Email, &u.Name, &u.Department, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = time.Unix(0, created)
	return &u, nil
}

// =============================================================================
// CHATS
// =============================================================================

// SaveChat inserts a chat record.
func (s *Store) SaveChat(ctx context.Context, rec *model.ChatRecord) error {
	if rec.ID == "" {
		return errors.New("chat record has no id")
	}
	msgs := rec.Messages
	if msgs == nil {
		msgs = []model.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chats (id, assistant_id, assistant_name, user_email, user_name, created_at, preview, messages)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AssistantID, rec.AssistantName, rec.UserEmail, rec.UserName,
		rec.Timestamp.UnixNano(), rec.Preview, string(data))
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

const chatColumns = `id, assistant_id, assistant_name, user_email, user_name, created_at, preview, messages`

// ChatsForUser returns the user's chats, oldest first.
func (s *Store) ChatsForUser(ctx context.Context, email string) ([]model.ChatRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE user_email = ? ORDER BY created_at ASC, rowid ASC`,
		strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	defer rows.Close()

	chats := []model.ChatRecord{}
	for rows.Next() {
		rec, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}
	return chats, nil
}

// ChatForUser returns one of the user's chats.
func (s *Store) ChatForUser(ctx context.Context, id, email string) (*model.ChatRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE id = ? AND user_email = ?`,
		id, strings.TrimSpace(email))
	rec, err := scanChat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChat(sc scanner) (*model.ChatRecord, error) {
	var (
		rec     model.ChatRecord
		created int64
		msgs    string
	)
	if err := sc.Scan(&rec.ID, &rec.AssistantID, &rec.AssistantName, &rec.UserEmail,
		&rec.UserName, &created, &rec.Preview, &msgs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan chat: %w", err)
	}
	rec.Timestamp = time.Unix(0, created)
	if err := json.Unmarshal([]byte(msgs), &rec.Messages); err != nil {
		return nil, fmt.Errorf("decode messages of %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
