package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) (*PostgresUserStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PostgresUserStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresUserStore) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	role TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) GetByEmail(email string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, ErrUserNotFound
	}

	var u User
	const q = `SELECT id, email, name, role, password_hash, created_at FROM users WHERE email = $1`
	if err := s.db.QueryRow(q, email).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) Put(user User) error {
	user.Email = strings.TrimSpace(user.Email)
	if user.ID == "" || user.Email == "" || user.PasswordHash == "" {
		return fmt.Errorf("id, email, and password hash are required")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("role %q is not valid", user.Role)
	}

	const q = `
INSERT INTO users (id, email, name, role, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (email) DO UPDATE
SET id = EXCLUDED.id,
	name = EXCLUDED.name,
	role = EXCLUDED.role,
	password_hash = EXCLUDED.password_hash,
	updated_at = NOW()`
	if _, err := s.db.Exec(q, user.ID, user.Email, user.Name, string(user.Role), user.PasswordHash, user.CreatedAt); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
