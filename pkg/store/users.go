package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// User is an account allowed to log in. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

const userColumns = "id, username, password_hash, is_admin, created_at"

func scanUser(row scanner) (*User, error) {
	var (
		u       User
		created int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(0, created).UTC()
	return &u, nil
}

// CreateUser inserts a user. The username must be unique.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (*User, error) {
	const op = "CreateUser"

	username = strings.TrimSpace(username)
	if username == "" || passwordHash == "" {
		return nil, invalid(op, "username and password are required")
	}

	u := User{
		ID:           newID(),
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Username, u.PasswordHash, u.IsAdmin, u.CreatedAt.UnixNano())
	if err != nil {
		return nil, wrap(op, err)
	}
	return &u, nil
}

// UserByUsername looks a user up by name.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, "UserByUsername", "username", strings.TrimSpace(username))
}

// UserByID looks a user up by id.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, "UserByID", "id", id)
}

func (s *Store) getUser(ctx context.Context, op, column, value string) (*User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(op, "user")
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// SetPassword replaces the password hash of the user with id.
func (s *Store) SetPassword(ctx context.Context, id, passwordHash string) error {
	const op = "SetPassword"

	if passwordHash == "" {
		return invalid(op, "password is required")
	}
	res, err := s.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return notFound(op, "user")
	}
	return nil
}

// CountUsers returns the number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, wrap("CountUsers", err)
	}
	return n, nil
}
