package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or email already registered")
)

// User is a registered account; the configured actor resolves to one by username.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUser registers a user. Usernames and emails are unique.
func (q *Queries) CreateUser(ctx context.Context, username, email string) (*User, error) {
	u := User{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email)}
	if u.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if !strings.Contains(u.Email, "@") {
		return nil, fmt.Errorf("invalid email %q", u.Email)
	}

	err := q.Pool.QueryRow(ctx,
		`INSERT INTO users (username, email) VALUES ($1, $2) RETURNING id, created_at`,
		u.Username, u.Email,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create_user: %w", err)
	}
	return &u, nil
}

// UserByName looks a user up by username.
func (q *Queries) UserByName(ctx context.Context, username string) (*User, error) {
	var u User
	err := q.Pool.QueryRow(ctx,
		`SELECT id, username, email, created_at FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("user_by_name: %w", err)
	}
	return &u, nil
}
