package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"groundchat/internal/app/db"
)

// DBTX is the subset of pgxpool.Pool used by PostgresStore.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"

	selectUserColumns = `SELECT id::text, username, email, password_hash, created_at FROM users`
)

// PostgresStore is a Store backed by the users table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore returns a PostgresStore using conn.
func NewPostgresStore(conn DBTX) *PostgresStore {
	return &PostgresStore{db: conn}
}

func (s *PostgresStore) Create(ctx context.Context, nu NewUser) (User, error) {
	const query = `INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at`

	u := User{
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
	}

	err := s.db.QueryRow(ctx, query, nu.Username, nu.Email, nu.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		switch db.ViolatedConstraint(err) {
		case usernameConstraint:
			return User{}, ErrUsernameTaken
		case emailConstraint:
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (User, error) {
	return s.findOne(ctx, selectUserColumns+` WHERE id = $1::uuid`, id)
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (User, error) {
	return s.findOne(ctx, selectUserColumns+` WHERE username = $1`, username)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.findOne(ctx, selectUserColumns+` WHERE email = $1`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg string) (User, error) {
	var u User

	err := s.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		// A malformed id cannot name a row.
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidText(err) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}
