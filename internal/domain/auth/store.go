package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, email, name, role, password_hash
    FROM users
    WHERE lower(email) = lower($1)
  `, email).Scan(&out.ID, &out.Email, &out.Name, &out.Role, &out.Password)
	return out, err
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, email, name, role, password_hash
    FROM users
    WHERE id = $1
  `, userID).Scan(&out.ID, &out.Email, &out.Name, &out.Role, &out.Password)
	return out, err
}

func (s *Store) CreatePasswordReset(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, "INSERT INTO password_resets (user_id, token_hash, expires_at) VALUES ($1, $2, $3)", userID, tokenHash, expires)
	return err
}

// ConsumePasswordReset marks the token used and stores the new hash in one
// transaction. It returns pgx.ErrNoRows when the token is unknown, used or
// expired.
func (s *Store) ConsumePasswordReset(ctx context.Context, tokenHash, passwordHash string) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID string
	err = tx.QueryRow(ctx, `
    UPDATE password_resets
    SET used_at = now()
    WHERE token_hash = $1 AND expires_at > now() AND used_at IS NULL
    RETURNING user_id::text
  `, tokenHash).Scan(&userID)
	if err != nil {
		return "", err
	}

	tag, err := tx.Exec(ctx, "UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2", passwordHash, userID)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return "", pgx.ErrNoRows
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return userID, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
