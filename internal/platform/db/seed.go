package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kudos/internal/domain/auth"
)

// Seed creates the initial administrator. Categories are seeded by the
// migrations.
func Seed(ctx context.Context, pool *pgxpool.Pool, adminEmail, adminPassword string) error {
	return ensureAdminUser(ctx, pool, adminEmail, adminPassword)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, name, password_hash, role)
    VALUES ($1, $2, $3, $4)
  `, email, "Administrator", hash, auth.RoleAdmin)
	return err
}
