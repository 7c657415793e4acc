package auth

import (
	"context"
	"time"
)

type StoreAPI interface {
	FindUserByEmail(ctx context.Context, email string) (AuthUser, error)
	FindUserByID(ctx context.Context, userID string) (AuthUser, error)
	CreatePasswordReset(ctx context.Context, userID, tokenHash string, expires time.Time) error
	ConsumePasswordReset(ctx context.Context, tokenHash, passwordHash string) (string, error)
}

// ResetNotifier delivers password reset links.
type ResetNotifier interface {
	PasswordReset(ctx context.Context, email, name, token string)
}
