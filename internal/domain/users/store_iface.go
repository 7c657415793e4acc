package users

import (
	"context"

	"kudos/internal/domain/feedback"
)

type StoreAPI interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, in CreateInput, passwordHash string) (string, error)
	Update(ctx context.Context, id string, in UpdateInput) error
	Delete(ctx context.Context, id string) error
	SetManager(ctx context.Context, userID, managerID string) error
	PasswordHash(ctx context.Context, id string) (string, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	RoleCounts(ctx context.Context) ([]RoleCount, error)
	Subordinates(ctx context.Context, managerID string) ([]feedback.Member, error)
}

var _ feedback.Hierarchy = (*Store)(nil)
