package users

import (
	"context"
	"fmt"
	"strings"

	"kudos/internal/domain/auth"
	"kudos/internal/domain/feedback"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	id, err := s.store.Create(ctx, in, hash)
	if err != nil {
		return User{}, err
	}
	if in.ManagerID != "" {
		if err := s.SetManager(ctx, id, in.ManagerID); err != nil {
			return User{}, fmt.Errorf("assign manager: %w", err)
		}
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := s.store.Update(ctx, id, in); err != nil {
		return User{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrDeleteSelf
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) SetManager(ctx context.Context, userID, managerID string) error {
	if userID == managerID {
		return ErrSelfManager
	}
	return s.store.SetManager(ctx, userID, managerID)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < auth.MinPasswordLength {
		return auth.ErrWeakPassword
	}
	hash, err := s.store.PasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(hash, current); err != nil {
		return ErrWrongPassword
	}
	newHash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, userID, newHash)
}

func (s *Service) RoleCounts(ctx context.Context) ([]RoleCount, error) {
	return s.store.RoleCounts(ctx)
}

func (s *Service) Team(ctx context.Context, managerID string) ([]feedback.Member, error) {
	return s.store.Subordinates(ctx, managerID)
}
