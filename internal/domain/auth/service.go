package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type Service struct {
	store    StoreAPI
	notifier ResetNotifier
	secret   string
	tokenTTL time.Duration
	resetTTL time.Duration
}

func NewService(store StoreAPI, notifier ResetNotifier, secret string, tokenTTL, resetTTL time.Duration) *Service {
	return &Service{store: store, notifier: notifier, secret: secret, tokenTTL: tokenTTL, resetTTL: resetTTL}
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if isNoRows(err) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, Role: user.Role, Name: user.Name}, s.tokenTTL)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{
		Token:     token,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
		User:      sessionUser(user),
	}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (SessionUser, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return SessionUser{}, ErrInvalidCredentials
		}
		return SessionUser{}, err
	}
	return sessionUser(user), nil
}

// ForgotPassword issues a one-time reset token for email. Unknown addresses
// succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.store.CreatePasswordReset(ctx, user.ID, HashResetToken(token), time.Now().Add(s.resetTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if s.notifier != nil {
		s.notifier.PasswordReset(ctx, user.Email, user.Name, token)
	} else {
		slog.Warn("password reset requested without notifier", "userId", user.ID)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.store.ConsumePasswordReset(ctx, HashResetToken(strings.TrimSpace(token)), hash); err != nil {
		if isNoRows(err) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	return nil
}

// HashResetToken is the form reset tokens are stored in.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func sessionUser(u AuthUser) SessionUser {
	return SessionUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
