package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrWeakPassword       = errors.New("password too short")
)
