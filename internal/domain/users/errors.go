package users

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already in use")
	ErrManagerCycle  = errors.New("manager assignment would create a cycle")
	ErrSelfManager   = errors.New("user cannot manage themselves")
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrDeleteSelf    = errors.New("cannot delete your own account")
)
