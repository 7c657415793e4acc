package feedback

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("not allowed")
	ErrInvalidPointType     = errors.New("point type must be rosu or negru")
	ErrCommentRequired      = errors.New("comment is required")
	ErrSelfFeedback         = errors.New("cannot give feedback to yourself")
	ErrBlackRequiresManager = errors.New("black points can only be given by a manager of the employee")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrInvalidRange         = errors.New("invalid date range")
)
