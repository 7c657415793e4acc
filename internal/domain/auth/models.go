package auth

// UserContext is the authenticated identity attached to a request.
type UserContext struct {
	UserID string
	Role   string
	Name   string
}

func (u UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type AuthUser struct {
	ID       string
	Email    string
	Name     string
	Role     string
	Password string
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn"`
	User      SessionUser `json:"user"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
