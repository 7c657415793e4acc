package auth

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

const MinPasswordLength = 8

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}
