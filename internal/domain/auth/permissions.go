package auth

import "context"

const (
	PermFeedbackRead   = "feedback.read"
	PermFeedbackWrite  = "feedback.write"
	PermTeamRead       = "team.read"
	PermReportsRead    = "reports.read"
	PermFeedbackExport = "feedback.export"
	PermFeedbackImport = "feedback.import"
	PermUsersRead      = "users.read"
	PermUsersWrite     = "users.write"
	PermAuditRead      = "audit.read"
	PermSystemAdmin    = "admin.system"
)

var DefaultPermissions = []string{
	PermFeedbackRead,
	PermFeedbackWrite,
	PermTeamRead,
	PermReportsRead,
	PermFeedbackExport,
	PermFeedbackImport,
	PermUsersRead,
	PermUsersWrite,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleUser: {
		PermFeedbackRead,
		PermFeedbackWrite,
		PermReportsRead,
		PermUsersRead,
	},
	RoleManager: {
		PermFeedbackRead,
		PermFeedbackWrite,
		PermTeamRead,
		PermReportsRead,
		PermUsersRead,
	},
	RoleAdmin: DefaultPermissions,
}

// StaticPermissions resolves permissions from RolePermissions. Roles are
// fixed, so there is nothing to store in the database.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}
