package auth

import (
	"context"
	"testing"
)

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if !ValidRole(role) {
			t.Fatalf("unknown role %s", role)
		}
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestStaticPermissions(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleUser, PermFeedbackWrite, true},
		{RoleUser, PermTeamRead, false},
		{RoleManager, PermTeamRead, true},
		{RoleManager, PermFeedbackExport, false},
		{RoleAdmin, PermFeedbackImport, true},
		{"guest", PermFeedbackRead, false},
	}
	store := StaticPermissions{}
	for _, tc := range tests {
		got, err := store.HasPermission(context.Background(), tc.role, tc.permission)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Fatalf("%s/%s: expected %v got %v", tc.role, tc.permission, tc.want, got)
		}
	}
}
