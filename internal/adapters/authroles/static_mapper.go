// Package authroles maps identity provider groups to hostel roles.
package authroles

import (
	"strings"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
)

// StaticRoleMapper grants admin to members of AdminGroup and student to everyone else.
// Group names compare case-insensitively.
type StaticRoleMapper struct {
	AdminGroup string
}

// Map returns the initial role for a principal with the given groups.
func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	if m.AdminGroup == "" {
		return domainauth.RoleStudent
	}
	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g), m.AdminGroup) {
			return domainauth.RoleAdmin
		}
	}
	return domainauth.RoleStudent
}
