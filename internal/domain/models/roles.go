// internal/domain/models/roles.go
package models

import "strings"

// Roles recognised by the platform.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleAdmin   = "admin"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// AllRoles lists every role in display order.
var AllRoles = []string{RoleStudent, RoleTeacher, RoleParent, RoleAdmin}

// NormalizeRole lowercases and trims a role name, returning "" for unknown roles.
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	switch r {
	case RoleStudent, RoleTeacher, RoleParent, RoleAdmin:
		return r
	case "professor":
		return RoleTeacher
	}
	return ""
}
