// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// UserCtx returns the user's role (lowercased), name, ID, and a found flag.
// If no user is present it returns "visitor", "", "", false. Unknown roles
// also fail closed as visitors.
func UserCtx(r *http.Request) (role string, name string, userID string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || strings.TrimSpace(user.ID) == "" {
		return "visitor", "", "", false
	}
	role = models.NormalizeRole(user.Role)
	if role == "" {
		return "visitor", "", "", false
	}
	return role, user.Name, user.ID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsTeacher reports whether the current request's user is a teacher.
func IsTeacher(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleTeacher
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleStudent
}

// IsParent reports whether the current request's user is a parent.
func IsParent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleParent
}

// CanManageCourses reports whether the user may edit courses and materials.
func CanManageCourses(r *http.Request) bool {
	return HasAnyRole(r, models.RoleTeacher, models.RoleAdmin)
}

// CanParticipate reports whether the user may create groups, posts, notes
// and whiteboards. Parents have read-only community access.
func CanParticipate(r *http.Request) bool {
	return HasAnyRole(r, models.RoleStudent, models.RoleTeacher, models.RoleAdmin)
}
