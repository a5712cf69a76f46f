package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/google/uuid"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID     string
	Name   string
	Email  string
	Role   string
	Locale string
}

// StudentUser returns a TestUser with the student role.
func StudentUser() TestUser {
	return TestUser{ID: uuid.NewString(), Name: "Test Student", Email: "student@test.com", Role: models.RoleStudent}
}

// TeacherUser returns a TestUser with the teacher role.
func TeacherUser() TestUser {
	return TestUser{ID: uuid.NewString(), Name: "Test Teacher", Email: "teacher@test.com", Role: models.RoleTeacher}
}

// ParentUser returns a TestUser with the parent role.
func ParentUser() TestUser {
	return TestUser{ID: uuid.NewString(), Name: "Test Parent", Email: "parent@test.com", Role: models.RoleParent}
}

// AdminUser returns a TestUser with the admin role.
func AdminUser() TestUser {
	return TestUser{ID: uuid.NewString(), Name: "Test Admin", Email: "admin@test.com", Role: models.RoleAdmin}
}

// Viewer converts the test user to the identity services receive.
func (u TestUser) Viewer() models.Viewer {
	return models.Viewer{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Locale: u.Locale}
}

// WithUser adds a user to the request context, bypassing the session.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		Locale: user.Locale,
	})
}

// WithLocale attaches a translator for l, the way the i18n middleware does.
func WithLocale(r *http.Request, l i18n.Locale) *http.Request {
	return r.WithContext(i18n.WithTranslator(r.Context(), i18n.For(l)))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// Serve runs h and returns the recorder. A panic from template rendering
// (no engine is booted in unit tests) is swallowed; status codes and
// headers written before rendering are still observable.
func Serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }()
		h(rec, r)
	}()
	return rec
}

// PostForm builds a form-encoded POST request.
func PostForm(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}
