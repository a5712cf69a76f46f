package dashboard

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	dashboardsvc "github.com/dalemusser/edusphere/internal/app/services/dashboard"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.uber.org/zap"
)

type fakeDashboard struct {
	calls int
	err   error
}

func (f *fakeDashboard) Summary(_ context.Context, v models.Viewer) (dashboardsvc.Summary, error) {
	f.calls++
	if f.err != nil {
		return dashboardsvc.Summary{}, f.err
	}
	return dashboardsvc.Summary{Role: v.Role}, nil
}

func newHandler(svc dashboardsvc.Service) *Handler {
	return NewHandler(svc, uierrors.NewErrorLogger(zap.NewNop(), nil), zap.NewNop())
}

func TestPanelsFor(t *testing.T) {
	tests := []struct {
		role string
		want []string
	}{
		{models.RoleStudent, []string{"groups", "notes", "progress"}},
		{models.RoleTeacher, []string{"courses", "sessions"}},
		{"Professor", []string{"courses", "sessions"}},
		{models.RoleParent, []string{"children"}},
		{models.RoleAdmin, []string{"users", "activity"}},
		{"visitor", nil},
		{"", nil},
	}
	for _, tc := range tests {
		if got := PanelsFor(tc.role); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("PanelsFor(%q): got %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestNewDashboardData_SkeletonPerPanel(t *testing.T) {
	req := testutil.WithUser(testutil.NewRequest("GET", "/dashboard"), testutil.StudentUser())
	data := newDashboardData(req, models.RoleStudent)

	if len(data.Panels) != 3 {
		t.Fatalf("panels: got %d, want 3", len(data.Panels))
	}
	for _, p := range data.Panels {
		if p.URL != "/dashboard/panels/"+p.Name {
			t.Errorf("panel %s URL: got %q", p.Name, p.URL)
		}
		if p.Label == "" {
			t.Errorf("panel %s has no label", p.Name)
		}
	}
	if data.RoleKey != "dashboard.role.student" {
		t.Errorf("role key: got %q", data.RoleKey)
	}
}

func TestServeDashboard_VisitorRedirected(t *testing.T) {
	h := newHandler(&fakeDashboard{})

	rec := testutil.Serve(h.ServeDashboard, testutil.NewRequest("GET", "/dashboard"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestServeDashboard_KnownRolesRender(t *testing.T) {
	for _, u := range []testutil.TestUser{testutil.StudentUser(), testutil.TeacherUser(), testutil.ParentUser(), testutil.AdminUser()} {
		t.Run(u.Role, func(t *testing.T) {
			h := newHandler(&fakeDashboard{})
			rec := testutil.Serve(h.ServeDashboard, testutil.WithUser(testutil.NewRequest("GET", "/dashboard"), u))
			if rec.Code == http.StatusSeeOther {
				t.Errorf("%s was redirected to %q", u.Role, rec.Header().Get("Location"))
			}
		})
	}
}

func TestServePanel_RejectsOtherRolesPanels(t *testing.T) {
	svc := &fakeDashboard{}
	h := newHandler(svc)

	req := testutil.WithUser(testutil.NewRequest("GET", "/dashboard/panels/users"), testutil.StudentUser())
	req = testutil.WithChiURLParam(req, "panel", "users")
	rec := testutil.Serve(h.ServePanel, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
	if svc.calls != 0 {
		t.Error("service must not be called for a foreign panel")
	}
}

func TestServePanel_FailureStillSwaps(t *testing.T) {
	svc := &fakeDashboard{err: apperr.E(apperr.KindUnavailable, "backend down")}
	h := newHandler(svc)

	req := testutil.WithUser(testutil.NewRequest("GET", "/dashboard/panels/children"), testutil.ParentUser())
	req = testutil.WithChiURLParam(req, "panel", "children")
	rec := testutil.Serve(h.ServePanel, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200 so htmx swaps the error in", rec.Code)
	}
	if svc.calls != 1 {
		t.Errorf("service calls: got %d, want 1", svc.calls)
	}
}
