// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	_ "github.com/dalemusser/edusphere/internal/app/features/dashboard/views"
	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/i18n"
	dashboardsvc "github.com/dalemusser/edusphere/internal/app/services/dashboard"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Dashboard dashboardsvc.Service
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(svc dashboardsvc.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Dashboard: svc,
		ErrLog:    errLog,
		Log:       logger,
	}
}

// rolePanels lists, in display order, the panels each role's dashboard
// is made of. The panel name doubles as the URL segment and the
// template suffix.
var rolePanels = map[string][]string{
	models.RoleStudent: {"groups", "notes", "progress"},
	models.RoleTeacher: {"courses", "sessions"},
	models.RoleParent:  {"children"},
	models.RoleAdmin:   {"users", "activity"},
}

// PanelsFor returns the panel names shown to role, or nil when the role
// has no dashboard.
func PanelsFor(role string) []string {
	return rolePanels[models.NormalizeRole(role)]
}

func hasPanel(role, panel string) bool {
	for _, p := range PanelsFor(role) {
		if p == panel {
			return true
		}
	}
	return false
}

type panelSlot struct {
	Name  string
	URL   string
	Label string
}

type dashboardData struct {
	viewdata.BaseVM
	RoleKey string
	Panels  []panelSlot
}

func newDashboardData(r *http.Request, role string) dashboardData {
	base := viewdata.NewBaseVM(r, "dashboard.title", "/")
	data := dashboardData{BaseVM: base, RoleKey: "dashboard.role." + role}
	for _, p := range PanelsFor(role) {
		data.Panels = append(data.Panels, panelSlot{
			Name:  p,
			URL:   "/dashboard/panels/" + p,
			Label: base.Tr.T("dashboard.panel." + p),
		})
	}
	return data
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDashboard renders the role's dashboard shell: one loading skeleton
// per panel, each of which fetches its own fragment.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	role := ""
	if ok {
		role = models.NormalizeRole(user.Role)
	}
	if len(PanelsFor(role)) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := newDashboardData(r, role)
	h.Log.Debug("dashboard served", zap.String("role", role), zap.String("user_id", user.ID))
	templates.Render(w, r, "dashboard_page", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/panels/{panel}                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type panelData struct {
	Tr      i18n.Translator
	Name    string
	Summary dashboardsvc.Summary
}

// ServePanel is the HTMX fragment that replaces a skeleton. Failures come
// back as a 200 carrying an inline banner and a retry button, so htmx
// still swaps them in.
func (h *Handler) ServePanel(w http.ResponseWriter, r *http.Request) {
	panel := chi.URLParam(r, "panel")
	v := auth.ViewerFrom(r)
	if !hasPanel(v.Role, panel) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	tr := i18n.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sum, err := h.Dashboard.Summary(ctx, v)
	if err != nil {
		h.Log.Warn("dashboard panel failed",
			zap.String("panel", panel),
			zap.String("user_id", v.ID),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
		w.WriteHeader(http.StatusOK)
		templates.RenderSnippet(w, "panel_error",
			viewdata.PanelError(tr, apperr.LocalizationKey(err), "/dashboard/panels/"+panel))
		return
	}

	templates.RenderSnippet(w, "dashboard_panel_"+panel, panelData{Tr: tr, Name: panel, Summary: sum})
}
