package home

import (
	"net/http"

	_ "github.com/dalemusser/edusphere/internal/app/features/home/views"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the public landing page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type homeData struct {
	viewdata.BaseVM
	Highlights []string // catalog keys
}

var highlights = []string{
	"home.highlight.dashboards",
	"home.highlight.community",
	"home.highlight.workspace",
	"home.highlight.courses",
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot shows the landing page; signed-in users go straight to their
// dashboard.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := homeData{
		BaseVM:     viewdata.NewBaseVM(r, "", "/"),
		Highlights: highlights,
	}
	if data.IsLoggedIn {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "home", data)
}
