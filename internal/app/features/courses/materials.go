// internal/app/features/courses/materials.go
package courses

import (
	"context"
	"net/http"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	profsvc "github.com/dalemusser/edusphere/internal/app/services/professor"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/formutil"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/optimistic"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

type materialInput struct {
	Title       string `validate:"required,max=200" label:"courses.field.material_title"`
	Type        string `validate:"required,oneof=document video link assignment" label:"courses.field.material_type"`
	URL         string `validate:"max=2000,httpurl" label:"courses.field.url"`
	Description string `validate:"max=2000" label:"courses.field.description"`
}

// materialsData feeds the materials panel on the course page.
type materialsData struct {
	Tr        i18n.Translator
	CSRFToken string
	CourseID  string
	Materials []models.Material
}

func newMaterialsData(r *http.Request, courseID string, list []models.Material) materialsData {
	return materialsData{
		Tr:        i18n.FromContext(r.Context()),
		CSRFToken: csrf.Token(r),
		CourseID:  courseID,
		Materials: list,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/{id}/materials                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeMaterials is the HTMX panel listing a course's materials.
func (h *Handler) ServeMaterials(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Courses.GetMaterials(ctx, auth.ViewerFrom(r), id)
	if err != nil {
		h.Log.Warn("course materials failed",
			zap.String("course_id", id),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
		w.WriteHeader(http.StatusOK)
		templates.RenderSnippet(w, "panel_error",
			viewdata.PanelError(i18n.FromContext(r.Context()), apperr.LocalizationKey(err), "/courses/"+id+"/materials"))
		return
	}
	templates.RenderSnippet(w, "courses_materials", newMaterialsData(r, id, list))
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/{id}/materials/new, POST /courses/{id}/materials                |
*─────────────────────────────────────────────────────────────────────────────*/

type materialFormData struct {
	formutil.Base
	CourseID    string
	Title       string
	Type        string
	URL         string
	Description string
	Types       []string
}

func (h *Handler) renderMaterialForm(w http.ResponseWriter, r *http.Request, status int, data materialFormData, res *inputval.Result, errKey string) {
	formutil.SetBase(&data.Base, r, "courses.materials.new_title", "/courses/"+data.CourseID)
	data.Types = models.MaterialTypes
	data.ApplyResult(res)
	if errKey != "" {
		data.SetError(errKey)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "courses_material_new", data)
}

// ServeNewMaterial renders the add-material form.
func (h *Handler) ServeNewMaterial(w http.ResponseWriter, r *http.Request) {
	h.renderMaterialForm(w, r, http.StatusOK, materialFormData{
		CourseID: chi.URLParam(r, "id"),
		Type:     models.MaterialDocument,
	}, nil, "")
}

// HandleCreateMaterial attaches a material to a course. A URL is optional
// but must be http(s) when given.
func (h *Handler) HandleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/courses/"+id)
		return
	}
	data := materialFormData{
		CourseID:    id,
		Title:       normalize.Name(r.FormValue("title")),
		Type:        normalize.QueryParam(r.FormValue("type")),
		URL:         normalize.QueryParam(r.FormValue("url")),
		Description: normalize.Text(r.FormValue("description")),
	}
	in := materialInput{Title: data.Title, Type: data.Type, URL: data.URL, Description: data.Description}
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderMaterialForm(w, r, http.StatusUnprocessableEntity, data, res, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Courses.CreateMaterial(ctx, auth.ViewerFrom(r), id, profsvc.MaterialInput{
		Title:       in.Title,
		Type:        in.Type,
		URL:         in.URL,
		Description: in.Description,
	})
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidInput) {
			h.renderMaterialForm(w, r, http.StatusUnprocessableEntity, data, nil, apperr.LocalizationKey(err))
			return
		}
		h.ErrLog.Banner(w, r, "create material failed", err, "/courses/"+id+"/materials/new")
		return
	}
	h.Log.Info("material created", zap.String("course_id", id), zap.String("material_id", m.ID))
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success("courses.materials.created"))
	}
	http.Redirect(w, r, "/courses/"+id, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /courses/{id}/materials/{mid}/delete                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// removeMaterial drops mid from list before the service call and puts it
// back in place when the call fails.
func (h *Handler) removeMaterial(ctx context.Context, v models.Viewer, courseID, mid string, list []models.Material) ([]models.Material, error) {
	ol := optimistic.NewList(list)
	err := ol.Remove(ctx,
		func(m models.Material) bool { return m.ID == mid },
		func(ctx context.Context) error { return h.Courses.DeleteMaterial(ctx, v, courseID, mid) })
	return ol.Items(), err
}

// HandleDeleteMaterial removes a material. HTMX callers get the panel as
// it stands afterwards: without the material, or with it restored and a
// banner when the delete failed.
func (h *Handler) HandleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mid := chi.URLParam(r, "mid")
	v := auth.ViewerFrom(r)
	back := "/courses/" + id

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if r.Header.Get("HX-Request") != "true" {
		if err := h.Courses.DeleteMaterial(ctx, v, id, mid); err != nil {
			h.ErrLog.Banner(w, r, "delete material failed", err, back)
			return
		}
		if h.ErrLog.Flash != nil {
			_ = h.ErrLog.Flash.Add(w, r, flash.Success("courses.materials.deleted"))
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	list, err := h.Courses.GetMaterials(ctx, v, id)
	if err != nil {
		h.ErrLog.Banner(w, r, "list materials failed", err, back)
		return
	}
	items, err := h.removeMaterial(ctx, v, id, mid, list)
	data := newMaterialsData(r, id, items)
	templates.RenderSnippet(w, "courses_materials", data)
	if err != nil {
		h.Log.Warn("material delete rolled back",
			zap.String("course_id", id),
			zap.String("material_id", mid),
			zap.Error(err))
		notices := []viewdata.NoticeVM{{Kind: string(flash.KindError), Text: data.Tr.T(apperr.LocalizationKey(err))}}
		templates.RenderSnippet(w, "banner_snippet", notices)
	}
}
