// internal/app/features/notes/sharing.go
package notes

import (
	"context"
	"net/http"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	notessvc "github.com/dalemusser/edusphere/internal/app/services/notes"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

var errShareInvalid = apperr.EK(apperr.KindInvalidInput, "notes.error.share_invalid",
	"share needs an email and a view or edit permission")

type shareInput struct {
	Email      string `validate:"required,strictemail" label:"notes.field.email"`
	Permission string `validate:"required,oneof=view edit" label:"notes.field.permission"`
}

type collaboratorsData struct {
	Tr          i18n.Translator
	CSRFToken   string
	Note        models.Note
	Permissions []string
}

func (h *Handler) renderCollaborators(w http.ResponseWriter, r *http.Request, n models.Note) {
	templates.RenderSnippet(w, "notes_collaborators", collaboratorsData{
		Tr:          i18n.FromContext(r.Context()),
		CSRFToken:   csrf.Token(r),
		Note:        n,
		Permissions: []string{models.PermissionView, models.PermissionEdit},
	})
}

func (h *Handler) afterSharing(w http.ResponseWriter, r *http.Request, n models.Note, key string) {
	if r.Header.Get("HX-Request") == "true" {
		h.renderCollaborators(w, r, n)
		return
	}
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success(key))
	}
	http.Redirect(w, r, "/notes/"+n.ID, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notes/{id}/share                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleShare grants a collaborator view or edit access by email.
func (h *Handler) HandleShare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/notes/" + id
	if err := r.ParseForm(); err != nil {
		h.ErrLog.Banner(w, r, "parse form failed", apperr.Wrap(apperr.KindInvalidInput, err, "bad form"), back)
		return
	}
	in := shareInput{
		Email:      normalize.Email(r.FormValue("email")),
		Permission: normalize.QueryParam(r.FormValue("permission")),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.Banner(w, r, "share note rejected", errShareInvalid, back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notes.ShareNote(ctx, auth.ViewerFrom(r), id, notessvc.ShareInput{Email: in.Email, Permission: in.Permission})
	if err != nil {
		h.ErrLog.Banner(w, r, "share note failed", err, back)
		return
	}
	h.Log.Info("note shared", zap.String("note_id", id), zap.String("permission", in.Permission))
	h.afterSharing(w, r, n, "notes.share.added")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notes/{id}/collaborators/{uid}/remove                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRemoveCollaborator revokes a collaborator's access.
func (h *Handler) HandleRemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notes.RemoveCollaborator(ctx, auth.ViewerFrom(r), id, chi.URLParam(r, "uid"))
	if err != nil {
		h.ErrLog.Banner(w, r, "remove collaborator failed", err, "/notes/"+id)
		return
	}
	h.afterSharing(w, r, n, "notes.share.removed")
}
