// internal/app/features/notes/editor.go
package notes

import (
	"context"
	"html/template"
	"net/http"
	"net/url"

	"github.com/dalemusser/edusphere/internal/app/live"
	notessvc "github.com/dalemusser/edusphere/internal/app/services/notes"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/formutil"
	"github.com/dalemusser/edusphere/internal/app/system/htmlsanitize"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/navigation"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// slot is a lazily loaded panel rendered through "skeleton_panel".
type slot struct {
	URL   string
	Label string
}

type editorData struct {
	formutil.Base
	Note        models.Note
	Title       string
	Content     string
	ContentHTML template.HTML
	CanEdit     bool
	IsOwner     bool
	LiveURL     string
	Suggestions slot
	Sharing     collaboratorsData
}

// liveURL returns the socket address for the editor, or "" when no
// ticket can be issued (the editor then works as a plain form).
func (h *Handler) liveURL(userID, noteID string) string {
	if h.Tickets == nil {
		return ""
	}
	tk, err := h.Tickets.Issue(userID, live.KindNote, noteID)
	if err != nil {
		h.Log.Warn("issue live ticket failed", zap.String("note_id", noteID), zap.Error(err))
		return ""
	}
	return "/live/notes/" + url.PathEscape(noteID) + "?ticket=" + url.QueryEscape(tk)
}

func (h *Handler) editorData(r *http.Request, n models.Note, v models.Viewer) editorData {
	data := editorData{
		Note:        n,
		Title:       n.Title,
		Content:     n.Content,
		ContentHTML: htmlsanitize.PrepareForDisplay(n.Content),
		CanEdit:     n.CanEdit(v.ID),
		IsOwner:     n.OwnerID == v.ID,
	}
	formutil.SetBase(&data.Base, r, "", navigation.SafeBackURL(r, navigation.NotesBackURL))
	data.BaseVM.Title = n.Title
	data.Suggestions = slot{URL: "/notes/" + n.ID + "/suggestions", Label: data.Tr.T("notes.suggestions.loading")}
	data.Sharing = collaboratorsData{
		Tr:          data.Tr,
		CSRFToken:   data.CSRFToken,
		Note:        n,
		Permissions: []string{models.PermissionView, models.PermissionEdit},
	}
	if data.CanEdit {
		data.LiveURL = h.liveURL(v.ID, n.ID)
	}
	return data
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notes/{id}                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeEditor opens a note. Editors get the live channel; viewers get a
// read-only rendering.
func (h *Handler) ServeEditor(w http.ResponseWriter, r *http.Request) {
	v := auth.ViewerFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notes.GetNote(ctx, v, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "load note failed", err, "/notes")
		return
	}
	templates.Render(w, r, "notes_editor", h.editorData(r, n, v))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notes/{id}                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleUpdate saves the title and content from the editor form.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v := auth.ViewerFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/notes/"+id)
		return
	}
	title := normalize.Name(r.FormValue("title"))
	content := normalize.Text(r.FormValue("content"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if res := inputval.Validate(noteInput{Title: title, Content: content}); res.HasErrors() {
		n, err := h.Notes.GetNote(ctx, v, id)
		if err != nil {
			h.ErrLog.LogServiceError(w, r, "load note failed", err, "/notes")
			return
		}
		data := h.editorData(r, n, v)
		data.Title, data.Content = title, content
		data.ApplyResult(res)
		w.WriteHeader(http.StatusUnprocessableEntity)
		templates.Render(w, r, "notes_editor", data)
		return
	}

	if _, err := h.Notes.UpdateNote(ctx, v, id, notessvc.NoteInput{Title: title, Content: htmlsanitize.Sanitize(content)}); err != nil {
		h.ErrLog.Banner(w, r, "update note failed", err, "/notes/"+id)
		return
	}
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success("notes.saved"))
	}
	http.Redirect(w, r, "/notes/"+id, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notes/{id}/delete                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDelete removes a note. Only the owner may; the service enforces it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notes.DeleteNote(ctx, auth.ViewerFrom(r), id); err != nil {
		h.ErrLog.Banner(w, r, "delete note failed", err, "/notes/"+id)
		return
	}
	h.Log.Info("note deleted", zap.String("note_id", id))
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success("notes.deleted"))
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/notes")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

