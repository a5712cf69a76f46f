// internal/app/features/notes/suggestions.go
package notes

import (
	"context"
	"html/template"
	"net/http"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/htmlsanitize"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/optimistic"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// suggestionCard is one suggestion as the panel shows it. The card posts
// its own fields back so a failed apply can be rendered as it was.
type suggestionCard struct {
	Tr        i18n.Translator
	CSRFToken string
	models.AISuggestion
}

type suggestionsData struct {
	Tr     i18n.Translator
	NoteID string
	Cards  []suggestionCard
}

// contentData is the out-of-band update of the editor body after an
// applied suggestion.
type contentData struct {
	Note        models.Note
	ContentHTML template.HTML
}

func newSuggestionCard(r *http.Request, s models.AISuggestion) suggestionCard {
	return suggestionCard{Tr: i18n.FromContext(r.Context()), CSRFToken: csrf.Token(r), AISuggestion: s}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notes/{id}/suggestions                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeSuggestions is the HTMX panel that replaces the suggestions
// skeleton in the editor. A failure renders the panel's error state with a
// retry button rather than an error page.
func (h *Handler) ServeSuggestions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v := auth.ViewerFrom(r)
	tr := i18n.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	list, err := h.Notes.GetAISuggestions(ctx, v, id)
	if err != nil {
		h.Log.Warn("note suggestions failed",
			zap.String("note_id", id),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
		w.WriteHeader(http.StatusOK)
		templates.RenderSnippet(w, "panel_error",
			viewdata.PanelError(tr, apperr.LocalizationKey(err), "/notes/"+id+"/suggestions"))
		return
	}

	templates.RenderSnippet(w, "notes_suggestions", suggestionsData{
		Tr:     tr,
		NoteID: id,
		Cards: lo.Map(list, func(s models.AISuggestion, _ int) suggestionCard {
			return newSuggestionCard(r, s)
		}),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notes/{id}/suggestions/{sid}/apply                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// suggestionState rebuilds the card the browser showed before the click.
func suggestionState(r *http.Request) models.AISuggestion {
	return models.AISuggestion{
		ID:          chi.URLParam(r, "sid"),
		NoteID:      chi.URLParam(r, "id"),
		Kind:        normalize.QueryParam(r.FormValue("kind")),
		Original:    normalize.Text(r.FormValue("original")),
		Replacement: normalize.Text(r.FormValue("replacement")),
		Explanation: normalize.Text(r.FormValue("explanation")),
		Applied:     r.FormValue("applied") == "true",
	}
}

func markApplied(s models.AISuggestion) models.AISuggestion {
	s.Applied = true
	return s
}

// applySuggestion marks the card applied up front and keeps the mark only
// when the service applies the edit. The updated note is returned for the
// editor body.
func (h *Handler) applySuggestion(ctx context.Context, v models.Viewer, current models.AISuggestion) (optimistic.Outcome[models.AISuggestion], models.Note) {
	var note models.Note
	out := optimistic.Run(ctx, current, markApplied, func(ctx context.Context) error {
		var err error
		note, err = h.Notes.ApplyAISuggestion(ctx, v, current.NoteID, current.ID)
		return err
	})
	return out, note
}

// HandleApplySuggestion applies one suggestion to the note.
func (h *Handler) HandleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "parse form failed", err, "error.invalid_input")
		return
	}
	v := auth.ViewerFrom(r)
	current := suggestionState(r)
	back := "/notes/" + current.NoteID

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, note := h.applySuggestion(ctx, v, current)
	if out.RolledBack {
		h.Log.Warn("note suggestion rolled back",
			zap.String("note_id", current.NoteID),
			zap.String("suggestion_id", current.ID),
			zap.Error(out.Err))
	}

	if r.Header.Get("HX-Request") != "true" {
		if out.RolledBack {
			h.ErrLog.Banner(w, r, "apply suggestion failed", out.Err, back)
			return
		}
		if h.ErrLog.Flash != nil {
			_ = h.ErrLog.Flash.Add(w, r, flash.Success("notes.suggestions.applied"))
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	card := newSuggestionCard(r, out.State)
	templates.RenderSnippet(w, "notes_suggestion", card)
	if out.RolledBack {
		notices := []viewdata.NoticeVM{{Kind: string(flash.KindError), Text: card.Tr.T(apperr.LocalizationKey(out.Err))}}
		templates.RenderSnippet(w, "banner_snippet", notices)
		return
	}
	if note.ID != "" {
		templates.RenderSnippet(w, "notes_content_oob", contentData{
			Note:        note,
			ContentHTML: htmlsanitize.PrepareForDisplay(note.Content),
		})
	}
}
