// internal/app/features/notes/handler.go
package notes

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/live"
	notessvc "github.com/dalemusser/edusphere/internal/app/services/notes"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/formutil"
	"github.com/dalemusser/edusphere/internal/app/system/htmlsanitize"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Handler serves the notes workspace. Tickets authorizes the editor's
// live socket.
type Handler struct {
	Notes   notessvc.Service
	Tickets *live.Tickets
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(svc notessvc.Service, tickets *live.Tickets, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Notes:   svc,
		Tickets: tickets,
		ErrLog:  errLog,
		Log:     logger,
	}
}

type noteInput struct {
	Title   string `validate:"required,max=200" label:"notes.field.title"`
	Content string `validate:"max=200000" label:"notes.field.content"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notes                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type noteRow struct {
	ID        string
	Title     string
	Preview   string
	Owner     string
	Shared    bool
	UpdatedAt string
}

type listData struct {
	viewdata.BaseVM
	Mine       []noteRow
	SharedWith []noteRow
}

// ServeList shows the viewer's own notes and the ones shared with them.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	v := auth.ViewerFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	notes, err := h.Notes.ListNotes(ctx, v)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "list notes failed", err, "/dashboard")
		return
	}

	data := listData{BaseVM: viewdata.NewBaseVM(r, "notes.title", "/dashboard")}
	mine, shared := lo.FilterReject(notes, func(n models.Note, _ int) bool { return n.OwnerID == v.ID })
	toRow := func(n models.Note, _ int) noteRow {
		return noteRow{
			ID:        n.ID,
			Title:     n.Title,
			Preview:   normalize.Truncate(htmlsanitize.StripTags(n.Content), 120),
			Owner:     n.OwnerName,
			Shared:    len(n.Collaborators) > 0,
			UpdatedAt: data.Tr.DateTime(n.UpdatedAt),
		}
	}
	data.Mine = lo.Map(mine, toRow)
	data.SharedWith = lo.Map(shared, toRow)

	templates.Render(w, r, "notes_list", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notes/new, POST /notes                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type newData struct {
	formutil.Base
	Title   string
	Content string
	Tags    string
}

func (h *Handler) renderNew(w http.ResponseWriter, r *http.Request, status int, data newData, res *inputval.Result, errKey string) {
	formutil.SetBase(&data.Base, r, "notes.new_title", "/notes")
	data.ApplyResult(res)
	if errKey != "" {
		data.SetError(errKey)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "notes_new", data)
}

// ServeNew renders the create-note form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderNew(w, r, http.StatusOK, newData{}, nil, "")
}

// HandleCreate creates a note and opens it in the editor.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/notes")
		return
	}
	data := newData{
		Title:   normalize.Name(r.FormValue("title")),
		Content: normalize.Text(r.FormValue("content")),
		Tags:    normalize.QueryParam(r.FormValue("tags")),
	}
	if res := inputval.Validate(noteInput{Title: data.Title, Content: data.Content}); res.HasErrors() {
		h.renderNew(w, r, http.StatusUnprocessableEntity, data, res, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Notes.CreateNote(ctx, auth.ViewerFrom(r), notessvc.NoteInput{
		Title:   data.Title,
		Content: htmlsanitize.Sanitize(data.Content),
		Tags:    normalize.Tags(data.Tags),
	})
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidInput) {
			h.renderNew(w, r, http.StatusUnprocessableEntity, data, nil, apperr.LocalizationKey(err))
			return
		}
		h.ErrLog.Banner(w, r, "create note failed", err, "/notes/new")
		return
	}

	h.Log.Info("note created", zap.String("note_id", n.ID))
	http.Redirect(w, r, "/notes/"+n.ID, http.StatusSeeOther)
}
