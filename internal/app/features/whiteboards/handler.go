// internal/app/features/whiteboards/handler.go
package whiteboards

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/live"
	wbsvc "github.com/dalemusser/edusphere/internal/app/services/whiteboard"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/formutil"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultScreenshotMaxBytes caps a decoded screenshot when no limit is
// configured.
const DefaultScreenshotMaxBytes = 2 << 20

// Handler serves whiteboard sessions. MaxScreenshotBytes limits the
// decoded PNG of an uploaded screenshot.
type Handler struct {
	Boards             wbsvc.Service
	Tickets            *live.Tickets
	ErrLog             *uierrors.ErrorLogger
	Log                *zap.Logger
	MaxScreenshotBytes int64
}

func NewHandler(svc wbsvc.Service, tickets *live.Tickets, errLog *uierrors.ErrorLogger, maxShot int64, logger *zap.Logger) *Handler {
	if maxShot <= 0 {
		maxShot = DefaultScreenshotMaxBytes
	}
	return &Handler{
		Boards:             svc,
		Tickets:            tickets,
		ErrLog:             errLog,
		Log:                logger,
		MaxScreenshotBytes: maxShot,
	}
}

type sessionInput struct {
	Title string `validate:"required,max=120" label:"whiteboard.field.title"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /whiteboards                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type listData struct {
	viewdata.BaseVM
	Sessions []models.WhiteboardSession
}

// ServeList shows the sessions the viewer owns or has joined.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sessions, err := h.Boards.GetSessions(ctx, auth.ViewerFrom(r))
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "list whiteboards failed", err, "/dashboard")
		return
	}
	templates.Render(w, r, "whiteboards_list", listData{
		BaseVM:   viewdata.NewBaseVM(r, "whiteboard.title", "/dashboard"),
		Sessions: sessions,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /whiteboards/new, POST /whiteboards                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type newData struct {
	formutil.Base
	Title    string
	CourseID string
}

func (h *Handler) renderNew(w http.ResponseWriter, r *http.Request, status int, data newData, res *inputval.Result, errKey string) {
	formutil.SetBase(&data.Base, r, "whiteboard.new_title", "/whiteboards")
	data.ApplyResult(res)
	if errKey != "" {
		data.SetError(errKey)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "whiteboards_new", data)
}

// ServeNew renders the create form. ?course= links the session to a course.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderNew(w, r, http.StatusOK, newData{CourseID: normalize.QueryParam(r.URL.Query().Get("course"))}, nil, "")
}

// HandleCreate opens a new session and goes straight to its canvas.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/whiteboards")
		return
	}
	data := newData{
		Title:    normalize.Name(r.FormValue("title")),
		CourseID: normalize.QueryParam(r.FormValue("course_id")),
	}
	if res := inputval.Validate(sessionInput{Title: data.Title}); res.HasErrors() {
		h.renderNew(w, r, http.StatusUnprocessableEntity, data, res, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Boards.CreateSession(ctx, auth.ViewerFrom(r), wbsvc.SessionInput{Title: data.Title, CourseID: data.CourseID})
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidInput) {
			h.renderNew(w, r, http.StatusUnprocessableEntity, data, nil, apperr.LocalizationKey(err))
			return
		}
		h.ErrLog.Banner(w, r, "create whiteboard failed", err, "/whiteboards/new")
		return
	}
	h.Log.Info("whiteboard created", zap.String("session_id", s.ID))
	http.Redirect(w, r, "/whiteboards/"+s.ID, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /whiteboards/{id}, POST /whiteboards/{id}                                |
*─────────────────────────────────────────────────────────────────────────────*/

type boardData struct {
	formutil.Base
	Session  models.WhiteboardSession
	Title    string
	IsOwner  bool
	LiveURL  string
	Replay   string
	MaxBytes int64
}

func (h *Handler) boardData(r *http.Request, s models.WhiteboardSession, v models.Viewer) boardData {
	data := boardData{
		Session:  s,
		Title:    s.Title,
		IsOwner:  s.OwnerID == v.ID,
		MaxBytes: h.MaxScreenshotBytes,
		Replay:   "[]",
	}
	formutil.SetBase(&data.Base, r, "", "/whiteboards")
	data.BaseVM.Title = s.Title

	if len(s.Interactions) > 0 {
		if b, err := json.Marshal(s.Interactions); err == nil {
			data.Replay = string(b)
		}
	}
	if h.Tickets != nil {
		tk, err := h.Tickets.Issue(v.ID, live.KindWhiteboard, s.ID)
		if err != nil {
			h.Log.Warn("issue live ticket failed", zap.String("session_id", s.ID), zap.Error(err))
		} else {
			data.LiveURL = "/live/whiteboards/" + url.PathEscape(s.ID) + "?ticket=" + url.QueryEscape(tk)
		}
	}
	return data
}

// ServeBoard opens the live canvas, replaying the stored interactions.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	v := auth.ViewerFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	s, err := h.Boards.GetSession(ctx, v, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "load whiteboard failed", err, "/whiteboards")
		return
	}
	templates.Render(w, r, "whiteboards_board", h.boardData(r, s, v))
}

// HandleRename changes the session title.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/whiteboards/" + id
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", back)
		return
	}
	title := normalize.Name(r.FormValue("title"))
	if res := inputval.Validate(sessionInput{Title: title}); res.HasErrors() {
		h.ErrLog.Banner(w, r, "rename whiteboard rejected",
			apperr.EK(apperr.KindInvalidInput, "whiteboard.error.title_required", "title is required"), back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Boards.UpdateSession(ctx, auth.ViewerFrom(r), id, wbsvc.SessionInput{Title: title}); err != nil {
		h.ErrLog.Banner(w, r, "rename whiteboard failed", err, back)
		return
	}
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success("whiteboard.renamed"))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
