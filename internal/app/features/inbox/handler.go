// internal/app/features/inbox/handler.go
package inbox

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/services/messaging"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/formutil"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Longest message body accepted.
const maxBody = 5000

type Handler struct {
	Messaging messaging.Service
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(svc messaging.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Messaging: svc,
		ErrLog:    errLog,
		Log:       logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /inbox                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type conversationRow struct {
	ID          string
	With        string
	LastMessage string
	LastAt      string
	Unread      int
}

type inboxData struct {
	viewdata.BaseVM
	Rows        []conversationRow
	UnreadTotal int
}

// withNames joins the other participants' names for display.
func withNames(c models.Conversation, viewerID string) string {
	return strings.Join(lo.Map(c.Others(viewerID), func(p models.Participant, _ int) string {
		return p.Name
	}), ", ")
}

func rows(tr i18n.Translator, convs []models.Conversation, viewerID string) []conversationRow {
	out := make([]conversationRow, 0, len(convs))
	for _, c := range convs {
		out = append(out, conversationRow{
			ID:          c.ID,
			With:        withNames(c, viewerID),
			LastMessage: normalize.Truncate(c.LastMessage, 80),
			LastAt:      tr.DateTime(c.LastAt),
			Unread:      c.Unread,
		})
	}
	return out
}

// ServeInbox lists the viewer's conversations, most recent first.
func (h *Handler) ServeInbox(w http.ResponseWriter, r *http.Request) {
	v := auth.ViewerFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	convs, err := h.Messaging.ListConversations(ctx, v)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "list conversations failed", err, "/dashboard")
		return
	}

	base := viewdata.NewBaseVM(r, "inbox.title", "/dashboard")
	templates.Render(w, r, "inbox_list", inboxData{
		BaseVM:      base,
		Rows:        rows(base.Tr, convs, v.ID),
		UnreadTotal: messaging.UnreadTotal(convs),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /inbox/new, POST /inbox                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type startInput struct {
	Recipient string `validate:"required,strictemail" label:"inbox.field.recipient"`
	Body      string `validate:"required,max=5000" label:"inbox.field.body"`
}

type newData struct {
	formutil.Base
	Recipient string
	Body      string
	MaxBody   int
}

func (h *Handler) renderNew(w http.ResponseWriter, r *http.Request, status int, data newData, res *inputval.Result, errKey string) {
	formutil.SetBase(&data.Base, r, "inbox.new_title", "/inbox")
	data.MaxBody = maxBody
	data.ApplyResult(res)
	if errKey != "" {
		data.SetError(errKey)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "inbox_new", data)
}

// ServeNew renders the new-conversation form. ?to= prefills the recipient.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderNew(w, r, http.StatusOK, newData{Recipient: normalize.Email(r.URL.Query().Get("to"))}, nil, "")
}

// HandleStart opens a conversation with the first message.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/inbox")
		return
	}
	data := newData{
		Recipient: normalize.Email(r.FormValue("recipient")),
		Body:      normalize.Text(r.FormValue("body")),
	}
	if res := inputval.Validate(startInput{Recipient: data.Recipient, Body: data.Body}); res.HasErrors() {
		h.renderNew(w, r, http.StatusUnprocessableEntity, data, res, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	conv, err := h.Messaging.StartConversation(ctx, auth.ViewerFrom(r), messaging.StartInput{
		RecipientEmail: data.Recipient,
		Body:           data.Body,
	})
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindNotFound, apperr.KindInvalidInput:
			h.Log.Info("start conversation rejected", zap.Error(err))
			h.renderNew(w, r, http.StatusUnprocessableEntity, data, nil, apperr.LocalizationKey(err))
		default:
			h.ErrLog.Banner(w, r, "start conversation failed", err, "/inbox/new")
		}
		return
	}

	http.Redirect(w, r, "/inbox/"+conv.ID, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /inbox/{id}                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

type messageView struct {
	Tr   i18n.Translator
	Msg  models.Message
	Mine bool
}

type threadData struct {
	viewdata.BaseVM
	ID       string
	With     string
	Messages []messageView
	MaxBody  int
}

// ServeThread shows one conversation and marks it read.
func (h *Handler) ServeThread(w http.ResponseWriter, r *http.Request) {
	v := auth.ViewerFrom(r)
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	conv, err := h.Messaging.GetConversation(ctx, v, id)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "load conversation failed", err, "/inbox")
		return
	}
	if conv.Unread > 0 {
		// The thread still renders if this fails; the badge just stays.
		if err := h.Messaging.MarkRead(ctx, v, id); err != nil {
			h.Log.Warn("mark conversation read failed", zap.String("conversation_id", id), zap.Error(err))
		}
	}

	base := viewdata.NewBaseVM(r, "inbox.thread_title", "/inbox")
	data := threadData{
		BaseVM:  base,
		ID:      conv.ID,
		With:    withNames(conv, v.ID),
		MaxBody: maxBody,
	}
	for _, m := range conv.Messages {
		data.Messages = append(data.Messages, messageView{Tr: base.Tr, Msg: m, Mine: m.SenderID == v.ID})
	}
	templates.Render(w, r, "inbox_thread", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /inbox/{id}/reply                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type replyInput struct {
	Body string `validate:"required,max=5000" label:"inbox.field.body"`
}

// HandleReply sends a message. HTMX gets the new message bubble to append;
// plain forms are redirected back to the thread.
func (h *Handler) HandleReply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/inbox/" + id
	htmx := r.Header.Get("HX-Request") == "true"

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", back)
		return
	}
	body := normalize.Text(r.FormValue("body"))
	if res := inputval.Validate(replyInput{Body: body}); res.HasErrors() {
		err := apperr.EK(apperr.KindInvalidInput, "inbox.error.body_required", res.First())
		if htmx {
			h.ErrLog.HTMXLogBadRequest(w, r, "reply rejected", err, apperr.LocalizationKey(err))
			return
		}
		h.ErrLog.Banner(w, r, "reply rejected", err, back)
		return
	}

	v := auth.ViewerFrom(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msg, err := h.Messaging.SendMessage(ctx, v, id, body)
	if err != nil {
		h.ErrLog.Banner(w, r, "send message failed", err, back)
		return
	}

	if !htmx {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	templates.RenderSnippet(w, "inbox_message", messageView{Tr: i18n.FromContext(r.Context()), Msg: msg, Mine: true})
}
