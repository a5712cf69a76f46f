// internal/app/features/flashcards/handler.go
package flashcards

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	cardsvc "github.com/dalemusser/edusphere/internal/app/services/flashcards"
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
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Handler struct {
	Cards  cardsvc.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(svc cardsvc.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Cards:  svc,
		ErrLog: errLog,
		Log:    logger,
	}
}

type cardInput struct {
	Deck  string `validate:"required,max=60" label:"flashcards.field.deck"`
	Front string `validate:"required,max=500" label:"flashcards.field.front"`
	Back  string `validate:"required,max=2000" label:"flashcards.field.back"`
}

// deckURL is the list page for deck, or all decks.
func deckURL(deck string) string {
	if deck == "" {
		return "/flashcards"
	}
	return "/flashcards?deck=" + url.QueryEscape(deck)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /flashcards                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

type listData struct {
	viewdata.BaseVM
	Deck  string
	Decks []string
	Cards []models.Flashcard
}

// filterDeck keeps the cards of deck (all when deck is empty) and returns
// every deck name so the tabs survive filtering.
func filterDeck(cards []models.Flashcard, deck string) ([]models.Flashcard, []string) {
	decks := cardsvc.Decks(cards)
	if deck == "" {
		return cards, decks
	}
	return lo.Filter(cards, func(c models.Flashcard, _ int) bool {
		return strings.EqualFold(c.Deck, deck)
	}), decks
}

// ServeList shows the viewer's cards grouped by deck tabs. ?deck= selects
// one deck.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	deck := normalize.QueryParam(r.URL.Query().Get("deck"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	all, err := h.Cards.ListFlashcards(ctx, auth.ViewerFrom(r), "")
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "list flashcards failed", err, "/dashboard")
		return
	}

	data := listData{BaseVM: viewdata.NewBaseVM(r, "flashcards.title", "/dashboard"), Deck: deck}
	data.Cards, data.Decks = filterDeck(all, deck)
	templates.Render(w, r, "flashcards_list", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Create / edit form                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

type formData struct {
	formutil.Base
	ID    string
	Deck  string
	Front string
	Back  string
	Decks []string
}

func (d formData) IsEdit() bool { return d.ID != "" }

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, data formData, res *inputval.Result, errKey string) {
	title := "flashcards.new_title"
	if data.IsEdit() {
		title = "flashcards.edit_title"
	}
	formutil.SetBase(&data.Base, r, title, deckURL(data.Deck))
	data.ApplyResult(res)
	if errKey != "" {
		data.SetError(errKey)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "flashcards_form", data)
}

func readForm(r *http.Request) formData {
	return formData{
		ID:    chi.URLParam(r, "id"),
		Deck:  normalize.Name(r.FormValue("deck")),
		Front: normalize.Text(r.FormValue("front")),
		Back:  normalize.Text(r.FormValue("back")),
	}
}

func (d formData) input() cardsvc.CardInput {
	return cardsvc.CardInput{Deck: d.Deck, Front: d.Front, Back: d.Back}
}

// ServeNew renders an empty card form, prefilling ?deck=.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formData{Deck: normalize.Name(r.URL.Query().Get("deck"))}, nil, "")
}

// ServeEdit renders the form for an existing card.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cards, err := h.Cards.ListFlashcards(ctx, auth.ViewerFrom(r), "")
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "load flashcard failed", err, "/flashcards")
		return
	}
	c, ok := lo.Find(cards, func(c models.Flashcard) bool { return c.ID == id })
	if !ok {
		h.ErrLog.LogServiceError(w, r, "flashcard not found", apperr.E(apperr.KindNotFound, "flashcard not found"), "/flashcards")
		return
	}
	h.renderForm(w, r, http.StatusOK, formData{ID: c.ID, Deck: c.Deck, Front: c.Front, Back: c.Back}, nil, "")
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/flashcards")
		return
	}
	data := readForm(r)
	if res := inputval.Validate(cardInput{Deck: data.Deck, Front: data.Front, Back: data.Back}); res.HasErrors() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, data, res, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v := auth.ViewerFrom(r)
	var (
		c   models.Flashcard
		err error
		key = "flashcards.created"
	)
	if data.IsEdit() {
		c, err = h.Cards.UpdateFlashcard(ctx, v, data.ID, data.input())
		key = "flashcards.updated"
	} else {
		c, err = h.Cards.CreateFlashcard(ctx, v, data.input())
	}
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidInput) {
			h.renderForm(w, r, http.StatusUnprocessableEntity, data, nil, apperr.LocalizationKey(err))
			return
		}
		h.ErrLog.Banner(w, r, "save flashcard failed", err, deckURL(data.Deck))
		return
	}
	if c.Deck == "" {
		c.Deck = data.Deck
	}
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success(key))
	}
	http.Redirect(w, r, deckURL(c.Deck), http.StatusSeeOther)
}

// HandleCreate adds a card to a deck. Naming a new deck creates it.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) { h.save(w, r) }

// HandleUpdate saves an edited card.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) { h.save(w, r) }

/*─────────────────────────────────────────────────────────────────────────────*
| POST /flashcards/{id}/delete                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDelete removes a card. HTMX callers get an empty body so the card
// element is swapped out.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := deckURL(normalize.Name(r.FormValue("deck")))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Cards.DeleteFlashcard(ctx, auth.ViewerFrom(r), id); err != nil {
		h.ErrLog.Banner(w, r, "delete flashcard failed", err, back)
		return
	}
	if r.Header.Get("HX-Request") == "true" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success("flashcards.deleted"))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
