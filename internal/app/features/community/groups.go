// internal/app/features/community/groups.go
package community

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	communitysvc "github.com/dalemusser/edusphere/internal/app/services/community"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/formutil"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/navigation"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/optimistic"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /community/groups                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type groupsListData struct {
	viewdata.BaseVM
	Query    string
	Subject  string
	Mine     bool
	Subjects []string
	Cards    []groupCard
}

// filterGroups narrows groups to subject and lists every subject present
// in groups, so the subject picker keeps its options while filtered.
func filterGroups(groups []models.StudyGroup, subject string) ([]models.StudyGroup, []string) {
	subjects := lo.Uniq(lo.FilterMap(groups, func(g models.StudyGroup, _ int) (string, bool) {
		s := normalize.Subject(g.Subject)
		return s, s != ""
	}))
	sort.Strings(subjects)

	subject = normalize.Subject(subject)
	if subject == "" {
		return groups, subjects
	}
	return lo.Filter(groups, func(g models.StudyGroup, _ int) bool {
		return normalize.Subject(g.Subject) == subject
	}), subjects
}

// ServeGroups lists study groups. Typing in the search box re-requests the
// list with HX-Target=group-list and gets only the list fragment back.
func (h *Handler) ServeGroups(w http.ResponseWriter, r *http.Request) {
	v := auth.ViewerFrom(r)
	q := normalize.QueryParam(query.Get(r, "q"))
	subject := normalize.Subject(query.Get(r, "subject"))
	mine := query.Get(r, "mine") == "1"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	all, err := h.Community.GetStudyGroups(ctx, v, communitysvc.GroupFilter{Query: q, Mine: mine})
	if err != nil {
		if r.Header.Get("HX-Request") == "true" {
			h.ErrLog.HTMXLogServerError(w, r, "list study groups failed", err, apperr.LocalizationKey(err))
			return
		}
		h.ErrLog.LogServiceError(w, r, "list study groups failed", err, "/dashboard")
		return
	}

	groups, subjects := filterGroups(all, subject)
	data := groupsListData{
		BaseVM:   viewdata.NewBaseVM(r, "community.groups.title", "/dashboard"),
		Query:    q,
		Subject:  subject,
		Mine:     mine,
		Subjects: subjects,
		Cards: lo.Map(groups, func(g models.StudyGroup, _ int) groupCard {
			return newGroupCard(r, g)
		}),
	}

	if r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Target") == "group-list" {
		templates.RenderSnippet(w, "community_group_list", data)
		return
	}
	templates.Render(w, r, "community_groups", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /community/groups/new, POST /community/groups                            |
*─────────────────────────────────────────────────────────────────────────────*/

// Max group size accepted by the create form.
const maxGroupSize = 500

type createGroupInput struct {
	Name        string `validate:"required,max=120" label:"community.field.name"`
	Subject     string `validate:"required,max=60" label:"community.field.subject"`
	Description string `validate:"max=2000" label:"community.field.description"`
	MaxMembers  int    `validate:"min=0,max=500" label:"community.field.max_members"`
}

type newGroupData struct {
	formutil.Base
	Name        string
	Subject     string
	Description string
	MaxMembers  string
	SizeLimit   int
}

func (h *Handler) renderNewGroup(w http.ResponseWriter, r *http.Request, status int, data newGroupData, res *inputval.Result, errKey string) {
	formutil.SetBase(&data.Base, r, "community.groups.new_title", "/community/groups")
	data.SizeLimit = maxGroupSize
	data.ApplyResult(res)
	if errKey != "" {
		data.SetError(errKey)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "community_group_new", data)
}

// ServeNewGroup renders the create-group form.
func (h *Handler) ServeNewGroup(w http.ResponseWriter, r *http.Request) {
	h.renderNewGroup(w, r, http.StatusOK, newGroupData{}, nil, "")
}

// HandleCreateGroup validates and creates a study group.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/community/groups")
		return
	}

	data := newGroupData{
		Name:        normalize.Name(r.FormValue("name")),
		Subject:     normalize.Subject(r.FormValue("subject")),
		Description: normalize.Text(r.FormValue("description")),
		MaxMembers:  normalize.QueryParam(r.FormValue("max_members")),
	}
	in := createGroupInput{Name: data.Name, Subject: data.Subject, Description: data.Description}
	if data.MaxMembers != "" {
		n, err := strconv.Atoi(data.MaxMembers)
		if err != nil {
			n = -1
		}
		in.MaxMembers = n
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderNewGroup(w, r, http.StatusUnprocessableEntity, data, res, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Community.CreateStudyGroup(ctx, auth.ViewerFrom(r), communitysvc.CreateGroupInput{
		Name:        in.Name,
		Subject:     in.Subject,
		Description: in.Description,
		MaxMembers:  in.MaxMembers,
	})
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindConflict, apperr.KindInvalidInput:
			h.Log.Info("create study group rejected", zap.Error(err))
			h.renderNewGroup(w, r, apperr.HTTPStatus(err), data, nil, apperr.LocalizationKey(err))
		default:
			h.ErrLog.Banner(w, r, "create study group failed", err, "/community/groups/new")
		}
		return
	}

	h.Log.Info("study group created", zap.String("group_id", g.ID), zap.String("name", g.Name))
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success("community.groups.created"))
	}
	http.Redirect(w, r, "/community/groups", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /community/groups/{id}/join, /leave                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// groupCard is what the card template needs, both inside the list and
// when a join/leave response swaps a single card.
type groupCard struct {
	Tr        i18n.Translator
	CSRFToken string
	Group     models.StudyGroup
}

func newGroupCard(r *http.Request, g models.StudyGroup) groupCard {
	return groupCard{Tr: i18n.FromContext(r.Context()), CSRFToken: csrf.Token(r), Group: g}
}

// cardState rebuilds the card the browser showed before the click from
// the hidden fields every card posts with its join/leave button.
func cardState(r *http.Request) models.StudyGroup {
	count, _ := strconv.Atoi(r.FormValue("member_count"))
	limit, _ := strconv.Atoi(r.FormValue("max_members"))
	return models.StudyGroup{
		ID:          chi.URLParam(r, "id"),
		Name:        normalize.Name(r.FormValue("name")),
		Subject:     normalize.Subject(r.FormValue("subject")),
		Description: normalize.Text(r.FormValue("description")),
		MemberCount: max(count, 0),
		MaxMembers:  max(limit, 0),
		IsMember:    r.FormValue("is_member") == "true",
	}
}

func setMembership(join bool) func(models.StudyGroup) models.StudyGroup {
	return func(g models.StudyGroup) models.StudyGroup {
		if g.IsMember == join {
			return g
		}
		g.IsMember = join
		if join {
			g.MemberCount++
		} else if g.MemberCount > 0 {
			g.MemberCount--
		}
		return g
	}
}

// toggleMembership shows the requested membership immediately and keeps
// it if the service agrees. A rejection restores the card as it was.
func (h *Handler) toggleMembership(ctx context.Context, v models.Viewer, current models.StudyGroup, join bool) optimistic.Outcome[models.StudyGroup] {
	var confirmed models.StudyGroup
	out := optimistic.Run(ctx, current, setMembership(join), func(ctx context.Context) error {
		var err error
		if join {
			confirmed, err = h.Community.JoinStudyGroup(ctx, v, current.ID)
		} else {
			confirmed, err = h.Community.LeaveStudyGroup(ctx, v, current.ID)
		}
		return err
	})
	if !out.RolledBack && confirmed.ID != "" {
		confirmed.IsMember = join
		out.State = confirmed
	}
	return out
}

func (h *Handler) handleMembership(w http.ResponseWriter, r *http.Request, join bool) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "parse form failed", err, "error.invalid_input")
		return
	}
	v := auth.ViewerFrom(r)
	current := cardState(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out := h.toggleMembership(ctx, v, current, join)
	if out.RolledBack {
		h.Log.Warn("study group membership rolled back",
			zap.String("group_id", current.ID),
			zap.String("user_id", v.ID),
			zap.Bool("join", join),
			zap.Error(out.Err))
	}

	if r.Header.Get("HX-Request") != "true" {
		if out.RolledBack {
			h.ErrLog.Banner(w, r, "study group membership failed", out.Err, "/community/groups")
			return
		}
		http.Redirect(w, r, navigation.SafeBackURL(r, navigation.GroupsBackURL), http.StatusSeeOther)
		return
	}

	card := newGroupCard(r, out.State)
	templates.RenderSnippet(w, "community_group_card", card)
	if out.RolledBack {
		notices := []viewdata.NoticeVM{{Kind: string(flash.KindError), Text: card.Tr.T(apperr.LocalizationKey(out.Err))}}
		templates.RenderSnippet(w, "banner_snippet", notices)
	}
}

// HandleJoin joins the viewer to a group.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	h.handleMembership(w, r, true)
}

// HandleLeave removes the viewer from a group.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.handleMembership(w, r, false)
}
