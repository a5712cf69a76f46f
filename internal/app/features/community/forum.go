// internal/app/features/community/forum.go
package community

import (
	"context"
	"html/template"
	"net/http"

	communitysvc "github.com/dalemusser/edusphere/internal/app/services/community"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/formutil"
	"github.com/dalemusser/edusphere/internal/app/system/htmlsanitize"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/paging"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type postRow struct {
	models.ForumPost
	BodyHTML template.HTML
}

type forumData struct {
	viewdata.BaseVM
	GroupID string
	Posts   []postRow
	Range   paging.Range
	Paging  paging.Result
}

// ServeForum lists forum posts, newest first, for one group or all.
func (h *Handler) ServeForum(w http.ResponseWriter, r *http.Request) {
	groupID := normalize.QueryParam(query.Get(r, "group"))
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	posts, err := h.Community.GetForumPosts(ctx, auth.ViewerFrom(r), communitysvc.PostFilter{GroupID: groupID, Page: page})
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "list forum posts failed", err, "/community/groups")
		return
	}
	res := paging.Trim(&posts, page)

	data := forumData{
		BaseVM:  viewdata.NewBaseVM(r, "community.forum.title", "/community/groups"),
		GroupID: groupID,
		Posts: lo.Map(posts, func(p models.ForumPost, _ int) postRow {
			return postRow{ForumPost: p, BodyHTML: htmlsanitize.PrepareForDisplay(p.Body)}
		}),
		Range:  paging.ComputeRange(page, len(posts)),
		Paging: res,
	}
	templates.Render(w, r, "community_forum", data)
}

type createPostInput struct {
	Title string `validate:"required,max=200" label:"community.field.title"`
	Body  string `validate:"required,max=10000" label:"community.field.body"`
}

type newPostData struct {
	formutil.Base
	GroupID string
	Title   string
	Body    string
	Tags    string
}

func (h *Handler) renderNewPost(w http.ResponseWriter, r *http.Request, status int, data newPostData, res *inputval.Result, errKey string) {
	formutil.SetBase(&data.Base, r, "community.forum.new_title", "/community/forum")
	data.ApplyResult(res)
	if errKey != "" {
		data.SetError(errKey)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "community_post_new", data)
}

// ServeNewPost renders the post form, optionally scoped to ?group=.
func (h *Handler) ServeNewPost(w http.ResponseWriter, r *http.Request) {
	h.renderNewPost(w, r, http.StatusOK, newPostData{GroupID: normalize.QueryParam(query.Get(r, "group"))}, nil, "")
}

// HandleCreatePost validates and publishes a forum post.
func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/community/forum")
		return
	}
	data := newPostData{
		GroupID: normalize.QueryParam(r.FormValue("group_id")),
		Title:   normalize.Name(r.FormValue("title")),
		Body:    normalize.Text(r.FormValue("body")),
		Tags:    normalize.QueryParam(r.FormValue("tags")),
	}
	// A body of only markup counts as empty.
	in := createPostInput{Title: data.Title, Body: htmlsanitize.StripTags(data.Body)}
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderNewPost(w, r, http.StatusUnprocessableEntity, data, res, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Community.CreateForumPost(ctx, auth.ViewerFrom(r), communitysvc.CreatePostInput{
		GroupID: data.GroupID,
		Title:   data.Title,
		Body:    htmlsanitize.Sanitize(data.Body),
		Tags:    normalize.Tags(data.Tags),
	})
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidInput) || apperr.Is(err, apperr.KindForbidden) {
			h.Log.Info("create forum post rejected", zap.Error(err))
			h.renderNewPost(w, r, apperr.HTTPStatus(err), data, nil, apperr.LocalizationKey(err))
			return
		}
		h.ErrLog.Banner(w, r, "create forum post failed", err, "/community/forum")
		return
	}

	h.Log.Info("forum post created", zap.String("post_id", p.ID), zap.String("group_id", p.GroupID))
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success("community.forum.created"))
	}
	back := "/community/forum"
	if p.GroupID != "" {
		back += "?group=" + p.GroupID
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
