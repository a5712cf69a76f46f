// internal/app/features/community/leaderboard.go
package community

import (
	"context"
	"net/http"

	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/paging"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type leaderboardData struct {
	viewdata.BaseVM
	Entries []models.LeaderboardEntry
	Range   paging.Range
	Paging  paging.Result
}

// ServeLeaderboard shows ranked points. Numbers are formatted per locale
// in the template.
func (h *Handler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entries, err := h.Community.GetLeaderboard(ctx, auth.ViewerFrom(r), page)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "load leaderboard failed", err, "/dashboard")
		return
	}
	res := paging.Trim(&entries, page)

	templates.Render(w, r, "community_leaderboard", leaderboardData{
		BaseVM:  viewdata.NewBaseVM(r, "community.leaderboard.title", "/dashboard"),
		Entries: entries,
		Range:   paging.ComputeRange(page, len(entries)),
		Paging:  res,
	})
}
