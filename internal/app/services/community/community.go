// Package community wraps study groups, forum posts and the leaderboard.
package community

import (
	"context"

	"github.com/dalemusser/edusphere/internal/app/system/paging"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// GroupFilter narrows GetStudyGroups.
type GroupFilter struct {
	Query   string `json:"q,omitempty"`
	Subject string `json:"subject,omitempty"`
	Mine    bool   `json:"mine,omitempty"`
}

// PostFilter narrows GetForumPosts. An empty GroupID means every group.
type PostFilter struct {
	GroupID string
	Page    paging.Page
}

// CreateGroupInput is the body of CreateStudyGroup.
type CreateGroupInput struct {
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	MaxMembers  int    `json:"max_members,omitempty"`
}

// CreatePostInput is the body of CreateForumPost. Body is sanitized HTML.
type CreatePostInput struct {
	GroupID string   `json:"group_id,omitempty"`
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags,omitempty"`
}

// Service is the CommunityService wrapper.
type Service interface {
	GetStudyGroups(ctx context.Context, v models.Viewer, f GroupFilter) ([]models.StudyGroup, error)
	CreateStudyGroup(ctx context.Context, v models.Viewer, in CreateGroupInput) (models.StudyGroup, error)
	JoinStudyGroup(ctx context.Context, v models.Viewer, groupID string) (models.StudyGroup, error)
	LeaveStudyGroup(ctx context.Context, v models.Viewer, groupID string) (models.StudyGroup, error)
	GetForumPosts(ctx context.Context, v models.Viewer, f PostFilter) ([]models.ForumPost, error)
	CreateForumPost(ctx context.Context, v models.Viewer, in CreatePostInput) (models.ForumPost, error)
	// GetLeaderboard returns one page of ranked entries plus one look-ahead row.
	GetLeaderboard(ctx context.Context, v models.Viewer, p paging.Page) ([]models.LeaderboardEntry, error)
}
