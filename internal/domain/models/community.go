// internal/domain/models/community.go
package models

import "time"

// StudyGroup is a student-run group around a subject.
type StudyGroup struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	NameCI      string    `bson:"name_ci" json:"-"`
	Subject     string    `bson:"subject" json:"subject"`
	Description string    `bson:"description" json:"description"`
	OwnerID     string    `bson:"owner_id" json:"owner_id"`
	OwnerName   string    `bson:"owner_name" json:"owner_name"`
	MemberIDs   []string  `bson:"member_ids" json:"member_ids,omitempty"`
	MemberCount int       `bson:"member_count" json:"member_count"`
	MaxMembers  int       `bson:"max_members,omitempty" json:"max_members,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`

	// IsMember is relative to the viewer and never stored.
	IsMember bool `bson:"-" json:"is_member"`
}

// Full reports whether the group has reached its member cap.
func (g StudyGroup) Full() bool {
	return g.MaxMembers > 0 && g.MemberCount >= g.MaxMembers
}

// ForumPost is a discussion thread starter, optionally scoped to a group.
type ForumPost struct {
	ID         string    `bson:"_id" json:"id"`
	GroupID    string    `bson:"group_id,omitempty" json:"group_id,omitempty"`
	AuthorID   string    `bson:"author_id" json:"author_id"`
	AuthorName string    `bson:"author_name" json:"author_name"`
	Title      string    `bson:"title" json:"title"`
	Body       string    `bson:"body" json:"body"`
	Tags       []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	ReplyCount int       `bson:"reply_count" json:"reply_count"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// LeaderboardEntry is one ranked row of the points leaderboard.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}
