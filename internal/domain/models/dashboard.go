// internal/domain/models/dashboard.go
package models

// StudentSummary feeds the student dashboard.
type StudentSummary struct {
	Groups         []StudyGroup `json:"groups"`
	RecentNotes    []Note       `json:"recent_notes"`
	FlashcardCount int64        `json:"flashcard_count"`
	Points         int64        `json:"points"`
	Rank           int          `json:"rank"`
}

// TeacherSummary feeds the teacher dashboard.
type TeacherSummary struct {
	Courses        []Course            `json:"courses"`
	RecentSessions []WhiteboardSession `json:"recent_sessions"`
}

// ChildProgress is one child as shown to a parent.
type ChildProgress struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Points     int64  `json:"points"`
	Rank       int    `json:"rank"`
	GroupCount int    `json:"group_count"`
}

// ParentSummary feeds the parent dashboard.
type ParentSummary struct {
	Children []ChildProgress `json:"children"`
}

// AdminSummary feeds the admin dashboard.
type AdminSummary struct {
	UsersByRole map[string]int64 `json:"users_by_role"`
	Groups      int64            `json:"groups"`
	Posts       int64            `json:"posts"`
	Courses     int64            `json:"courses"`
}
