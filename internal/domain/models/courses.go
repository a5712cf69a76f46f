// internal/domain/models/courses.go
package models

import "time"

// Material types.
const (
	MaterialDocument   = "document"
	MaterialVideo      = "video"
	MaterialLink       = "link"
	MaterialAssignment = "assignment"
)

// MaterialTypes lists valid material types in display order.
var MaterialTypes = []string{MaterialDocument, MaterialVideo, MaterialLink, MaterialAssignment}

// Course is a class taught by a teacher.
type Course struct {
	ID           string    `bson:"_id" json:"id"`
	Code         string    `bson:"code" json:"code"`
	Title        string    `bson:"title" json:"title"`
	TitleCI      string    `bson:"title_ci" json:"-"`
	Description  string    `bson:"description" json:"description"`
	TeacherID    string    `bson:"teacher_id" json:"teacher_id"`
	TeacherName  string    `bson:"teacher_name" json:"teacher_name"`
	StudentIDs   []string  `bson:"student_ids" json:"-"`
	StudentCount int       `bson:"student_count" json:"student_count"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Material is a resource attached to a course.
type Material struct {
	ID          string    `bson:"_id" json:"id"`
	CourseID    string    `bson:"course_id" json:"course_id"`
	Title       string    `bson:"title" json:"title"`
	Type        string    `bson:"type" json:"type"`
	URL         string    `bson:"url" json:"url"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// CourseStudent is an enrolled student as seen by the course teacher.
type CourseStudent struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Progress int    `json:"progress"` // percent complete
	Points   int64  `json:"points"`
}
