package models

import "time"

type AssignmentType string

const (
	Homework AssignmentType = "HOMEWORK"
	Quiz     AssignmentType = "QUIZ"
	Exam     AssignmentType = "EXAM"
	Project  AssignmentType = "PROJECT"
	Lab      AssignmentType = "LAB"
)

func (t AssignmentType) Valid() bool {
	switch t {
	case Homework, Quiz, Exam, Project, Lab:
		return true
	default:
		return false
	}
}

type Assignment struct {
	ID          int64          `db:"id" json:"id"`
	CourseID    int64          `db:"course_id" json:"courseId"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	DueDate     time.Time      `db:"due_date" json:"dueDate"`
	MaxPoints   int            `db:"max_points" json:"maxPoints"`
	Type        AssignmentType `db:"type" json:"type"`
	IsActive    bool           `db:"is_active" json:"isActive"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// Submission — уникальная пара (student_id, assignment_id).
// IsLate вычисляется один раз при создании и дальше не пересчитывается.
type Submission struct {
	ID           int64      `db:"id" json:"id"`
	StudentID    int64      `db:"student_id" json:"studentId"`
	AssignmentID int64      `db:"assignment_id" json:"assignmentId"`
	Content      string     `db:"content" json:"content"`
	SubmittedAt  time.Time  `db:"submitted_at" json:"submittedAt"`
	Grade        *string    `db:"grade" json:"grade,omitempty"`
	Feedback     *string    `db:"feedback" json:"feedback,omitempty"`
	IsLate       bool       `db:"is_late" json:"isLate"`
	GradedAt     *time.Time `db:"graded_at" json:"gradedAt,omitempty"`
	GradedBy     *string    `db:"graded_by" json:"gradedBy,omitempty"`
}
