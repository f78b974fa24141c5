package models

import "time"

type EnrollmentStatus string

const (
	Enrolled  EnrollmentStatus = "ENROLLED"
	Dropped   EnrollmentStatus = "DROPPED"
	Completed EnrollmentStatus = "COMPLETED"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case Enrolled, Dropped, Completed:
		return true
	default:
		return false
	}
}

type Course struct {
	ID           int64     `db:"id" json:"id"`
	CourseCode   string    `db:"course_code" json:"courseCode"`
	CourseName   string    `db:"course_name" json:"courseName"`
	Description  string    `db:"description" json:"description"`
	Credits      int       `db:"credits" json:"credits"`
	Semester     string    `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academicYear"`
	Schedule     string    `db:"schedule" json:"schedule"`
	Room         string    `db:"room" json:"room"`
	MaxStudents  int       `db:"max_students" json:"maxStudents"`
	TeacherID    int64     `db:"teacher_id" json:"teacherId"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Enrollment — уникальная пара (student_id, course_id).
type Enrollment struct {
	ID             int64            `db:"id" json:"id"`
	StudentID      int64            `db:"student_id" json:"studentId"`
	CourseID       int64            `db:"course_id" json:"courseId"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollmentDate"`
	Grade          *string          `db:"grade" json:"grade,omitempty"`
	Status         EnrollmentStatus `db:"status" json:"status"`
}
