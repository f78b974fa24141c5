package models

import "time"

type AttendanceStatus string

const (
	Present AttendanceStatus = "PRESENT"
	Absent  AttendanceStatus = "ABSENT"
	Late    AttendanceStatus = "LATE"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case Present, Absent, Late:
		return true
	default:
		return false
	}
}

// Attendance — уникальная тройка (student_id, course_id, date).
type Attendance struct {
	ID        int64            `db:"id" json:"id"`
	StudentID int64            `db:"student_id" json:"studentId"`
	CourseID  int64            `db:"course_id" json:"courseId"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Remarks   *string          `db:"remarks" json:"remarks,omitempty"`
	MarkedBy  string           `db:"marked_by" json:"markedBy"`
	MarkedAt  time.Time        `db:"marked_at" json:"markedAt"`
}

// DailyAttendanceStats — агрегат за один день для события статистики.
type DailyAttendanceStats struct {
	Date         time.Time `json:"date"`
	PresentCount int64     `json:"presentCount"`
	AbsentCount  int64     `json:"absentCount"`
	LateCount    int64     `json:"lateCount"`
	TotalRecords int64     `json:"totalRecords"`
	Rate         float64   `json:"attendanceRate"`
}
