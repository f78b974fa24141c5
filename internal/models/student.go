package models

// Student — профиль ученика поверх users (id == users.id).
type Student struct {
	User
	StudentID string  `db:"student_id" json:"studentId"`
	YearLevel int     `db:"year_level" json:"yearLevel"`
	Major     string  `db:"major" json:"major"`
	GPA       float64 `db:"gpa" json:"gpa"`
}

// Teacher — профиль преподавателя поверх users.
type Teacher struct {
	User
	EmployeeID     string `db:"employee_id" json:"employeeId"`
	Department     string `db:"department" json:"department"`
	Specialization string `db:"specialization" json:"specialization"`
}
