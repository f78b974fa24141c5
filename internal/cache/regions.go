package cache

import "time"

// Region — логическое пространство ключей со своим TTL.
type Region string

const (
	Students             Region = "students"
	Student              Region = "student"
	ActiveStudents       Region = "active-students"
	StudentsByYear       Region = "students-by-year"
	StudentsByMajor      Region = "students-by-major"
	Teachers             Region = "teachers"
	Teacher              Region = "teacher"
	ActiveTeachers       Region = "active-teachers"
	TeachersByDepartment Region = "teachers-by-department"
	TeachersBySpec       Region = "teachers-by-specialization"
	TeacherByEmployee    Region = "teacher-by-employee-id"

	Courses              Region = "courses"
	Course               Region = "course"
	ActiveCourses        Region = "active-courses"
	CoursesByTeacher     Region = "courses-by-teacher"
	CoursesByStudent     Region = "courses-by-student"
	CoursesBySemesterYr  Region = "courses-by-semester-year"
	CourseByCode         Region = "course-by-code"
	CourseEnrollmentCnt  Region = "course-enrollment-count"
	TeacherCourseCount   Region = "teacher-course-count"

	Enrollments             Region = "enrollments"
	Enrollment              Region = "enrollment"
	EnrollmentsByStudent    Region = "enrollments-by-student"
	EnrollmentsByCourse     Region = "enrollments-by-course"
	EnrollmentsBySemesterYr Region = "enrollments-by-semester-year"
	EnrollmentCountByCourse Region = "enrollment-count-by-course"
	EnrollmentCountByStud   Region = "enrollment-count-by-student"

	Assignments          Region = "assignments"
	Assignment           Region = "assignment"
	AssignmentsByCourse  Region = "assignments-by-course"
	AssignmentsByTeacher Region = "assignments-by-teacher"
	AssignmentsByType    Region = "assignments-by-type"
	OverdueAssignments   Region = "overdue-assignments"
	UpcomingAssignments  Region = "upcoming-assignments"

	Submissions             Region = "submissions"
	Submission              Region = "submission"
	SubmissionsByStudent    Region = "submissions-by-student"
	SubmissionsByAssignment Region = "submissions-by-assignment"
	SubmissionsByCourse     Region = "submissions-by-course"
	SubmissionsByStudentCrs Region = "submissions-by-student-course"
	UngradedSubmissions     Region = "ungraded-submissions"
	UngradedByAssignment    Region = "ungraded-submissions-by-assignment"
	PendingGradesCount      Region = "pending-grades-count"
	LateSubmissions         Region = "late-submissions"
	AverageGradeByAssign    Region = "average-grade-by-assignment"

	Attendance               Region = "attendance"
	AttendanceRecord         Region = "attendance-record"
	AttendanceByStudent      Region = "attendance-by-student"
	AttendanceByCourse       Region = "attendance-by-course"
	AttendanceByDate         Region = "attendance-by-date"
	AttendanceByCourseRange  Region = "attendance-by-course-date-range"
	AttendanceByStudentRange Region = "attendance-by-student-date-range"
	AttendancePercentage     Region = "attendance-percentage"
	PresentDaysCount         Region = "present-days-count"
	TotalDaysCount           Region = "total-days-count"

	AverageGPA Region = "average-gpa"
)

// DefaultTTL применяется к регионам, не перечисленным в ttlByRegion.
const DefaultTTL = time.Hour

// ttlByRegion: чем быстрее устаревают данные, тем короче TTL.
var ttlByRegion = map[Region]time.Duration{
	UngradedSubmissions:  15 * time.Minute,
	UngradedByAssignment: 15 * time.Minute,
	OverdueAssignments:   15 * time.Minute,

	Submissions:             30 * time.Minute,
	Submission:              30 * time.Minute,
	SubmissionsByStudent:    30 * time.Minute,
	SubmissionsByAssignment: 30 * time.Minute,
	SubmissionsByCourse:     30 * time.Minute,
	SubmissionsByStudentCrs: 30 * time.Minute,
	UpcomingAssignments:     30 * time.Minute,
	PendingGradesCount:      30 * time.Minute,
	LateSubmissions:         30 * time.Minute,
	AverageGradeByAssign:    30 * time.Minute,

	ActiveStudents:       time.Hour,
	ActiveTeachers:       time.Hour,
	Assignments:          time.Hour,
	Assignment:           time.Hour,
	AssignmentsByCourse:  time.Hour,
	AssignmentsByTeacher: time.Hour,
	AssignmentsByType:    time.Hour,

	Students:                 2 * time.Hour,
	Student:                  2 * time.Hour,
	StudentsByYear:           2 * time.Hour,
	StudentsByMajor:          2 * time.Hour,
	Teachers:                 2 * time.Hour,
	Teacher:                  2 * time.Hour,
	TeachersByDepartment:     2 * time.Hour,
	TeachersBySpec:           2 * time.Hour,
	Attendance:               2 * time.Hour,
	AttendanceRecord:         2 * time.Hour,
	AttendanceByStudent:      2 * time.Hour,
	AttendanceByCourse:       2 * time.Hour,
	AttendanceByDate:         2 * time.Hour,
	AttendanceByCourseRange:  2 * time.Hour,
	AttendanceByStudentRange: 2 * time.Hour,
	CoursesByStudent:         2 * time.Hour,
	EnrollmentsByStudent:     2 * time.Hour,
	EnrollmentCountByStud:    2 * time.Hour,
	TeacherByEmployee:        2 * time.Hour,

	Enrollments:             3 * time.Hour,
	Enrollment:              3 * time.Hour,
	EnrollmentsByCourse:     3 * time.Hour,
	EnrollmentCountByCourse: 3 * time.Hour,

	Courses:              4 * time.Hour,
	Course:               4 * time.Hour,
	ActiveCourses:        4 * time.Hour,
	CoursesByTeacher:     4 * time.Hour,
	CourseByCode:         4 * time.Hour,
	AttendancePercentage: 4 * time.Hour,
	CourseEnrollmentCnt:  4 * time.Hour,
	PresentDaysCount:     4 * time.Hour,
	TotalDaysCount:       4 * time.Hour,

	CoursesBySemesterYr:     6 * time.Hour,
	EnrollmentsBySemesterYr: 6 * time.Hour,
	AverageGPA:              6 * time.Hour,
	TeacherCourseCount:      6 * time.Hour,
}

// TTL возвращает время жизни записей региона.
func TTL(r Region) time.Duration {
	if d, ok := ttlByRegion[r]; ok {
		return d
	}
	return DefaultTTL
}
