package cache

// Entity — доменная сущность, запись которой инвалидирует регионы кеша.
type Entity string

const (
	EntityStudent    Entity = "student"
	EntityTeacher    Entity = "teacher"
	EntityCourse     Entity = "course"
	EntityEnrollment Entity = "enrollment"
	EntityAssignment Entity = "assignment"
	EntitySubmission Entity = "submission"
	EntityAttendance Entity = "attendance"
)

// Op — тип операции записи.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpGrade  Op = "grade"
)

// Evictions задаёт, какие регионы сбрасываются целиком после каждой
// операции записи. Инвалидация широкая: регион падает весь, без
// попыток вычислить затронутые ключи.
var Evictions = map[Entity]map[Op][]Region{
	EntityStudent: {
		OpCreate: {Students, ActiveStudents, StudentsByYear, StudentsByMajor},
		OpUpdate: {Students, Student, ActiveStudents, StudentsByYear, StudentsByMajor},
		OpDelete: {Students, Student, ActiveStudents, StudentsByYear, StudentsByMajor},
	},
	EntityTeacher: {
		OpCreate: {Teachers, ActiveTeachers, TeachersByDepartment, TeachersBySpec},
		OpUpdate: {Teachers, Teacher, ActiveTeachers, TeachersByDepartment, TeachersBySpec},
		OpDelete: {Teachers, Teacher, ActiveTeachers, TeachersByDepartment, TeachersBySpec},
	},
	EntityCourse: {
		OpCreate: {Courses, ActiveCourses, CoursesByTeacher, CoursesBySemesterYr, CourseByCode},
		OpUpdate: {Courses, Course, ActiveCourses, CoursesByTeacher, CoursesBySemesterYr, CourseByCode},
		OpDelete: {Courses, Course, ActiveCourses, CoursesByTeacher, CoursesBySemesterYr, CourseByCode},
	},
	EntityEnrollment: {
		OpCreate: {Enrollments, EnrollmentsByStudent, EnrollmentsByCourse, EnrollmentsBySemesterYr},
		OpUpdate: {Enrollments, Enrollment, EnrollmentsByStudent, EnrollmentsByCourse, EnrollmentsBySemesterYr},
		OpDelete: {Enrollments, Enrollment, EnrollmentsByStudent, EnrollmentsByCourse, EnrollmentsBySemesterYr},
	},
	EntityAssignment: {
		OpCreate: {Assignments, AssignmentsByCourse, AssignmentsByTeacher, AssignmentsByType, OverdueAssignments, UpcomingAssignments},
		OpUpdate: {Assignments, Assignment, AssignmentsByCourse, AssignmentsByTeacher, AssignmentsByType, OverdueAssignments, UpcomingAssignments},
		OpDelete: {Assignments, Assignment, AssignmentsByCourse, AssignmentsByTeacher, AssignmentsByType, OverdueAssignments, UpcomingAssignments},
	},
	EntitySubmission: {
		OpCreate: {Submissions, SubmissionsByStudent, SubmissionsByAssignment, SubmissionsByCourse, SubmissionsByStudentCrs},
		OpUpdate: {Submissions, Submission, SubmissionsByStudent, SubmissionsByAssignment, SubmissionsByCourse, SubmissionsByStudentCrs},
		OpDelete: {Submissions, Submission, SubmissionsByStudent, SubmissionsByAssignment, SubmissionsByCourse, SubmissionsByStudentCrs},
		OpGrade:  {Submissions, Submission, SubmissionsByAssignment, SubmissionsByCourse, UngradedSubmissions, UngradedByAssignment},
	},
	EntityAttendance: {
		OpCreate: {Attendance, AttendanceByStudent, AttendanceByCourse, AttendanceByDate, AttendanceByCourseRange, AttendanceByStudentRange},
		OpUpdate: {Attendance, AttendanceRecord, AttendanceByStudent, AttendanceByCourse, AttendanceByDate, AttendanceByCourseRange, AttendanceByStudentRange},
		OpDelete: {Attendance, AttendanceRecord, AttendanceByStudent, AttendanceByCourse, AttendanceByDate, AttendanceByCourseRange, AttendanceByStudentRange},
	},
}

// Invalidate сбрасывает все регионы, привязанные к операции над сущностью.
func (c *Cache) Invalidate(entity Entity, op Op) {
	for _, region := range Evictions[entity][op] {
		c.ClearRegion(region)
	}
}
