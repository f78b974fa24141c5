package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/auth"
	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/metrics"
	"github.com/Spok95/school-management-api/internal/models"
	"github.com/Spok95/school-management-api/internal/notify"
)

// Server — HTTP-слой поверх репозиториев с кешем на чтениях
// и широкой инвалидацией на записях.
type Server struct {
	echo   *echo.Echo
	db     *sql.DB
	cache  *cache.Cache
	events *events.Publisher
	notify *notify.Service
	auth   *auth.Manager
	log    *zap.Logger
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func New(database *sql.DB, c *cache.Cache, pub *events.Publisher, n *notify.Service, am *auth.Manager, log *zap.Logger) *Server {
	s := &Server{
		echo:   echo.New(),
		db:     database,
		cache:  c,
		events: pub,
		notify: n,
		auth:   am,
		log:    log,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Validator = &requestValidator{validate: validator.New()}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.Use(s.requestID, s.requestLog)

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")
	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	v := api.Group("", s.authenticate)
	staff := []models.Role{models.RoleAdmin, models.RoleTeacher}
	admin := []models.Role{models.RoleAdmin}

	// students
	v.GET("/students", s.listStudents)
	v.GET("/students/active", s.listActiveStudents)
	v.GET("/students/:id", s.getStudent)
	v.GET("/students/code/:code", s.getStudentByCode)
	v.GET("/students/year/:year", s.listStudentsByYear)
	v.GET("/students/major/:major", s.listStudentsByMajor)
	v.POST("/students", s.createStudent, s.require(admin...))
	v.PUT("/students/:id", s.updateStudent, s.require(staff...))
	v.DELETE("/students/:id", s.deleteStudent, s.require(admin...))

	// teachers
	v.GET("/teachers", s.listTeachers)
	v.GET("/teachers/active", s.listActiveTeachers)
	v.GET("/teachers/:id", s.getTeacher)
	v.GET("/teachers/employee/:code", s.getTeacherByEmployeeID)
	v.GET("/teachers/department/:department", s.listTeachersByDepartment)
	v.GET("/teachers/specialization/:specialization", s.listTeachersBySpecialization)
	v.GET("/teachers/:id/course-count", s.teacherCourseCount)
	v.POST("/teachers", s.createTeacher, s.require(admin...))
	v.PUT("/teachers/:id", s.updateTeacher, s.require(staff...))
	v.DELETE("/teachers/:id", s.deleteTeacher, s.require(admin...))

	// courses
	v.GET("/courses", s.listCourses)
	v.GET("/courses/active", s.listActiveCourses)
	v.GET("/courses/:id", s.getCourse)
	v.GET("/courses/code/:code", s.getCourseByCode)
	v.GET("/courses/teacher/:id", s.listCoursesByTeacher)
	v.GET("/courses/student/:id", s.listCoursesByStudent)
	v.GET("/courses/semester/:semester/year/:year", s.listCoursesBySemesterYear)
	v.GET("/courses/:id/enrollment-count", s.courseEnrollmentCount)
	v.POST("/courses", s.createCourse, s.require(staff...))
	v.PUT("/courses/:id", s.updateCourse, s.require(staff...))
	v.DELETE("/courses/:id", s.deleteCourse, s.require(admin...))

	// enrollments
	v.GET("/enrollments", s.listEnrollments)
	v.GET("/enrollments/:id", s.getEnrollment)
	v.GET("/enrollments/student/:id", s.listEnrollmentsByStudent)
	v.GET("/enrollments/course/:id", s.listEnrollmentsByCourse)
	v.GET("/enrollments/semester/:semester/year/:year", s.listEnrollmentsBySemesterYear)
	v.GET("/enrollments/course/:id/count", s.enrollmentCountByCourse)
	v.GET("/enrollments/student/:id/count", s.enrollmentCountByStudent)
	v.POST("/enrollments", s.createEnrollment)
	v.PUT("/enrollments/:id", s.updateEnrollment, s.require(staff...))
	v.DELETE("/enrollments/:id", s.deleteEnrollment, s.require(staff...))

	// assignments
	v.GET("/assignments", s.listAssignments)
	v.GET("/assignments/:id", s.getAssignment)
	v.GET("/assignments/course/:id", s.listAssignmentsByCourse)
	v.GET("/assignments/teacher/:id", s.listAssignmentsByTeacher)
	v.GET("/assignments/type/:type", s.listAssignmentsByType)
	v.GET("/assignments/overdue", s.listOverdueAssignments)
	v.GET("/assignments/upcoming", s.listUpcomingAssignments)
	v.GET("/assignments/:id/submission-count", s.submissionCount, s.require(staff...))
	v.POST("/assignments", s.createAssignment, s.require(staff...))
	v.PUT("/assignments/:id", s.updateAssignment, s.require(staff...))
	v.DELETE("/assignments/:id", s.deleteAssignment, s.require(staff...))

	// submissions
	v.GET("/submissions", s.listSubmissions, s.require(staff...))
	v.GET("/submissions/:id", s.getSubmission)
	v.GET("/submissions/student/:id", s.listSubmissionsByStudent)
	v.GET("/submissions/assignment/:id", s.listSubmissionsByAssignment)
	v.GET("/submissions/course/:id", s.listSubmissionsByCourse)
	v.GET("/submissions/student/:studentId/course/:courseId", s.listSubmissionsByStudentCourse)
	v.GET("/submissions/late", s.listLateSubmissions, s.require(staff...))
	v.GET("/submissions/assignment/:id/average-grade", s.averageGradeByAssignment, s.require(staff...))
	v.GET("/submissions/ungraded", s.listUngradedSubmissions, s.require(staff...))
	v.GET("/submissions/ungraded/assignment/:id", s.listUngradedByAssignment, s.require(staff...))
	v.GET("/submissions/pending-count/teacher/:id", s.pendingGradesCount, s.require(staff...))
	v.POST("/submissions", s.createSubmission)
	v.PUT("/submissions/:id", s.updateSubmission)
	v.PUT("/submissions/:id/grade", s.gradeSubmission, s.require(staff...))
	v.DELETE("/submissions/:id", s.deleteSubmission)

	// attendance
	v.GET("/attendance", s.listAttendance, s.require(staff...))
	v.GET("/attendance/:id", s.getAttendance)
	v.GET("/attendance/student/:id", s.listAttendanceByStudent)
	v.GET("/attendance/course/:id", s.listAttendanceByCourse)
	v.GET("/attendance/date/:date", s.listAttendanceByDate)
	v.GET("/attendance/course/:id/range", s.listAttendanceByCourseRange)
	v.GET("/attendance/student/:id/range", s.listAttendanceByStudentRange)
	v.GET("/attendance/percentage/student/:studentId/course/:courseId", s.attendancePercentage)
	v.GET("/attendance/present-days/student/:studentId/course/:courseId", s.presentDaysCount)
	v.GET("/attendance/total-days/student/:studentId/course/:courseId", s.totalDaysCount)
	v.POST("/attendance", s.createAttendance, s.require(staff...))
	v.PUT("/attendance/:id", s.updateAttendance, s.require(staff...))
	v.DELETE("/attendance/:id", s.deleteAttendance, s.require(staff...))

	// reports
	v.GET("/reports/attendance/course/:id", s.attendanceReport, s.require(staff...))
	v.GET("/reports/grades/course/:id", s.gradesReport, s.require(staff...))
	v.GET("/reports/average-gpa", s.averageGPA, s.require(staff...))
}

func (s *Server) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "db not ok: "+err.Error())
	}
	metrics.ObserveDBPing(time.Since(t0))
	return c.String(http.StatusOK, "ok")
}

// Start поднимает сервер и аккуратно гасит его при отмене контекста.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return s.echo.Shutdown(shCtx)
	}
}
