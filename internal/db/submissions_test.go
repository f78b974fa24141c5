//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/models"
	"github.com/Spok95/school-management-api/internal/testutil/testdb"
)

type fixture struct {
	studentID    int64
	teacherID    int64
	courseID     int64
	assignmentID int64
	dueDate      time.Time
}

// seedCourse создаёт студента, преподавателя, курс с записью студента
// и задание со сроком сдачи через сутки.
func seedCourse(t *testing.T, ctx context.Context, database *sql.DB) fixture {
	t.Helper()

	studentID, err := db.CreateStudent(ctx, database, newStudent("student@school.local", "S-100"), "hash")
	if err != nil {
		t.Fatal(err)
	}
	teacherID, err := db.CreateTeacher(ctx, database, models.Teacher{
		User: models.User{
			FirstName: "Пётр", LastName: "Петров",
			Email: "teacher@school.local", Role: models.RoleTeacher,
		},
		EmployeeID: "T-100",
		Department: "математика",
	}, "hash")
	if err != nil {
		t.Fatal(err)
	}
	courseID, err := db.CreateCourse(ctx, database, models.Course{
		CourseCode:   "MATH-101",
		CourseName:   "Алгебра",
		Semester:     "осень",
		AcademicYear: "2026/2027",
		TeacherID:    teacherID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateEnrollment(ctx, database, models.Enrollment{
		StudentID:      studentID,
		CourseID:       courseID,
		EnrollmentDate: time.Now(),
		Status:         models.Enrolled,
	}); err != nil {
		t.Fatal(err)
	}
	due := time.Now().Add(24 * time.Hour)
	assignmentID, err := db.CreateAssignment(ctx, database, models.Assignment{
		CourseID:  courseID,
		Title:     "Контрольная",
		DueDate:   due,
		MaxPoints: 100,
		Type:      models.Quiz,
	})
	if err != nil {
		t.Fatal(err)
	}
	return fixture{studentID, teacherID, courseID, assignmentID, due}
}

func TestSubmissions_IsLateComputedAtCreation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)

	onTimeID, err := db.CreateSubmission(ctx, h.DB, models.Submission{
		AssignmentID: fx.assignmentID,
		StudentID:    fx.studentID,
		Content:      "решение",
		SubmittedAt:  fx.dueDate.Add(-time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	onTime, err := db.GetSubmissionByID(ctx, h.DB, onTimeID)
	if err != nil {
		t.Fatal(err)
	}
	if onTime.IsLate {
		t.Fatal("сдача до срока помечена опоздавшей")
	}

	lateStudentID, err := db.CreateStudent(ctx, h.DB, newStudent("late@school.local", "S-101"), "hash")
	if err != nil {
		t.Fatal(err)
	}
	lateID, err := db.CreateSubmission(ctx, h.DB, models.Submission{
		AssignmentID: fx.assignmentID,
		StudentID:    lateStudentID,
		Content:      "поздно",
		SubmittedAt:  fx.dueDate.Add(time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	late, err := db.GetSubmissionByID(ctx, h.DB, lateID)
	if err != nil {
		t.Fatal(err)
	}
	if !late.IsLate {
		t.Fatal("сдача после срока не помечена опоздавшей")
	}
}

func TestSubmissions_DuplicatePerAssignment(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)
	sub := models.Submission{
		AssignmentID: fx.assignmentID,
		StudentID:    fx.studentID,
		Content:      "решение",
		SubmittedAt:  time.Now(),
	}
	if _, err := db.CreateSubmission(ctx, h.DB, sub); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateSubmission(ctx, h.DB, sub); !errors.Is(err, db.ErrDuplicate) {
		t.Fatalf("ожидали ErrDuplicate, получили %v", err)
	}
}

func TestSubmissions_GradedIsImmutable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)
	id, err := db.CreateSubmission(ctx, h.DB, models.Submission{
		AssignmentID: fx.assignmentID,
		StudentID:    fx.studentID,
		Content:      "решение",
		SubmittedAt:  time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.GradeSubmission(ctx, h.DB, id, "85", nil, "Пётр Петров"); err != nil {
		t.Fatal(err)
	}

	err = db.UpdateSubmission(ctx, h.DB, models.Submission{ID: id, Content: "исправил"})
	if !errors.Is(err, db.ErrGradedImmutable) {
		t.Fatalf("ожидали ErrGradedImmutable при изменении, получили %v", err)
	}
	if err := db.DeleteSubmission(ctx, h.DB, id); !errors.Is(err, db.ErrGradedImmutable) {
		t.Fatalf("ожидали ErrGradedImmutable при удалении, получили %v", err)
	}
}

func TestSubmissions_AverageNumericGrade(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)

	// Второе задание того же курса, чтобы было что усреднять.
	second, err := db.CreateAssignment(ctx, h.DB, models.Assignment{
		CourseID:  fx.courseID,
		Title:     "Домашняя работа",
		DueDate:   time.Now().Add(48 * time.Hour),
		MaxPoints: 100,
		Type:      models.Homework,
	})
	if err != nil {
		t.Fatal(err)
	}

	first, err := db.CreateSubmission(ctx, h.DB, models.Submission{
		AssignmentID: fx.assignmentID, StudentID: fx.studentID,
		Content: "a", SubmittedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	secondSub, err := db.CreateSubmission(ctx, h.DB, models.Submission{
		AssignmentID: second, StudentID: fx.studentID,
		Content: "b", SubmittedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.GradeSubmission(ctx, h.DB, first, "80", nil, "x"); err != nil {
		t.Fatal(err)
	}
	if err := db.GradeSubmission(ctx, h.DB, secondSub, "зачёт", nil, "x"); err != nil {
		t.Fatal(err)
	}

	avg, err := db.AverageNumericGradeForStudent(ctx, h.DB, fx.studentID)
	if err != nil {
		t.Fatal(err)
	}
	// Нечисловая оценка не участвует в среднем.
	if !avg.Valid || avg.Float64 != 80 {
		t.Fatalf("ожидали среднее 80, получили %+v", avg)
	}
}

func TestSubmissions_LateListAndPerAssignmentStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)
	secondStudent, err := db.CreateStudent(ctx, h.DB, newStudent("second@school.local", "S-102"), "hash")
	if err != nil {
		t.Fatal(err)
	}

	onTime, err := db.CreateSubmission(ctx, h.DB, models.Submission{
		AssignmentID: fx.assignmentID, StudentID: fx.studentID,
		Content: "вовремя", SubmittedAt: fx.dueDate.Add(-time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	lateID, err := db.CreateSubmission(ctx, h.DB, models.Submission{
		AssignmentID: fx.assignmentID, StudentID: secondStudent,
		Content: "поздно", SubmittedAt: fx.dueDate.Add(time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	late, err := db.ListLateSubmissions(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if len(late) != 1 || late[0].ID != lateID {
		t.Fatalf("ожидали одну опоздавшую сдачу %d, получили %+v", lateID, late)
	}

	count, err := db.CountSubmissionsByAssignment(ctx, h.DB, fx.assignmentID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("ожидали 2 сдачи по заданию, получили %d", count)
	}

	if err := db.GradeSubmission(ctx, h.DB, onTime, "90", nil, "x"); err != nil {
		t.Fatal(err)
	}
	if err := db.GradeSubmission(ctx, h.DB, lateID, "зачёт", nil, "x"); err != nil {
		t.Fatal(err)
	}
	avg, err := db.AverageGradeByAssignment(ctx, h.DB, fx.assignmentID)
	if err != nil {
		t.Fatal(err)
	}
	// «зачёт» в среднее не входит.
	if !avg.Valid || avg.Float64 != 90 {
		t.Fatalf("ожидали среднее 90 по заданию, получили %+v", avg)
	}
}

func TestAttendance_PercentageZeroGuard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)

	pct, err := db.AttendancePercentage(ctx, h.DB, fx.studentID, fx.courseID)
	if err != nil {
		t.Fatal(err)
	}
	if pct != 0 {
		t.Fatalf("без записей ожидали 0, получили %v", pct)
	}

	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	for i, status := range []models.AttendanceStatus{models.Present, models.Present, models.Absent, models.Late} {
		if _, err := db.CreateAttendance(ctx, h.DB, models.Attendance{
			StudentID: fx.studentID,
			CourseID:  fx.courseID,
			Date:      day.AddDate(0, 0, i),
			Status:    status,
			MarkedBy:  "Пётр Петров",
		}); err != nil {
			t.Fatal(err)
		}
	}

	pct, err = db.AttendancePercentage(ctx, h.DB, fx.studentID, fx.courseID)
	if err != nil {
		t.Fatal(err)
	}
	if pct != 50 {
		t.Fatalf("2 из 4 присутствий — ожидали 50, получили %v", pct)
	}
}

func TestAttendance_UniqueTriple(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)
	record := models.Attendance{
		StudentID: fx.studentID,
		CourseID:  fx.courseID,
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.Present,
		MarkedBy:  "Пётр Петров",
	}
	if _, err := db.CreateAttendance(ctx, h.DB, record); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateAttendance(ctx, h.DB, record); !errors.Is(err, db.ErrDuplicate) {
		t.Fatalf("ожидали ErrDuplicate для повторной отметки, получили %v", err)
	}
}

func TestAttendance_DayCounts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	for i, status := range []models.AttendanceStatus{models.Present, models.Absent, models.Present} {
		if _, err := db.CreateAttendance(ctx, h.DB, models.Attendance{
			StudentID: fx.studentID,
			CourseID:  fx.courseID,
			Date:      day.AddDate(0, 0, i),
			Status:    status,
			MarkedBy:  "Пётр Петров",
		}); err != nil {
			t.Fatal(err)
		}
	}

	present, err := db.CountPresentDays(ctx, h.DB, fx.studentID, fx.courseID)
	if err != nil {
		t.Fatal(err)
	}
	if present != 2 {
		t.Fatalf("ожидали 2 дня присутствия, получили %d", present)
	}
	total, err := db.CountTotalDays(ctx, h.DB, fx.studentID, fx.courseID)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("ожидали 3 отмеченных дня, получили %d", total)
	}
}

func TestEnrollments_ActiveCountByStudent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)
	secondCourse, err := db.CreateCourse(ctx, h.DB, models.Course{
		CourseCode:   "MATH-102",
		CourseName:   "Геометрия",
		Semester:     "осень",
		AcademicYear: "2026/2027",
		TeacherID:    fx.teacherID,
	})
	if err != nil {
		t.Fatal(err)
	}
	dropped, err := db.CreateEnrollment(ctx, h.DB, models.Enrollment{
		StudentID:      fx.studentID,
		CourseID:       secondCourse,
		EnrollmentDate: time.Now(),
		Status:         models.Enrolled,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.DropEnrollment(ctx, h.DB, dropped); err != nil {
		t.Fatal(err)
	}

	count, err := db.CountActiveEnrollmentsByStudent(ctx, h.DB, fx.studentID)
	if err != nil {
		t.Fatal(err)
	}
	// DROPPED не считается активной записью.
	if count != 1 {
		t.Fatalf("ожидали одну активную запись, получили %d", count)
	}
}

func TestAttendance_DailyStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedCourse(t, ctx, h.DB)
	second, err := db.CreateStudent(ctx, h.DB, newStudent("second@school.local", "S-102"), "hash")
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for _, rec := range []models.Attendance{
		{StudentID: fx.studentID, CourseID: fx.courseID, Date: day, Status: models.Present, MarkedBy: "x"},
		{StudentID: second, CourseID: fx.courseID, Date: day, Status: models.Late, MarkedBy: "x"},
	} {
		if _, err := db.CreateAttendance(ctx, h.DB, rec); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := db.GetDailyAttendanceStats(ctx, h.DB, day)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRecords != 2 || stats.PresentCount != 1 || stats.LateCount != 1 {
		t.Fatalf("неожиданная статистика: %+v", stats)
	}
	if stats.Rate != 50 {
		t.Fatalf("ожидали долю 50, получили %v", stats.Rate)
	}
}
