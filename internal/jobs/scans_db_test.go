//go:build testutil
// +build testutil

package jobs

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/models"
	"github.com/Spok95/school-management-api/internal/notify"
	"github.com/Spok95/school-management-api/internal/testutil/testdb"
)

// collector копит события топика для проверок после Close().
type collector struct {
	mu  sync.Mutex
	evs []events.Event
}

func (c *collector) handle(ev events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evs = append(c.evs, ev)
}

func (c *collector) byType(typ string) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []events.Event
	for _, ev := range c.evs {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

type seeded struct {
	studentID    int64
	teacherID    int64
	courseID     int64
	assignmentID int64
}

// seedOverdue создаёт курс с записанным студентом и заданием,
// срок сдачи которого уже истёк.
func seedOverdue(t *testing.T, ctx context.Context, database *sql.DB) seeded {
	t.Helper()

	studentID, err := db.CreateStudent(ctx, database, models.Student{
		User: models.User{
			FirstName: "Иван", LastName: "Иванов",
			Email: "student@school.local", Role: models.RoleStudent,
		},
		StudentID: "S-200",
		YearLevel: 2,
		Major:     "информатика",
	}, "hash")
	if err != nil {
		t.Fatal(err)
	}
	teacherID, err := db.CreateTeacher(ctx, database, models.Teacher{
		User: models.User{
			FirstName: "Пётр", LastName: "Петров",
			Email: "teacher@school.local", Role: models.RoleTeacher,
		},
		EmployeeID: "T-200",
		Department: "математика",
	}, "hash")
	if err != nil {
		t.Fatal(err)
	}
	courseID, err := db.CreateCourse(ctx, database, models.Course{
		CourseCode:   "MATH-201",
		CourseName:   "Геометрия",
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
	assignmentID, err := db.CreateAssignment(ctx, database, models.Assignment{
		CourseID:  courseID,
		Title:     "Просроченная контрольная",
		DueDate:   time.Now().Add(-time.Hour),
		MaxPoints: 100,
		Type:      models.Quiz,
	})
	if err != nil {
		t.Fatal(err)
	}
	return seeded{studentID, teacherID, courseID, assignmentID}
}

func TestOverdueScan_OneEventOneTeacherNotice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedOverdue(t, ctx, h.DB)

	log := zap.NewNop()
	pub := events.NewPublisher(log, 64)
	var assignmentEvs, notifyEvs collector
	pub.Subscribe(events.TopicAssignmentEvents, assignmentEvs.handle)
	pub.Subscribe(events.TopicNotificationEvents, notifyEvs.handle)

	d := &Deps{DB: h.DB, Events: pub, Notify: notify.NewService(pub, log), Log: log, Clock: clockwork.NewRealClock()}
	if err := d.scanOverdueAssignments(ctx); err != nil {
		t.Fatal(err)
	}
	pub.Close()

	overdue := assignmentEvs.byType("ASSIGNMENT_OVERDUE")
	if len(overdue) != 1 {
		t.Fatalf("событий ASSIGNMENT_OVERDUE %d, ожидалось 1", len(overdue))
	}
	a, ok := overdue[0].Data.(models.Assignment)
	if !ok {
		t.Fatalf("в событии не задание: %T", overdue[0].Data)
	}
	if a.ID != fx.assignmentID {
		t.Fatalf("событие про задание %d, ожидалось %d", a.ID, fx.assignmentID)
	}

	notices := notifyEvs.byType("SEND_EMAIL")
	if len(notices) != 1 {
		t.Fatalf("уведомлений %d, ожидалось 1", len(notices))
	}
	n, ok := notices[0].Data.(notify.Notification)
	if !ok {
		t.Fatalf("в уведомлении не Notification: %T", notices[0].Data)
	}
	if n.Email != "teacher@school.local" {
		t.Fatalf("уведомление ушло на %s, а не преподавателю", n.Email)
	}
	if n.Type != notify.TypeAssignmentOverdue {
		t.Fatalf("тип уведомления %s", n.Type)
	}
}

func TestGPARecompute_SkipsUnchanged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	fx := seedOverdue(t, ctx, h.DB)

	subID, err := db.CreateSubmission(ctx, h.DB, models.Submission{
		AssignmentID: fx.assignmentID,
		StudentID:    fx.studentID,
		Content:      "решение",
		SubmittedAt:  time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.GradeSubmission(ctx, h.DB, subID, "80", nil, "teacher"); err != nil {
		t.Fatal(err)
	}

	log := zap.NewNop()

	// Первый прогон: GPA меняется с 0 на 3.2, должно быть событие.
	pub := events.NewPublisher(log, 64)
	var userEvs collector
	pub.Subscribe(events.TopicUserEvents, userEvs.handle)
	d := &Deps{DB: h.DB, Events: pub, Notify: notify.NewService(pub, log), Log: log, Clock: clockwork.NewRealClock()}
	if err := d.recomputeGPA(ctx); err != nil {
		t.Fatal(err)
	}
	pub.Close()

	if got := len(userEvs.byType("STUDENT_GPA_UPDATED")); got != 1 {
		t.Fatalf("событий об изменении GPA %d, ожидалось 1", got)
	}
	s, err := db.GetStudentByID(ctx, h.DB, fx.studentID)
	if err != nil {
		t.Fatal(err)
	}
	if s.GPA != 3.2 {
		t.Fatalf("GPA = %v, ожидалось 3.2", s.GPA)
	}

	// Второй прогон: значение не изменилось, события быть не должно.
	pub2 := events.NewPublisher(log, 64)
	var userEvs2 collector
	pub2.Subscribe(events.TopicUserEvents, userEvs2.handle)
	d.Events = pub2
	d.Notify = notify.NewService(pub2, log)
	if err := d.recomputeGPA(ctx); err != nil {
		t.Fatal(err)
	}
	pub2.Close()

	if got := len(userEvs2.byType("STUDENT_GPA_UPDATED")); got != 0 {
		t.Fatalf("повторный пересчёт выдал %d событий, ожидалось 0", got)
	}
	again, err := db.GetStudentByID(ctx, h.DB, fx.studentID)
	if err != nil {
		t.Fatal(err)
	}
	if again.GPA != 3.2 {
		t.Fatalf("GPA после повторного пересчёта = %v", again.GPA)
	}
}
