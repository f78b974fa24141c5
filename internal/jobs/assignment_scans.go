package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
)

// scanUpcomingAssignments находит задания со сроком сдачи в ближайшие
// сутки и рассылает напоминания записанным на курс студентам.
func (d *Deps) scanUpcomingAssignments(ctx context.Context) error {
	now := d.Clock.Now()
	assignments, err := db.ListAssignmentsDueBetween(ctx, d.DB, now, now.Add(24*time.Hour))
	if err != nil {
		return err
	}
	for _, a := range assignments {
		d.Events.Publish(events.TopicAssignmentEvents, "ASSIGNMENT_DUE_SOON", a)

		students, err := db.ListStudentsEnrolledInCourse(ctx, d.DB, a.CourseID)
		if err != nil {
			d.Log.Error("не удалось получить студентов курса",
				zap.Int64("course_id", a.CourseID), zap.Error(err))
			continue
		}
		for _, s := range students {
			d.Notify.AssignmentDueSoon(s, a)
		}
	}
	d.Log.Info("проверены задания с близким сроком", zap.Int("assignments", len(assignments)))
	return nil
}

// scanOverdueAssignments находит активные задания с истёкшим сроком
// и сообщает преподавателю, сколько студентов не сдали работу.
func (d *Deps) scanOverdueAssignments(ctx context.Context) error {
	assignments, err := db.ListOverdueAssignments(ctx, d.DB, d.Clock.Now())
	if err != nil {
		return err
	}
	for _, a := range assignments {
		d.Events.Publish(events.TopicAssignmentEvents, "ASSIGNMENT_OVERDUE", a)

		course, err := db.GetCourseByID(ctx, d.DB, a.CourseID)
		if err != nil {
			d.Log.Error("не удалось получить курс задания",
				zap.Int64("assignment_id", a.ID), zap.Error(err))
			continue
		}
		teacher, err := db.GetTeacherByID(ctx, d.DB, course.TeacherID)
		if err != nil {
			d.Log.Error("не удалось получить преподавателя курса",
				zap.Int64("course_id", course.ID), zap.Error(err))
			continue
		}

		enrolled, err := db.CountEnrolledStudents(ctx, d.DB, a.CourseID)
		if err != nil {
			d.Log.Error("не удалось посчитать записанных на курс",
				zap.Int64("course_id", a.CourseID), zap.Error(err))
			continue
		}
		subs, err := db.ListSubmissionsByAssignment(ctx, d.DB, a.ID)
		if err != nil {
			d.Log.Error("не удалось получить сдачи задания",
				zap.Int64("assignment_id", a.ID), zap.Error(err))
			continue
		}
		missing := int(enrolled) - len(subs)
		if missing < 0 {
			missing = 0
		}
		d.Notify.AssignmentOverdue(*teacher, a, missing)
	}
	d.Log.Info("проверены просроченные задания", zap.Int("assignments", len(assignments)))
	return nil
}
