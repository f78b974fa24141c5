package jobs

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
)

// recomputeGPA пересчитывает средний балл активных студентов.
// Оценки в процентах приводятся к шкале 4.0 и округляются до сотых.
// Запись и событие — только при реальном изменении значения.
func (d *Deps) recomputeGPA(ctx context.Context) error {
	students, err := db.ListActiveStudents(ctx, d.DB)
	if err != nil {
		return err
	}
	updated := 0
	for _, s := range students {
		avg, err := db.AverageNumericGradeForStudent(ctx, d.DB, s.ID)
		if err != nil {
			d.Log.Error("не удалось посчитать средний балл",
				zap.Int64("student_id", s.ID), zap.Error(err))
			continue
		}
		if !avg.Valid {
			continue
		}
		gpa := math.Round(avg.Float64/100*4*100) / 100
		if gpa == s.GPA {
			continue
		}
		if err := db.UpdateStudentGPA(ctx, d.DB, s.ID, gpa); err != nil {
			d.Log.Error("не удалось сохранить GPA",
				zap.Int64("student_id", s.ID), zap.Error(err))
			continue
		}
		d.Events.Publish(events.TopicUserEvents, "STUDENT_GPA_UPDATED", map[string]any{
			"studentId": s.ID,
			"oldGpa":    s.GPA,
			"newGpa":    gpa,
		})
		updated++
	}
	d.Log.Info("пересчитан GPA", zap.Int("students", len(students)), zap.Int("updated", updated))
	return nil
}
