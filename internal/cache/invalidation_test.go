package cache

import (
	"testing"

	"github.com/jonboulle/clockwork"
)

func TestInvalidate_ClearsBoundRegionsOnly(t *testing.T) {
	c := New(clockwork.NewFakeClock())
	c.Put(Submissions, "all-50-0", 1)
	c.Put(UngradedSubmissions, "all", 2)
	c.Put(Students, "all-50-0", 3)

	c.Invalidate(EntitySubmission, OpGrade)

	if _, ok := c.Get(Submissions, "all-50-0"); ok {
		t.Fatal("регион submissions должен был сброситься")
	}
	if _, ok := c.Get(UngradedSubmissions, "all"); ok {
		t.Fatal("регион ungraded-submissions должен был сброситься")
	}
	if _, ok := c.Get(Students, "all-50-0"); !ok {
		t.Fatal("регион students не относится к оценке и должен был уцелеть")
	}
}

func TestInvalidate_GradeKeepsStudentScopedRegions(t *testing.T) {
	c := New(clockwork.NewFakeClock())
	c.Put(SubmissionsByStudent, "5", 1)
	c.Put(SubmissionsByStudentCrs, "5-2", 2)

	// Выставление оценки не трогает регионы, привязанные к студенту.
	c.Invalidate(EntitySubmission, OpGrade)

	if _, ok := c.Get(SubmissionsByStudent, "5"); !ok {
		t.Fatal("submissions-by-student не в списке сброса для grade")
	}
	if _, ok := c.Get(SubmissionsByStudentCrs, "5-2"); !ok {
		t.Fatal("submissions-by-student-course не в списке сброса для grade")
	}
}

func TestInvalidate_TeacherUpdateKeepsEmployeeLookup(t *testing.T) {
	c := New(clockwork.NewFakeClock())
	c.Put(Teacher, "7", 1)
	c.Put(TeacherByEmployee, "T-100", 2)

	c.Invalidate(EntityTeacher, OpUpdate)

	if _, ok := c.Get(Teacher, "7"); ok {
		t.Fatal("регион teacher должен был сброситься")
	}
	// Поиск по табельному номеру живёт в своём регионе и переживает
	// обновление до истечения TTL.
	if _, ok := c.Get(TeacherByEmployee, "T-100"); !ok {
		t.Fatal("teacher-by-employee-id не в списке сброса для update")
	}
}

func TestInvalidate_UnknownPairIsNoop(t *testing.T) {
	c := New(clockwork.NewFakeClock())
	c.Put(Courses, "all-50-0", 1)

	c.Invalidate(Entity("нет такой"), OpUpdate)
	if _, ok := c.Get(Courses, "all-50-0"); !ok {
		t.Fatal("неизвестная пара не должна ничего сбрасывать")
	}
}

// Каждый регион из таблицы инвалидации обязан иметь явный TTL:
// регион, живущий на TTL по умолчанию, скорее всего опечатка.
func TestEvictions_RegionsHaveExplicitTTL(t *testing.T) {
	for entity, ops := range Evictions {
		for op, regions := range ops {
			for _, r := range regions {
				if _, ok := ttlByRegion[r]; !ok {
					t.Errorf("регион %q (%s/%s) без явного TTL", r, entity, op)
				}
			}
		}
	}
}

func TestEvictions_UpdateCoversSingleRecordRegion(t *testing.T) {
	single := map[Entity]Region{
		EntityStudent:    Student,
		EntityTeacher:    Teacher,
		EntityCourse:     Course,
		EntityEnrollment: Enrollment,
		EntityAssignment: Assignment,
		EntitySubmission: Submission,
		EntityAttendance: AttendanceRecord,
	}
	for entity, region := range single {
		found := false
		for _, r := range Evictions[entity][OpUpdate] {
			if r == region {
				found = true
			}
		}
		if !found {
			t.Errorf("update %s не сбрасывает регион одиночной записи %q", entity, region)
		}
	}
}
