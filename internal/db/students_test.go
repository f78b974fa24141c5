//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/models"
	"github.com/Spok95/school-management-api/internal/testutil/testdb"
)

func newStudent(email, code string) models.Student {
	return models.Student{
		User: models.User{
			FirstName: "Иван",
			LastName:  "Иванов",
			Email:     email,
			Role:      models.RoleStudent,
		},
		StudentID: code,
		YearLevel: 9,
		Major:     "математика",
	}
}

func TestStudents_CreateAndFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	id, err := db.CreateStudent(ctx, h.DB, newStudent("ivanov@school.local", "S-001"), "hash")
	if err != nil {
		t.Fatal(err)
	}

	got, err := db.GetStudentByID(ctx, h.DB, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "ivanov@school.local" || got.StudentID != "S-001" || !got.IsActive {
		t.Fatalf("неожиданный студент: %+v", got)
	}

	byCode, err := db.GetStudentByStudentID(ctx, h.DB, "S-001")
	if err != nil {
		t.Fatal(err)
	}
	if byCode.ID != id {
		t.Fatalf("поиск по номеру вернул другого студента: %d != %d", byCode.ID, id)
	}
}

func TestStudents_DuplicateEmail(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := db.CreateStudent(ctx, h.DB, newStudent("dup@school.local", "S-001"), "hash"); err != nil {
		t.Fatal(err)
	}
	_, err = db.CreateStudent(ctx, h.DB, newStudent("dup@school.local", "S-002"), "hash")
	if !errors.Is(err, db.ErrDuplicate) {
		t.Fatalf("ожидали ErrDuplicate, получили %v", err)
	}
}

func TestStudents_SoftDeleteHidesFromActive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	id, err := db.CreateStudent(ctx, h.DB, newStudent("gone@school.local", "S-009"), "hash")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SoftDeleteStudent(ctx, h.DB, id); err != nil {
		t.Fatal(err)
	}

	active, err := db.ListActiveStudents(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range active {
		if s.ID == id {
			t.Fatal("удалённый студент попал в список активных")
		}
	}

	// Сама запись остаётся доступной по id.
	got, err := db.GetStudentByID(ctx, h.DB, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsActive {
		t.Fatal("после удаления is_active должен быть false")
	}
}

func TestStudents_UpdateKeepsGPA(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	id, err := db.CreateStudent(ctx, h.DB, newStudent("gpa@school.local", "S-020"), "hash")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateStudentGPA(ctx, h.DB, id, 3.5); err != nil {
		t.Fatal(err)
	}

	updated := newStudent("gpa@school.local", "S-020")
	updated.ID = id
	updated.IsActive = true
	updated.Major = "физика"
	if err := db.UpdateStudent(ctx, h.DB, updated); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetStudentByID(ctx, h.DB, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Major != "физика" {
		t.Fatalf("major не обновился: %q", got.Major)
	}
	if got.GPA != 3.5 {
		t.Fatalf("обновление профиля сбросило GPA: %v", got.GPA)
	}
}

func TestStudents_NotFound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := db.GetStudentByID(ctx, h.DB, 99999); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound, получили %v", err)
	}
	if err := db.SoftDeleteStudent(ctx, h.DB, 99999); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound при удалении, получили %v", err)
	}
}
