package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/school-management-api/internal/models"
)

const enrollmentCols = `
	id, student_id, course_id, enrollment_date, grade, status`

func scanEnrollment(row interface{ Scan(...any) error }) (*models.Enrollment, error) {
	var e models.Enrollment
	err := row.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.EnrollmentDate, &e.Grade, &e.Status)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func CreateEnrollment(ctx context.Context, database *sql.DB, e models.Enrollment) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO enrollments (student_id, course_id, enrollment_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		e.StudentID, e.CourseID, e.EnrollmentDate, e.Status).Scan(&id)
	if err != nil {
		return 0, wrapErr("enrollments.create", err)
	}
	return id, nil
}

func GetEnrollmentByID(ctx context.Context, database *sql.DB, id int64) (*models.Enrollment, error) {
	row := database.QueryRowContext(ctx, `SELECT `+enrollmentCols+` FROM enrollments WHERE id = $1`, id)
	e, err := scanEnrollment(row)
	if err != nil {
		return nil, wrapErr("enrollments.by_id", err)
	}
	return e, nil
}

func GetEnrollmentByStudentAndCourse(ctx context.Context, database *sql.DB, studentID, courseID int64) (*models.Enrollment, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+enrollmentCols+` FROM enrollments
		WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	e, err := scanEnrollment(row)
	if err != nil {
		return nil, wrapErr("enrollments.by_student_course", err)
	}
	return e, nil
}

func listEnrollments(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Enrollment, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

func ListEnrollments(ctx context.Context, database *sql.DB, limit, offset int) ([]models.Enrollment, error) {
	res, err := listEnrollments(ctx, database, `
		SELECT `+enrollmentCols+` FROM enrollments ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	return res, wrapErr("enrollments.list", err)
}

func ListEnrollmentsByStudent(ctx context.Context, database *sql.DB, studentID int64) ([]models.Enrollment, error) {
	res, err := listEnrollments(ctx, database, `
		SELECT `+enrollmentCols+` FROM enrollments WHERE student_id = $1 ORDER BY id`, studentID)
	return res, wrapErr("enrollments.by_student", err)
}

func ListEnrollmentsByCourse(ctx context.Context, database *sql.DB, courseID int64) ([]models.Enrollment, error) {
	res, err := listEnrollments(ctx, database, `
		SELECT `+enrollmentCols+` FROM enrollments WHERE course_id = $1 ORDER BY id`, courseID)
	return res, wrapErr("enrollments.by_course", err)
}

func ListEnrollmentsBySemesterAndYear(ctx context.Context, database *sql.DB, semester, academicYear string) ([]models.Enrollment, error) {
	res, err := listEnrollments(ctx, database, `
		SELECT e.id, e.student_id, e.course_id, e.enrollment_date, e.grade, e.status
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE c.semester = $1 AND c.academic_year = $2
		ORDER BY e.id`, semester, academicYear)
	return res, wrapErr("enrollments.by_semester_year", err)
}

func UpdateEnrollment(ctx context.Context, database *sql.DB, e models.Enrollment) error {
	res, err := database.ExecContext(ctx, `
		UPDATE enrollments SET grade = $1, status = $2 WHERE id = $3`,
		e.Grade, e.Status, e.ID)
	if err != nil {
		return wrapErr("enrollments.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveEnrollmentsByStudent — число активных записей студента (DROPPED не считаются).
func CountActiveEnrollmentsByStudent(ctx context.Context, database *sql.DB, studentID int64) (int64, error) {
	var n int64
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND status = 'ENROLLED'`,
		studentID).Scan(&n)
	if err != nil {
		return 0, wrapErr("enrollments.count_by_student", err)
	}
	return n, nil
}

// DropEnrollment «удаляет» запись переводом статуса в DROPPED;
// строка остаётся, чтобы сохранить историю оценок.
func DropEnrollment(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `
		UPDATE enrollments SET status = $1 WHERE id = $2`,
		models.Dropped, id)
	if err != nil {
		return wrapErr("enrollments.drop", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
