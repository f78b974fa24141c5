package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/school-management-api/internal/models"
)

const courseCols = `
	id, course_code, course_name, description, credits, semester, academic_year,
	schedule, room, max_students, teacher_id, is_active, created_at`

func scanCourse(row interface{ Scan(...any) error }) (*models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID, &c.CourseCode, &c.CourseName, &c.Description, &c.Credits, &c.Semester,
		&c.AcademicYear, &c.Schedule, &c.Room, &c.MaxStudents, &c.TeacherID, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func CreateCourse(ctx context.Context, database *sql.DB, c models.Course) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO courses (course_code, course_name, description, credits, semester,
		                     academic_year, schedule, room, max_students, teacher_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		c.CourseCode, c.CourseName, c.Description, c.Credits, c.Semester,
		c.AcademicYear, c.Schedule, c.Room, c.MaxStudents, c.TeacherID,
	).Scan(&id)
	if err != nil {
		return 0, wrapErr("courses.create", err)
	}
	return id, nil
}

func CourseCodeExists(ctx context.Context, database *sql.DB, code string) (bool, error) {
	var exists bool
	err := database.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE course_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, wrapErr("courses.code_exists", err)
	}
	return exists, nil
}

func GetCourseByID(ctx context.Context, database *sql.DB, id int64) (*models.Course, error) {
	row := database.QueryRowContext(ctx, `SELECT `+courseCols+` FROM courses WHERE id = $1`, id)
	c, err := scanCourse(row)
	if err != nil {
		return nil, wrapErr("courses.by_id", err)
	}
	return c, nil
}

func GetCourseByCode(ctx context.Context, database *sql.DB, code string) (*models.Course, error) {
	row := database.QueryRowContext(ctx, `SELECT `+courseCols+` FROM courses WHERE course_code = $1`, code)
	c, err := scanCourse(row)
	if err != nil {
		return nil, wrapErr("courses.by_code", err)
	}
	return c, nil
}

func listCourses(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Course, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func ListCourses(ctx context.Context, database *sql.DB, limit, offset int) ([]models.Course, error) {
	res, err := listCourses(ctx, database, `
		SELECT `+courseCols+` FROM courses ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	return res, wrapErr("courses.list", err)
}

func ListActiveCourses(ctx context.Context, database *sql.DB) ([]models.Course, error) {
	res, err := listCourses(ctx, database, `
		SELECT `+courseCols+` FROM courses WHERE is_active = TRUE ORDER BY id`)
	return res, wrapErr("courses.active", err)
}

func ListActiveCoursesByTeacher(ctx context.Context, database *sql.DB, teacherID int64) ([]models.Course, error) {
	res, err := listCourses(ctx, database, `
		SELECT `+courseCols+` FROM courses
		WHERE teacher_id = $1 AND is_active = TRUE ORDER BY id`, teacherID)
	return res, wrapErr("courses.by_teacher", err)
}

func ListCoursesByStudent(ctx context.Context, database *sql.DB, studentID int64) ([]models.Course, error) {
	res, err := listCourses(ctx, database, `
		SELECT c.id, c.course_code, c.course_name, c.description, c.credits, c.semester,
		       c.academic_year, c.schedule, c.room, c.max_students, c.teacher_id, c.is_active, c.created_at
		FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.student_id = $1 AND e.status = 'ENROLLED'
		ORDER BY c.id`, studentID)
	return res, wrapErr("courses.by_student", err)
}

func ListCoursesBySemesterAndYear(ctx context.Context, database *sql.DB, semester, academicYear string) ([]models.Course, error) {
	res, err := listCourses(ctx, database, `
		SELECT `+courseCols+` FROM courses
		WHERE semester = $1 AND academic_year = $2 AND is_active = TRUE
		ORDER BY id`, semester, academicYear)
	return res, wrapErr("courses.by_semester_year", err)
}

// UpdateCourse перезаписывает изменяемые поля целиком; course_code не меняется.
func UpdateCourse(ctx context.Context, database *sql.DB, c models.Course) error {
	res, err := database.ExecContext(ctx, `
		UPDATE courses SET course_name = $1, description = $2, credits = $3, semester = $4,
		       academic_year = $5, schedule = $6, room = $7, max_students = $8, is_active = $9
		WHERE id = $10`,
		c.CourseName, c.Description, c.Credits, c.Semester,
		c.AcademicYear, c.Schedule, c.Room, c.MaxStudents, c.IsActive, c.ID)
	if err != nil {
		return wrapErr("courses.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func SoftDeleteCourse(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `UPDATE courses SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return wrapErr("courses.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func CountEnrolledStudents(ctx context.Context, database *sql.DB, courseID int64) (int64, error) {
	var n int64
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = 'ENROLLED'`, courseID).Scan(&n)
	if err != nil {
		return 0, wrapErr("courses.enrollment_count", err)
	}
	return n, nil
}
