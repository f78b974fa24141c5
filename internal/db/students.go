package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/school-management-api/internal/models"
)

const studentCols = `
	u.id, u.first_name, u.last_name, u.email, u.password_hash, u.role, u.is_active, u.created_at,
	s.student_id, s.year_level, s.major, s.gpa`

func scanStudent(row interface{ Scan(...any) error }) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.PasswordHash, &s.Role, &s.IsActive, &s.CreatedAt,
		&s.StudentID, &s.YearLevel, &s.Major, &s.GPA,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStudent заводит пользователя и профиль ученика одной транзакцией.
func CreateStudent(ctx context.Context, database *sql.DB, s models.Student, passwordHash string) (int64, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr("students.create", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		s.FirstName, s.LastName, s.Email, passwordHash, models.RoleStudent,
	).Scan(&id)
	if err != nil {
		return 0, wrapErr("students.create", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO students (user_id, student_id, year_level, major)
		VALUES ($1, $2, $3, $4)`,
		id, s.StudentID, s.YearLevel, s.Major,
	)
	if err != nil {
		return 0, wrapErr("students.create", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, wrapErr("students.create", err)
	}
	return id, nil
}

func GetStudentByID(ctx context.Context, database *sql.DB, id int64) (*models.Student, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+studentCols+`
		FROM students s JOIN users u ON u.id = s.user_id
		WHERE u.id = $1`, id)
	s, err := scanStudent(row)
	if err != nil {
		return nil, wrapErr("students.by_id", err)
	}
	return s, nil
}

func GetStudentByStudentID(ctx context.Context, database *sql.DB, code string) (*models.Student, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+studentCols+`
		FROM students s JOIN users u ON u.id = s.user_id
		WHERE s.student_id = $1`, code)
	s, err := scanStudent(row)
	if err != nil {
		return nil, wrapErr("students.by_student_id", err)
	}
	return s, nil
}

func listStudents(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Student, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func ListStudents(ctx context.Context, database *sql.DB, limit, offset int) ([]models.Student, error) {
	res, err := listStudents(ctx, database, `
		SELECT `+studentCols+`
		FROM students s JOIN users u ON u.id = s.user_id
		ORDER BY u.id
		LIMIT $1 OFFSET $2`, limit, offset)
	return res, wrapErr("students.list", err)
}

func ListActiveStudentsByMajor(ctx context.Context, database *sql.DB, major string) ([]models.Student, error) {
	res, err := listStudents(ctx, database, `
		SELECT `+studentCols+`
		FROM students s JOIN users u ON u.id = s.user_id
		WHERE s.major = $1 AND u.is_active = TRUE
		ORDER BY u.id`, major)
	return res, wrapErr("students.by_major", err)
}

func ListActiveStudentsByYearLevel(ctx context.Context, database *sql.DB, yearLevel int) ([]models.Student, error) {
	res, err := listStudents(ctx, database, `
		SELECT `+studentCols+`
		FROM students s JOIN users u ON u.id = s.user_id
		WHERE s.year_level = $1 AND u.is_active = TRUE
		ORDER BY u.id`, yearLevel)
	return res, wrapErr("students.by_year", err)
}

func ListActiveStudents(ctx context.Context, database *sql.DB) ([]models.Student, error) {
	res, err := listStudents(ctx, database, `
		SELECT `+studentCols+`
		FROM students s JOIN users u ON u.id = s.user_id
		WHERE u.is_active = TRUE
		ORDER BY u.id`)
	return res, wrapErr("students.active", err)
}

func ListStudentsEnrolledInCourse(ctx context.Context, database *sql.DB, courseID int64) ([]models.Student, error) {
	res, err := listStudents(ctx, database, `
		SELECT `+studentCols+`
		FROM students s
		JOIN users u ON u.id = s.user_id
		JOIN enrollments e ON e.student_id = s.user_id
		WHERE e.course_id = $1 AND e.status = 'ENROLLED'
		ORDER BY u.id`, courseID)
	return res, wrapErr("students.by_course", err)
}

// UpdateStudent перезаписывает изменяемые поля целиком, включая is_active.
// GPA не трогает: его пересчитывает ночная задача через UpdateStudentGPA.
func UpdateStudent(ctx context.Context, database *sql.DB, s models.Student) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("students.update", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET first_name = $1, last_name = $2, email = $3, is_active = $4
		WHERE id = $5 AND role = $6`,
		s.FirstName, s.LastName, s.Email, s.IsActive, s.ID, models.RoleStudent)
	if err != nil {
		return wrapErr("students.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE students SET year_level = $1, major = $2
		WHERE user_id = $3`,
		s.YearLevel, s.Major, s.ID)
	if err != nil {
		return wrapErr("students.update", err)
	}
	return wrapErr("students.update", tx.Commit())
}

// SoftDeleteStudent — «удаление» через is_active = false.
func SoftDeleteStudent(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `
		UPDATE users SET is_active = FALSE WHERE id = $1 AND role = $2`,
		id, models.RoleStudent)
	if err != nil {
		return wrapErr("students.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AverageGPA — средний GPA по активным ученикам; 0 при пустой таблице.
func AverageGPA(ctx context.Context, database *sql.DB) (float64, error) {
	var avg sql.NullFloat64
	err := database.QueryRowContext(ctx, `
		SELECT AVG(s.gpa)
		FROM students s JOIN users u ON u.id = s.user_id
		WHERE u.is_active = TRUE`).Scan(&avg)
	if err != nil {
		return 0, wrapErr("students.avg_gpa", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func UpdateStudentGPA(ctx context.Context, database *sql.DB, id int64, gpa float64) error {
	res, err := database.ExecContext(ctx, `UPDATE students SET gpa = $1 WHERE user_id = $2`, gpa, id)
	if err != nil {
		return wrapErr("students.update_gpa", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
