package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/school-management-api/internal/models"
)

const teacherCols = `
	u.id, u.first_name, u.last_name, u.email, u.password_hash, u.role, u.is_active, u.created_at,
	t.employee_id, t.department, t.specialization`

func scanTeacher(row interface{ Scan(...any) error }) (*models.Teacher, error) {
	var t models.Teacher
	err := row.Scan(
		&t.ID, &t.FirstName, &t.LastName, &t.Email, &t.PasswordHash, &t.Role, &t.IsActive, &t.CreatedAt,
		&t.EmployeeID, &t.Department, &t.Specialization,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func CreateTeacher(ctx context.Context, database *sql.DB, t models.Teacher, passwordHash string) (int64, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr("teachers.create", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		t.FirstName, t.LastName, t.Email, passwordHash, models.RoleTeacher,
	).Scan(&id)
	if err != nil {
		return 0, wrapErr("teachers.create", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO teachers (user_id, employee_id, department, specialization)
		VALUES ($1, $2, $3, $4)`,
		id, t.EmployeeID, t.Department, t.Specialization,
	)
	if err != nil {
		return 0, wrapErr("teachers.create", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, wrapErr("teachers.create", err)
	}
	return id, nil
}

func GetTeacherByID(ctx context.Context, database *sql.DB, id int64) (*models.Teacher, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+teacherCols+`
		FROM teachers t JOIN users u ON u.id = t.user_id
		WHERE u.id = $1`, id)
	t, err := scanTeacher(row)
	if err != nil {
		return nil, wrapErr("teachers.by_id", err)
	}
	return t, nil
}

func GetTeacherByEmployeeID(ctx context.Context, database *sql.DB, employeeID string) (*models.Teacher, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+teacherCols+`
		FROM teachers t JOIN users u ON u.id = t.user_id
		WHERE t.employee_id = $1`, employeeID)
	t, err := scanTeacher(row)
	if err != nil {
		return nil, wrapErr("teachers.by_employee_id", err)
	}
	return t, nil
}

func listTeachers(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Teacher, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func ListTeachers(ctx context.Context, database *sql.DB, limit, offset int) ([]models.Teacher, error) {
	res, err := listTeachers(ctx, database, `
		SELECT `+teacherCols+`
		FROM teachers t JOIN users u ON u.id = t.user_id
		ORDER BY u.id
		LIMIT $1 OFFSET $2`, limit, offset)
	return res, wrapErr("teachers.list", err)
}

func ListActiveTeachers(ctx context.Context, database *sql.DB) ([]models.Teacher, error) {
	res, err := listTeachers(ctx, database, `
		SELECT `+teacherCols+`
		FROM teachers t JOIN users u ON u.id = t.user_id
		WHERE u.is_active = TRUE
		ORDER BY u.id`)
	return res, wrapErr("teachers.active", err)
}

func ListActiveTeachersByDepartment(ctx context.Context, database *sql.DB, department string) ([]models.Teacher, error) {
	res, err := listTeachers(ctx, database, `
		SELECT `+teacherCols+`
		FROM teachers t JOIN users u ON u.id = t.user_id
		WHERE t.department = $1 AND u.is_active = TRUE
		ORDER BY u.id`, department)
	return res, wrapErr("teachers.by_department", err)
}

func ListActiveTeachersBySpecialization(ctx context.Context, database *sql.DB, specialization string) ([]models.Teacher, error) {
	res, err := listTeachers(ctx, database, `
		SELECT `+teacherCols+`
		FROM teachers t JOIN users u ON u.id = t.user_id
		WHERE t.specialization = $1 AND u.is_active = TRUE
		ORDER BY u.id`, specialization)
	return res, wrapErr("teachers.by_specialization", err)
}

func UpdateTeacher(ctx context.Context, database *sql.DB, t models.Teacher) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("teachers.update", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET first_name = $1, last_name = $2, email = $3, is_active = $4
		WHERE id = $5 AND role = $6`,
		t.FirstName, t.LastName, t.Email, t.IsActive, t.ID, models.RoleTeacher)
	if err != nil {
		return wrapErr("teachers.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE teachers SET department = $1, specialization = $2
		WHERE user_id = $3`,
		t.Department, t.Specialization, t.ID)
	if err != nil {
		return wrapErr("teachers.update", err)
	}
	return wrapErr("teachers.update", tx.Commit())
}

func SoftDeleteTeacher(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `
		UPDATE users SET is_active = FALSE WHERE id = $1 AND role = $2`,
		id, models.RoleTeacher)
	if err != nil {
		return wrapErr("teachers.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func CountActiveCoursesByTeacher(ctx context.Context, database *sql.DB, teacherID int64) (int64, error) {
	var n int64
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM courses WHERE teacher_id = $1 AND is_active = TRUE`, teacherID).Scan(&n)
	if err != nil {
		return 0, wrapErr("teachers.course_count", err)
	}
	return n, nil
}
