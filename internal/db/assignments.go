package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/school-management-api/internal/models"
)

const assignmentCols = `
	id, course_id, title, description, due_date, max_points, type, is_active, created_at`

func scanAssignment(row interface{ Scan(...any) error }) (*models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(
		&a.ID, &a.CourseID, &a.Title, &a.Description, &a.DueDate,
		&a.MaxPoints, &a.Type, &a.IsActive, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func CreateAssignment(ctx context.Context, database *sql.DB, a models.Assignment) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO assignments (course_id, title, description, due_date, max_points, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.CourseID, a.Title, a.Description, a.DueDate, a.MaxPoints, a.Type).Scan(&id)
	if err != nil {
		return 0, wrapErr("assignments.create", err)
	}
	return id, nil
}

func GetAssignmentByID(ctx context.Context, database *sql.DB, id int64) (*models.Assignment, error) {
	row := database.QueryRowContext(ctx, `SELECT `+assignmentCols+` FROM assignments WHERE id = $1`, id)
	a, err := scanAssignment(row)
	if err != nil {
		return nil, wrapErr("assignments.by_id", err)
	}
	return a, nil
}

func listAssignments(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Assignment, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func ListAssignments(ctx context.Context, database *sql.DB, limit, offset int) ([]models.Assignment, error) {
	res, err := listAssignments(ctx, database, `
		SELECT `+assignmentCols+` FROM assignments ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	return res, wrapErr("assignments.list", err)
}

func ListAssignmentsByCourse(ctx context.Context, database *sql.DB, courseID int64) ([]models.Assignment, error) {
	res, err := listAssignments(ctx, database, `
		SELECT `+assignmentCols+` FROM assignments
		WHERE course_id = $1 AND is_active = TRUE ORDER BY due_date`, courseID)
	return res, wrapErr("assignments.by_course", err)
}

// ListAssignmentsByTeacher собирает задания по всем курсам преподавателя.
func ListAssignmentsByTeacher(ctx context.Context, database *sql.DB, teacherID int64) ([]models.Assignment, error) {
	res, err := listAssignments(ctx, database, `
		SELECT a.id, a.course_id, a.title, a.description, a.due_date,
		       a.max_points, a.type, a.is_active, a.created_at
		FROM assignments a
		JOIN courses c ON c.id = a.course_id
		WHERE c.teacher_id = $1 AND a.is_active = TRUE
		ORDER BY a.due_date`, teacherID)
	return res, wrapErr("assignments.by_teacher", err)
}

func ListAssignmentsByType(ctx context.Context, database *sql.DB, typ models.AssignmentType) ([]models.Assignment, error) {
	res, err := listAssignments(ctx, database, `
		SELECT `+assignmentCols+` FROM assignments
		WHERE type = $1 AND is_active = TRUE ORDER BY due_date`, typ)
	return res, wrapErr("assignments.by_type", err)
}

// ListOverdueAssignments возвращает активные задания с истёкшим сроком сдачи.
func ListOverdueAssignments(ctx context.Context, database *sql.DB, now time.Time) ([]models.Assignment, error) {
	res, err := listAssignments(ctx, database, `
		SELECT `+assignmentCols+` FROM assignments
		WHERE due_date < $1 AND is_active = TRUE ORDER BY due_date`, now)
	return res, wrapErr("assignments.overdue", err)
}

// ListAssignmentsDueBetween возвращает активные задания со сроком сдачи в окне [from, to].
func ListAssignmentsDueBetween(ctx context.Context, database *sql.DB, from, to time.Time) ([]models.Assignment, error) {
	res, err := listAssignments(ctx, database, `
		SELECT `+assignmentCols+` FROM assignments
		WHERE due_date >= $1 AND due_date <= $2 AND is_active = TRUE ORDER BY due_date`, from, to)
	return res, wrapErr("assignments.due_between", err)
}

func UpdateAssignment(ctx context.Context, database *sql.DB, a models.Assignment) error {
	res, err := database.ExecContext(ctx, `
		UPDATE assignments SET title = $1, description = $2, due_date = $3,
		       max_points = $4, type = $5, is_active = $6
		WHERE id = $7`,
		a.Title, a.Description, a.DueDate, a.MaxPoints, a.Type, a.IsActive, a.ID)
	if err != nil {
		return wrapErr("assignments.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func SoftDeleteAssignment(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `UPDATE assignments SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return wrapErr("assignments.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
