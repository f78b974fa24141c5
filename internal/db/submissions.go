package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/school-management-api/internal/models"
)

const submissionCols = `
	id, student_id, assignment_id, content, submitted_at, grade, feedback, is_late, graded_at, graded_by`

func scanSubmission(row interface{ Scan(...any) error }) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(
		&s.ID, &s.StudentID, &s.AssignmentID, &s.Content, &s.SubmittedAt,
		&s.Grade, &s.Feedback, &s.IsLate, &s.GradedAt, &s.GradedBy,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSubmission фиксирует сдачу работы; признак опоздания вычисляется
// один раз по сроку задания и больше не пересчитывается.
func CreateSubmission(ctx context.Context, database *sql.DB, s models.Submission) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO submissions (student_id, assignment_id, content, submitted_at, is_late)
		SELECT $1, $2, $3, $4, $4 > a.due_date
		FROM assignments a WHERE a.id = $2
		RETURNING id`,
		s.StudentID, s.AssignmentID, s.Content, s.SubmittedAt).Scan(&id)
	if err != nil {
		return 0, wrapErr("submissions.create", err)
	}
	return id, nil
}

func GetSubmissionByID(ctx context.Context, database *sql.DB, id int64) (*models.Submission, error) {
	row := database.QueryRowContext(ctx, `SELECT `+submissionCols+` FROM submissions WHERE id = $1`, id)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, wrapErr("submissions.by_id", err)
	}
	return s, nil
}

func GetSubmissionByStudentAndAssignment(ctx context.Context, database *sql.DB, studentID, assignmentID int64) (*models.Submission, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+submissionCols+` FROM submissions
		WHERE student_id = $1 AND assignment_id = $2`, studentID, assignmentID)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, wrapErr("submissions.by_student_assignment", err)
	}
	return s, nil
}

func listSubmissions(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Submission, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func ListSubmissions(ctx context.Context, database *sql.DB, limit, offset int) ([]models.Submission, error) {
	res, err := listSubmissions(ctx, database, `
		SELECT `+submissionCols+` FROM submissions ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	return res, wrapErr("submissions.list", err)
}

func ListSubmissionsByStudent(ctx context.Context, database *sql.DB, studentID int64) ([]models.Submission, error) {
	res, err := listSubmissions(ctx, database, `
		SELECT `+submissionCols+` FROM submissions WHERE student_id = $1 ORDER BY submitted_at DESC`, studentID)
	return res, wrapErr("submissions.by_student", err)
}

func ListSubmissionsByAssignment(ctx context.Context, database *sql.DB, assignmentID int64) ([]models.Submission, error) {
	res, err := listSubmissions(ctx, database, `
		SELECT `+submissionCols+` FROM submissions WHERE assignment_id = $1 ORDER BY submitted_at`, assignmentID)
	return res, wrapErr("submissions.by_assignment", err)
}

func ListSubmissionsByCourse(ctx context.Context, database *sql.DB, courseID int64) ([]models.Submission, error) {
	res, err := listSubmissions(ctx, database, `
		SELECT s.id, s.student_id, s.assignment_id, s.content, s.submitted_at,
		       s.grade, s.feedback, s.is_late, s.graded_at, s.graded_by
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		WHERE a.course_id = $1
		ORDER BY s.submitted_at`, courseID)
	return res, wrapErr("submissions.by_course", err)
}

func ListSubmissionsByStudentAndCourse(ctx context.Context, database *sql.DB, studentID, courseID int64) ([]models.Submission, error) {
	res, err := listSubmissions(ctx, database, `
		SELECT s.id, s.student_id, s.assignment_id, s.content, s.submitted_at,
		       s.grade, s.feedback, s.is_late, s.graded_at, s.graded_by
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		WHERE s.student_id = $1 AND a.course_id = $2
		ORDER BY s.submitted_at`, studentID, courseID)
	return res, wrapErr("submissions.by_student_course", err)
}

func ListUngradedSubmissions(ctx context.Context, database *sql.DB) ([]models.Submission, error) {
	res, err := listSubmissions(ctx, database, `
		SELECT `+submissionCols+` FROM submissions WHERE grade IS NULL ORDER BY submitted_at`)
	return res, wrapErr("submissions.ungraded", err)
}

func ListUngradedSubmissionsByAssignment(ctx context.Context, database *sql.DB, assignmentID int64) ([]models.Submission, error) {
	res, err := listSubmissions(ctx, database, `
		SELECT `+submissionCols+` FROM submissions
		WHERE assignment_id = $1 AND grade IS NULL ORDER BY submitted_at`, assignmentID)
	return res, wrapErr("submissions.ungraded_by_assignment", err)
}

func CountUngradedSubmissionsByTeacher(ctx context.Context, database *sql.DB, teacherID int64) (int64, error) {
	var n int64
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		JOIN courses c ON c.id = a.course_id
		WHERE c.teacher_id = $1 AND s.grade IS NULL`, teacherID).Scan(&n)
	if err != nil {
		return 0, wrapErr("submissions.pending_by_teacher", err)
	}
	return n, nil
}

// UpdateSubmission меняет содержимое работы. Оценённая работа неизменяема.
func UpdateSubmission(ctx context.Context, database *sql.DB, s models.Submission) error {
	cur, err := GetSubmissionByID(ctx, database, s.ID)
	if err != nil {
		return err
	}
	if cur.Grade != nil {
		return ErrGradedImmutable
	}
	res, err := database.ExecContext(ctx, `
		UPDATE submissions SET content = $1 WHERE id = $2`, s.Content, s.ID)
	if err != nil {
		return wrapErr("submissions.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GradeSubmission выставляет оценку и отзыв от имени проверяющего.
func GradeSubmission(ctx context.Context, database *sql.DB, id int64, grade string, feedback *string, gradedBy string) error {
	res, err := database.ExecContext(ctx, `
		UPDATE submissions SET grade = $1, feedback = $2, graded_at = NOW(), graded_by = $3
		WHERE id = $4`,
		grade, feedback, gradedBy, id)
	if err != nil {
		return wrapErr("submissions.grade", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func DeleteSubmission(ctx context.Context, database *sql.DB, id int64) error {
	cur, err := GetSubmissionByID(ctx, database, id)
	if err != nil {
		return err
	}
	if cur.Grade != nil {
		return ErrGradedImmutable
	}
	res, err := database.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return wrapErr("submissions.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AverageNumericGradeForStudent усредняет числовые оценки студента по всем
// его курсам; нечисловые оценки пропускаются. NULL — когда оценок нет.
// ListLateSubmissions — все работы, сданные после срока.
func ListLateSubmissions(ctx context.Context, database *sql.DB) ([]models.Submission, error) {
	res, err := listSubmissions(ctx, database, `
		SELECT `+submissionCols+` FROM submissions
		WHERE is_late = TRUE ORDER BY submitted_at DESC`)
	return res, wrapErr("submissions.late", err)
}

func CountSubmissionsByAssignment(ctx context.Context, database *sql.DB, assignmentID int64) (int64, error) {
	var n int64
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM submissions WHERE assignment_id = $1`, assignmentID).Scan(&n)
	if err != nil {
		return 0, wrapErr("submissions.count_by_assignment", err)
	}
	return n, nil
}

// AverageGradeByAssignment — средняя числовая оценка по заданию;
// нечисловые оценки («зачёт») в среднее не входят.
func AverageGradeByAssignment(ctx context.Context, database *sql.DB, assignmentID int64) (sql.NullFloat64, error) {
	var avg sql.NullFloat64
	err := database.QueryRowContext(ctx, `
		SELECT AVG(grade::numeric) FROM submissions
		WHERE assignment_id = $1 AND grade ~ '^[0-9]+(\.[0-9]+)?$'`, assignmentID).Scan(&avg)
	if err != nil {
		return sql.NullFloat64{}, wrapErr("submissions.avg_by_assignment", err)
	}
	return avg, nil
}

func AverageNumericGradeForStudent(ctx context.Context, database *sql.DB, studentID int64) (sql.NullFloat64, error) {
	var avg sql.NullFloat64
	err := database.QueryRowContext(ctx, `
		SELECT AVG(s.grade::numeric)
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		JOIN enrollments e ON e.course_id = a.course_id AND e.student_id = s.student_id
		WHERE s.student_id = $1
		  AND s.grade ~ '^[0-9]+(\.[0-9]+)?$'
		  AND e.status IN ('ENROLLED', 'COMPLETED')`, studentID).Scan(&avg)
	if err != nil {
		return sql.NullFloat64{}, wrapErr("submissions.avg_grade", err)
	}
	return avg, nil
}
