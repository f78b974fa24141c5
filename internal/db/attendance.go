package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/school-management-api/internal/models"
)

const attendanceCols = `
	id, student_id, course_id, date, status, remarks, marked_by, marked_at`

func scanAttendance(row interface{ Scan(...any) error }) (*models.Attendance, error) {
	var a models.Attendance
	err := row.Scan(&a.ID, &a.StudentID, &a.CourseID, &a.Date, &a.Status, &a.Remarks, &a.MarkedBy, &a.MarkedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func CreateAttendance(ctx context.Context, database *sql.DB, a models.Attendance) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO attendance (student_id, course_id, date, status, remarks, marked_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.StudentID, a.CourseID, dateOnly(a.Date), a.Status, a.Remarks, a.MarkedBy).Scan(&id)
	if err != nil {
		return 0, wrapErr("attendance.create", err)
	}
	return id, nil
}

func GetAttendanceByID(ctx context.Context, database *sql.DB, id int64) (*models.Attendance, error) {
	row := database.QueryRowContext(ctx, `SELECT `+attendanceCols+` FROM attendance WHERE id = $1`, id)
	a, err := scanAttendance(row)
	if err != nil {
		return nil, wrapErr("attendance.by_id", err)
	}
	return a, nil
}

func listAttendance(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Attendance, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func ListAttendance(ctx context.Context, database *sql.DB, limit, offset int) ([]models.Attendance, error) {
	res, err := listAttendance(ctx, database, `
		SELECT `+attendanceCols+` FROM attendance ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	return res, wrapErr("attendance.list", err)
}

func ListAttendanceByStudent(ctx context.Context, database *sql.DB, studentID int64) ([]models.Attendance, error) {
	res, err := listAttendance(ctx, database, `
		SELECT `+attendanceCols+` FROM attendance WHERE student_id = $1 ORDER BY date DESC`, studentID)
	return res, wrapErr("attendance.by_student", err)
}

func ListAttendanceByCourse(ctx context.Context, database *sql.DB, courseID int64) ([]models.Attendance, error) {
	res, err := listAttendance(ctx, database, `
		SELECT `+attendanceCols+` FROM attendance WHERE course_id = $1 ORDER BY date DESC`, courseID)
	return res, wrapErr("attendance.by_course", err)
}

func ListAttendanceByDate(ctx context.Context, database *sql.DB, date time.Time) ([]models.Attendance, error) {
	res, err := listAttendance(ctx, database, `
		SELECT `+attendanceCols+` FROM attendance WHERE date = $1 ORDER BY course_id, student_id`,
		dateOnly(date))
	return res, wrapErr("attendance.by_date", err)
}

// dateOnly передаёт в запрос календарную дату без времени и зоны:
// сравнение DATE с timestamptz зависело бы от зоны сервера.
func dateOnly(t time.Time) string { return t.Format("2006-01-02") }

func ListAttendanceByCourseAndRange(ctx context.Context, database *sql.DB, courseID int64, from, to time.Time) ([]models.Attendance, error) {
	res, err := listAttendance(ctx, database, `
		SELECT `+attendanceCols+` FROM attendance
		WHERE course_id = $1 AND date >= $2 AND date <= $3 ORDER BY date`,
		courseID, dateOnly(from), dateOnly(to))
	return res, wrapErr("attendance.by_course_range", err)
}

func ListAttendanceByStudentAndRange(ctx context.Context, database *sql.DB, studentID int64, from, to time.Time) ([]models.Attendance, error) {
	res, err := listAttendance(ctx, database, `
		SELECT `+attendanceCols+` FROM attendance
		WHERE student_id = $1 AND date >= $2 AND date <= $3 ORDER BY date`,
		studentID, dateOnly(from), dateOnly(to))
	return res, wrapErr("attendance.by_student_range", err)
}

func UpdateAttendance(ctx context.Context, database *sql.DB, a models.Attendance) error {
	res, err := database.ExecContext(ctx, `
		UPDATE attendance SET status = $1, remarks = $2 WHERE id = $3`,
		a.Status, a.Remarks, a.ID)
	if err != nil {
		return wrapErr("attendance.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func DeleteAttendance(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return wrapErr("attendance.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AttendancePercentage считает долю посещённых занятий студента на курсе.
// При нуле записей возвращает 0, а не ошибку деления.
func AttendancePercentage(ctx context.Context, database *sql.DB, studentID, courseID int64) (float64, error) {
	var present, total int64
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'PRESENT'), COUNT(*)
		FROM attendance
		WHERE student_id = $1 AND course_id = $2`, studentID, courseID).Scan(&present, &total)
	if err != nil {
		return 0, wrapErr("attendance.percentage", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(present) / float64(total) * 100, nil
}

func CountPresentDays(ctx context.Context, database *sql.DB, studentID, courseID int64) (int64, error) {
	var n int64
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance
		WHERE student_id = $1 AND course_id = $2 AND status = 'PRESENT'`,
		studentID, courseID).Scan(&n)
	if err != nil {
		return 0, wrapErr("attendance.present_days", err)
	}
	return n, nil
}

func CountTotalDays(ctx context.Context, database *sql.DB, studentID, courseID int64) (int64, error) {
	var n int64
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance
		WHERE student_id = $1 AND course_id = $2`,
		studentID, courseID).Scan(&n)
	if err != nil {
		return 0, wrapErr("attendance.total_days", err)
	}
	return n, nil
}

// GetDailyAttendanceStats агрегирует записи посещаемости за день по статусам.
func GetDailyAttendanceStats(ctx context.Context, database *sql.DB, date time.Time) (*models.DailyAttendanceStats, error) {
	stats := models.DailyAttendanceStats{Date: date}
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'PRESENT'),
		       COUNT(*) FILTER (WHERE status = 'ABSENT'),
		       COUNT(*) FILTER (WHERE status = 'LATE'),
		       COUNT(*)
		FROM attendance WHERE date = $1`, dateOnly(date)).
		Scan(&stats.PresentCount, &stats.AbsentCount, &stats.LateCount, &stats.TotalRecords)
	if err != nil {
		return nil, wrapErr("attendance.daily_stats", err)
	}
	if stats.TotalRecords > 0 {
		stats.Rate = float64(stats.PresentCount) / float64(stats.TotalRecords) * 100
	}
	return &stats, nil
}
