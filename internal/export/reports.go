package export

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Spok95/school-management-api/internal/db"
)

// AttendanceReport собирает журнал посещаемости курса в XLSX.
func AttendanceReport(ctx context.Context, database *sql.DB, courseID int64) (*Workbook, error) {
	course, err := db.GetCourseByID(ctx, database, courseID)
	if err != nil {
		return nil, err
	}
	records, err := db.ListAttendanceByCourse(ctx, database, courseID)
	if err != nil {
		return nil, err
	}
	students, err := db.ListStudentsEnrolledInCourse(ctx, database, courseID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(students))
	for _, s := range students {
		names[s.ID] = s.FirstName + " " + s.LastName
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		remarks := ""
		if r.Remarks != nil {
			remarks = *r.Remarks
		}
		name := names[r.StudentID]
		if name == "" {
			name = strconv.FormatInt(r.StudentID, 10)
		}
		rows = append(rows, []string{
			r.Date.Format("02.01.2006"),
			name,
			string(r.Status),
			remarks,
			r.MarkedBy,
		})
	}

	return NewWorkbook([]SheetSpec{{
		Title:  "Посещаемость " + course.CourseCode,
		Header: []string{"Дата", "Студент", "Статус", "Примечание", "Отметил"},
		Rows:   rows,
	}})
}

// GradesReport собирает оценки по заданиям курса в XLSX.
func GradesReport(ctx context.Context, database *sql.DB, courseID int64) (*Workbook, error) {
	course, err := db.GetCourseByID(ctx, database, courseID)
	if err != nil {
		return nil, err
	}
	assignments, err := db.ListAssignmentsByCourse(ctx, database, courseID)
	if err != nil {
		return nil, err
	}
	students, err := db.ListStudentsEnrolledInCourse(ctx, database, courseID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(students))
	for _, s := range students {
		names[s.ID] = s.FirstName + " " + s.LastName
	}

	titles := make(map[int64]string, len(assignments))
	for _, a := range assignments {
		titles[a.ID] = a.Title
	}

	subs, err := db.ListSubmissionsByCourse(ctx, database, courseID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		grade, gradedBy := "—", ""
		if sub.Grade != nil {
			grade = *sub.Grade
		}
		if sub.GradedBy != nil {
			gradedBy = *sub.GradedBy
		}
		late := ""
		if sub.IsLate {
			late = "да"
		}
		name := names[sub.StudentID]
		if name == "" {
			name = strconv.FormatInt(sub.StudentID, 10)
		}
		rows = append(rows, []string{
			name,
			titles[sub.AssignmentID],
			sub.SubmittedAt.Format("02.01.2006 15:04"),
			grade,
			late,
			gradedBy,
		})
	}

	return NewWorkbook([]SheetSpec{{
		Title:  "Оценки " + course.CourseCode,
		Header: []string{"Студент", "Задание", "Сдано", "Оценка", "С опозданием", "Проверил"},
		Rows:   rows,
	}})
}

// FileName строит имя файла отчёта для заголовка Content-Disposition.
func FileName(kind, courseCode string) string {
	return fmt.Sprintf("%s_%s.xlsx", kind, courseCode)
}
