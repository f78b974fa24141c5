package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/export"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) attendanceReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	wb, err := export.AttendanceReport(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	return s.sendWorkbook(c, wb, "attendance", id)
}

func (s *Server) gradesReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	wb, err := export.GradesReport(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	return s.sendWorkbook(c, wb, "grades", id)
}

func (s *Server) sendWorkbook(c echo.Context, wb *export.Workbook, kind string, courseID int64) error {
	course, err := db.GetCourseByID(c.Request().Context(), s.db, courseID)
	if err != nil {
		return s.httpError(c, err)
	}
	var buf bytes.Buffer
	if err := wb.WriteTo(&buf); err != nil {
		return s.httpError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, export.FileName(kind, course.CourseCode)))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
