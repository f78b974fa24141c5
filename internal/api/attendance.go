package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/ctxutil"
	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/models"
)

type createAttendanceRequest struct {
	StudentID int64                   `json:"studentId" validate:"required"`
	CourseID  int64                   `json:"courseId" validate:"required"`
	Date      string                  `json:"date" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
	Remarks   *string                 `json:"remarks"`
}

type updateAttendanceRequest struct {
	Status  models.AttendanceStatus `json:"status" validate:"required"`
	Remarks *string                 `json:"remarks"`
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusUnprocessableEntity, "дата в формате YYYY-MM-DD")
	}
	return d, nil
}

func (s *Server) listAttendance(c echo.Context) error {
	limit, offset := pageParams(c)
	res, err := cached(s.cache, cache.Attendance, cache.Key("all", limit, offset), func() ([]models.Attendance, error) {
		return db.ListAttendance(c.Request().Context(), s.db, limit, offset)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getAttendance(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.AttendanceRecord, cache.Key(id), func() (*models.Attendance, error) {
		return db.GetAttendanceByID(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listAttendanceByStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.AttendanceByStudent, cache.Key(id), func() ([]models.Attendance, error) {
		return db.ListAttendanceByStudent(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listAttendanceByCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.AttendanceByCourse, cache.Key(id), func() ([]models.Attendance, error) {
		return db.ListAttendanceByCourse(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listAttendanceByDate(c echo.Context) error {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.AttendanceByDate, cache.Key(date.Format("2006-01-02")), func() ([]models.Attendance, error) {
		return db.ListAttendanceByDate(c.Request().Context(), s.db, date)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listAttendanceByCourseRange(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	from, err := parseDate(c.QueryParam("from"))
	if err != nil {
		return err
	}
	to, err := parseDate(c.QueryParam("to"))
	if err != nil {
		return err
	}
	key := cache.Key(id, from.Format("2006-01-02"), to.Format("2006-01-02"))
	res, err := cached(s.cache, cache.AttendanceByCourseRange, key, func() ([]models.Attendance, error) {
		return db.ListAttendanceByCourseAndRange(c.Request().Context(), s.db, id, from, to)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listAttendanceByStudentRange(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	from, err := parseDate(c.QueryParam("from"))
	if err != nil {
		return err
	}
	to, err := parseDate(c.QueryParam("to"))
	if err != nil {
		return err
	}
	key := cache.Key(id, from.Format("2006-01-02"), to.Format("2006-01-02"))
	res, err := cached(s.cache, cache.AttendanceByStudentRange, key, func() ([]models.Attendance, error) {
		return db.ListAttendanceByStudentAndRange(c.Request().Context(), s.db, id, from, to)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) attendancePercentage(c echo.Context) error {
	studentID, err := pathID(c, "studentId")
	if err != nil {
		return err
	}
	courseID, err := pathID(c, "courseId")
	if err != nil {
		return err
	}
	pct, err := cached(s.cache, cache.AttendancePercentage, cache.Key(studentID, courseID), func() (float64, error) {
		return db.AttendancePercentage(c.Request().Context(), s.db, studentID, courseID)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"studentId": studentID, "courseId": courseID, "percentage": pct,
	})
}

func (s *Server) presentDaysCount(c echo.Context) error {
	studentID, err := pathID(c, "studentId")
	if err != nil {
		return err
	}
	courseID, err := pathID(c, "courseId")
	if err != nil {
		return err
	}
	count, err := cached(s.cache, cache.PresentDaysCount, cache.Key(studentID, courseID), func() (int64, error) {
		return db.CountPresentDays(c.Request().Context(), s.db, studentID, courseID)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"studentId": studentID, "courseId": courseID, "presentDays": count,
	})
}

func (s *Server) totalDaysCount(c echo.Context) error {
	studentID, err := pathID(c, "studentId")
	if err != nil {
		return err
	}
	courseID, err := pathID(c, "courseId")
	if err != nil {
		return err
	}
	count, err := cached(s.cache, cache.TotalDaysCount, cache.Key(studentID, courseID), func() (int64, error) {
		return db.CountTotalDays(c.Request().Context(), s.db, studentID, courseID)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"studentId": studentID, "courseId": courseID, "totalDays": count,
	})
}

func (s *Server) createAttendance(c echo.Context) error {
	var req createAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректный статус посещаемости")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	markedBy := "system"
	if uid, ok := ctxutil.UserID(c.Request().Context()); ok {
		if u, err := db.GetUserByID(c.Request().Context(), s.db, uid); err == nil {
			markedBy = u.FirstName + " " + u.LastName
		}
	}

	record := models.Attendance{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Date:      date,
		Status:    req.Status,
		Remarks:   req.Remarks,
		MarkedBy:  markedBy,
	}
	id, err := db.CreateAttendance(c.Request().Context(), s.db, record)
	if err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityAttendance, cache.OpCreate)

	created, err := db.GetAttendanceByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicAttendanceEvents, "ATTENDANCE_MARKED", created)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateAttendance(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректный статус посещаемости")
	}
	record := models.Attendance{ID: id, Status: req.Status, Remarks: req.Remarks}
	if err := db.UpdateAttendance(c.Request().Context(), s.db, record); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityAttendance, cache.OpUpdate)

	updated, err := db.GetAttendanceByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicAttendanceEvents, "ATTENDANCE_UPDATED", updated)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteAttendance(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.DeleteAttendance(c.Request().Context(), s.db, id); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityAttendance, cache.OpDelete)
	s.events.Publish(events.TopicAttendanceEvents, "ATTENDANCE_DELETED", map[string]any{"id": id})
	return c.NoContent(http.StatusNoContent)
}
