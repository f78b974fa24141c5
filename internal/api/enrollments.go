package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/models"
)

type createEnrollmentRequest struct {
	StudentID int64 `json:"studentId" validate:"required"`
	CourseID  int64 `json:"courseId" validate:"required"`
}

type updateEnrollmentRequest struct {
	Grade  *string                 `json:"grade"`
	Status models.EnrollmentStatus `json:"status" validate:"required"`
}

func (s *Server) listEnrollments(c echo.Context) error {
	limit, offset := pageParams(c)
	res, err := cached(s.cache, cache.Enrollments, cache.Key("all", limit, offset), func() ([]models.Enrollment, error) {
		return db.ListEnrollments(c.Request().Context(), s.db, limit, offset)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getEnrollment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.Enrollment, cache.Key(id), func() (*models.Enrollment, error) {
		return db.GetEnrollmentByID(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listEnrollmentsByStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.EnrollmentsByStudent, cache.Key(id), func() ([]models.Enrollment, error) {
		return db.ListEnrollmentsByStudent(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listEnrollmentsByCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.EnrollmentsByCourse, cache.Key(id), func() ([]models.Enrollment, error) {
		return db.ListEnrollmentsByCourse(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listEnrollmentsBySemesterYear(c echo.Context) error {
	semester := c.Param("semester")
	year := c.Param("year")
	res, err := cached(s.cache, cache.EnrollmentsBySemesterYr, cache.Key(semester, year), func() ([]models.Enrollment, error) {
		return db.ListEnrollmentsBySemesterAndYear(c.Request().Context(), s.db, semester, year)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) enrollmentCountByCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	count, err := cached(s.cache, cache.EnrollmentCountByCourse, cache.Key(id), func() (int64, error) {
		return db.CountEnrolledStudents(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"courseId": id, "enrollmentCount": count})
}

func (s *Server) enrollmentCountByStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	count, err := cached(s.cache, cache.EnrollmentCountByStud, cache.Key(id), func() (int64, error) {
		return db.CountActiveEnrollmentsByStudent(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"studentId": id, "enrollmentCount": count})
}

func (s *Server) createEnrollment(c echo.Context) error {
	var req createEnrollmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	enrollment := models.Enrollment{
		StudentID:      req.StudentID,
		CourseID:       req.CourseID,
		EnrollmentDate: time.Now(),
		Status:         models.Enrolled,
	}
	id, err := db.CreateEnrollment(c.Request().Context(), s.db, enrollment)
	if err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityEnrollment, cache.OpCreate)

	created, err := db.GetEnrollmentByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicEnrollmentEvents, "ENROLLMENT_CREATED", created)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateEnrollment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateEnrollmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректный статус записи")
	}
	enrollment := models.Enrollment{ID: id, Grade: req.Grade, Status: req.Status}
	if err := db.UpdateEnrollment(c.Request().Context(), s.db, enrollment); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityEnrollment, cache.OpUpdate)

	updated, err := db.GetEnrollmentByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicEnrollmentEvents, "ENROLLMENT_UPDATED", updated)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteEnrollment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.DropEnrollment(c.Request().Context(), s.db, id); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityEnrollment, cache.OpDelete)
	s.events.Publish(events.TopicEnrollmentEvents, "ENROLLMENT_DROPPED", map[string]any{"id": id})
	return c.NoContent(http.StatusNoContent)
}
