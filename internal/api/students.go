package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/school-management-api/internal/auth"
	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/models"
)

type createStudentRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	StudentID string `json:"studentId" validate:"required"`
	YearLevel int    `json:"yearLevel" validate:"required,min=1,max=11"`
	Major     string `json:"major"`
}

type updateStudentRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	YearLevel int    `json:"yearLevel" validate:"required,min=1,max=11"`
	Major     string `json:"major"`
	IsActive  bool   `json:"isActive"`
}

func (s *Server) listStudents(c echo.Context) error {
	limit, offset := pageParams(c)
	res, err := cached(s.cache, cache.Students, cache.Key("all", limit, offset), func() ([]models.Student, error) {
		return db.ListStudents(c.Request().Context(), s.db, limit, offset)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listActiveStudents(c echo.Context) error {
	res, err := cached(s.cache, cache.ActiveStudents, "all", func() ([]models.Student, error) {
		return db.ListActiveStudents(c.Request().Context(), s.db)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.Student, cache.Key(id), func() (*models.Student, error) {
		return db.GetStudentByID(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getStudentByCode(c echo.Context) error {
	code := c.Param("code")
	res, err := cached(s.cache, cache.Student, cache.Key("code", code), func() (*models.Student, error) {
		return db.GetStudentByStudentID(c.Request().Context(), s.db, code)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listStudentsByYear(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year <= 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректный год обучения")
	}
	res, err := cached(s.cache, cache.StudentsByYear, cache.Key(year), func() ([]models.Student, error) {
		return db.ListActiveStudentsByYearLevel(c.Request().Context(), s.db, year)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listStudentsByMajor(c echo.Context) error {
	major := c.Param("major")
	res, err := cached(s.cache, cache.StudentsByMajor, cache.Key(major), func() ([]models.Student, error) {
		return db.ListActiveStudentsByMajor(c.Request().Context(), s.db, major)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) createStudent(c echo.Context) error {
	var req createStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return s.httpError(c, err)
	}
	student := models.Student{
		User: models.User{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Role:      models.RoleStudent,
		},
		StudentID: req.StudentID,
		YearLevel: req.YearLevel,
		Major:     req.Major,
	}
	id, err := db.CreateStudent(c.Request().Context(), s.db, student, hash)
	if err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityStudent, cache.OpCreate)

	created, err := db.GetStudentByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicUserEvents, "STUDENT_CREATED", created)
	s.notify.Welcome(created.User)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	student := models.Student{
		User: models.User{
			ID:        id,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			IsActive:  req.IsActive,
		},
		YearLevel: req.YearLevel,
		Major:     req.Major,
	}
	if err := db.UpdateStudent(c.Request().Context(), s.db, student); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityStudent, cache.OpUpdate)

	updated, err := db.GetStudentByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicUserEvents, "STUDENT_UPDATED", updated)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.SoftDeleteStudent(c.Request().Context(), s.db, id); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityStudent, cache.OpDelete)
	s.events.Publish(events.TopicUserEvents, "STUDENT_DELETED", map[string]any{"id": id})
	return c.NoContent(http.StatusNoContent)
}
