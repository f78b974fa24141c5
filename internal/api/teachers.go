package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/school-management-api/internal/auth"
	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/models"
)

type createTeacherRequest struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	EmployeeID     string `json:"employeeId" validate:"required"`
	Department     string `json:"department"`
	Specialization string `json:"specialization"`
}

type updateTeacherRequest struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Department     string `json:"department"`
	Specialization string `json:"specialization"`
	IsActive       bool   `json:"isActive"`
}

func (s *Server) listTeachers(c echo.Context) error {
	limit, offset := pageParams(c)
	res, err := cached(s.cache, cache.Teachers, cache.Key("all", limit, offset), func() ([]models.Teacher, error) {
		return db.ListTeachers(c.Request().Context(), s.db, limit, offset)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listActiveTeachers(c echo.Context) error {
	res, err := cached(s.cache, cache.ActiveTeachers, "all", func() ([]models.Teacher, error) {
		return db.ListActiveTeachers(c.Request().Context(), s.db)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getTeacher(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.Teacher, cache.Key(id), func() (*models.Teacher, error) {
		return db.GetTeacherByID(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getTeacherByEmployeeID(c echo.Context) error {
	code := c.Param("code")
	res, err := cached(s.cache, cache.TeacherByEmployee, cache.Key(code), func() (*models.Teacher, error) {
		return db.GetTeacherByEmployeeID(c.Request().Context(), s.db, code)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listTeachersByDepartment(c echo.Context) error {
	department := c.Param("department")
	res, err := cached(s.cache, cache.TeachersByDepartment, cache.Key(department), func() ([]models.Teacher, error) {
		return db.ListActiveTeachersByDepartment(c.Request().Context(), s.db, department)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listTeachersBySpecialization(c echo.Context) error {
	spec := c.Param("specialization")
	res, err := cached(s.cache, cache.TeachersBySpec, cache.Key(spec), func() ([]models.Teacher, error) {
		return db.ListActiveTeachersBySpecialization(c.Request().Context(), s.db, spec)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) teacherCourseCount(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	count, err := cached(s.cache, cache.TeacherCourseCount, cache.Key(id), func() (int64, error) {
		return db.CountActiveCoursesByTeacher(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"teacherId": id, "courseCount": count})
}

func (s *Server) createTeacher(c echo.Context) error {
	var req createTeacherRequest
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
	teacher := models.Teacher{
		User: models.User{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Role:      models.RoleTeacher,
		},
		EmployeeID:     req.EmployeeID,
		Department:     req.Department,
		Specialization: req.Specialization,
	}
	id, err := db.CreateTeacher(c.Request().Context(), s.db, teacher, hash)
	if err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityTeacher, cache.OpCreate)

	created, err := db.GetTeacherByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicUserEvents, "TEACHER_CREATED", created)
	s.notify.Welcome(created.User)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTeacher(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateTeacherRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	teacher := models.Teacher{
		User: models.User{
			ID:        id,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			IsActive:  req.IsActive,
		},
		Department:     req.Department,
		Specialization: req.Specialization,
	}
	if err := db.UpdateTeacher(c.Request().Context(), s.db, teacher); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityTeacher, cache.OpUpdate)

	updated, err := db.GetTeacherByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicUserEvents, "TEACHER_UPDATED", updated)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteTeacher(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.SoftDeleteTeacher(c.Request().Context(), s.db, id); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityTeacher, cache.OpDelete)
	s.events.Publish(events.TopicUserEvents, "TEACHER_DELETED", map[string]any{"id": id})
	return c.NoContent(http.StatusNoContent)
}
