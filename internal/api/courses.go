package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/models"
)

type createCourseRequest struct {
	CourseCode   string `json:"courseCode" validate:"required"`
	CourseName   string `json:"courseName" validate:"required"`
	Description  string `json:"description"`
	Credits      int    `json:"credits" validate:"min=0"`
	Semester     string `json:"semester" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
	Schedule     string `json:"schedule"`
	Room         string `json:"room"`
	MaxStudents  int    `json:"maxStudents" validate:"min=0"`
	TeacherID    int64  `json:"teacherId" validate:"required"`
}

type updateCourseRequest struct {
	CourseName   string `json:"courseName" validate:"required"`
	Description  string `json:"description"`
	Credits      int    `json:"credits" validate:"min=0"`
	Semester     string `json:"semester" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
	Schedule     string `json:"schedule"`
	Room         string `json:"room"`
	MaxStudents  int    `json:"maxStudents" validate:"min=0"`
	IsActive     bool   `json:"isActive"`
}

func (s *Server) listCourses(c echo.Context) error {
	limit, offset := pageParams(c)
	res, err := cached(s.cache, cache.Courses, cache.Key("all", limit, offset), func() ([]models.Course, error) {
		return db.ListCourses(c.Request().Context(), s.db, limit, offset)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listActiveCourses(c echo.Context) error {
	res, err := cached(s.cache, cache.ActiveCourses, "all", func() ([]models.Course, error) {
		return db.ListActiveCourses(c.Request().Context(), s.db)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.Course, cache.Key(id), func() (*models.Course, error) {
		return db.GetCourseByID(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getCourseByCode(c echo.Context) error {
	code := c.Param("code")
	res, err := cached(s.cache, cache.CourseByCode, cache.Key(code), func() (*models.Course, error) {
		return db.GetCourseByCode(c.Request().Context(), s.db, code)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listCoursesByTeacher(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.CoursesByTeacher, cache.Key(id), func() ([]models.Course, error) {
		return db.ListActiveCoursesByTeacher(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listCoursesByStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.CoursesByStudent, cache.Key(id), func() ([]models.Course, error) {
		return db.ListCoursesByStudent(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listCoursesBySemesterYear(c echo.Context) error {
	semester := c.Param("semester")
	year := c.Param("year")
	res, err := cached(s.cache, cache.CoursesBySemesterYr, cache.Key(semester, year), func() ([]models.Course, error) {
		return db.ListCoursesBySemesterAndYear(c.Request().Context(), s.db, semester, year)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) courseEnrollmentCount(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	count, err := cached(s.cache, cache.CourseEnrollmentCnt, cache.Key(id), func() (int64, error) {
		return db.CountEnrolledStudents(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"courseId": id, "enrollmentCount": count})
}

func (s *Server) createCourse(c echo.Context) error {
	var req createCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	course := models.Course{
		CourseCode:   req.CourseCode,
		CourseName:   req.CourseName,
		Description:  req.Description,
		Credits:      req.Credits,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		Schedule:     req.Schedule,
		Room:         req.Room,
		MaxStudents:  req.MaxStudents,
		TeacherID:    req.TeacherID,
	}
	id, err := db.CreateCourse(c.Request().Context(), s.db, course)
	if err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityCourse, cache.OpCreate)

	created, err := db.GetCourseByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicCourseEvents, "COURSE_CREATED", created)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	course := models.Course{
		ID:           id,
		CourseName:   req.CourseName,
		Description:  req.Description,
		Credits:      req.Credits,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		Schedule:     req.Schedule,
		Room:         req.Room,
		MaxStudents:  req.MaxStudents,
		IsActive:     req.IsActive,
	}
	if err := db.UpdateCourse(c.Request().Context(), s.db, course); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityCourse, cache.OpUpdate)

	updated, err := db.GetCourseByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicCourseEvents, "COURSE_UPDATED", updated)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.SoftDeleteCourse(c.Request().Context(), s.db, id); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityCourse, cache.OpDelete)
	s.events.Publish(events.TopicCourseEvents, "COURSE_DELETED", map[string]any{"id": id})
	return c.NoContent(http.StatusNoContent)
}
