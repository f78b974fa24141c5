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

type createAssignmentRequest struct {
	CourseID    int64                 `json:"courseId" validate:"required"`
	Title       string                `json:"title" validate:"required"`
	Description string                `json:"description"`
	DueDate     time.Time             `json:"dueDate" validate:"required"`
	MaxPoints   int                   `json:"maxPoints" validate:"min=0"`
	Type        models.AssignmentType `json:"type" validate:"required"`
}

type updateAssignmentRequest struct {
	Title       string                `json:"title" validate:"required"`
	Description string                `json:"description"`
	DueDate     time.Time             `json:"dueDate" validate:"required"`
	MaxPoints   int                   `json:"maxPoints" validate:"min=0"`
	Type        models.AssignmentType `json:"type" validate:"required"`
	IsActive    bool                  `json:"isActive"`
}

func (s *Server) listAssignments(c echo.Context) error {
	limit, offset := pageParams(c)
	res, err := cached(s.cache, cache.Assignments, cache.Key("all", limit, offset), func() ([]models.Assignment, error) {
		return db.ListAssignments(c.Request().Context(), s.db, limit, offset)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getAssignment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.Assignment, cache.Key(id), func() (*models.Assignment, error) {
		return db.GetAssignmentByID(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listAssignmentsByCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.AssignmentsByCourse, cache.Key(id), func() ([]models.Assignment, error) {
		return db.ListAssignmentsByCourse(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listAssignmentsByTeacher(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.AssignmentsByTeacher, cache.Key(id), func() ([]models.Assignment, error) {
		return db.ListAssignmentsByTeacher(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listAssignmentsByType(c echo.Context) error {
	typ := models.AssignmentType(c.Param("type"))
	if !typ.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректный тип задания")
	}
	res, err := cached(s.cache, cache.AssignmentsByType, cache.Key(string(typ)), func() ([]models.Assignment, error) {
		return db.ListAssignmentsByType(c.Request().Context(), s.db, typ)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listOverdueAssignments(c echo.Context) error {
	res, err := cached(s.cache, cache.OverdueAssignments, "all", func() ([]models.Assignment, error) {
		return db.ListOverdueAssignments(c.Request().Context(), s.db, time.Now())
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listUpcomingAssignments(c echo.Context) error {
	res, err := cached(s.cache, cache.UpcomingAssignments, "all", func() ([]models.Assignment, error) {
		now := time.Now()
		return db.ListAssignmentsDueBetween(c.Request().Context(), s.db, now, now.Add(7*24*time.Hour))
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// submissionCount намеренно без кэша: преподаватель следит за сдачей в реальном времени.
func (s *Server) submissionCount(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	count, err := db.CountSubmissionsByAssignment(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"assignmentId": id, "submissionCount": count})
}

func (s *Server) createAssignment(c echo.Context) error {
	var req createAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.Type.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректный тип задания")
	}
	assignment := models.Assignment{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		MaxPoints:   req.MaxPoints,
		Type:        req.Type,
	}
	id, err := db.CreateAssignment(c.Request().Context(), s.db, assignment)
	if err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityAssignment, cache.OpCreate)

	created, err := db.GetAssignmentByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicAssignmentEvents, "ASSIGNMENT_CREATED", created)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateAssignment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.Type.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректный тип задания")
	}
	assignment := models.Assignment{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		MaxPoints:   req.MaxPoints,
		Type:        req.Type,
		IsActive:    req.IsActive,
	}
	if err := db.UpdateAssignment(c.Request().Context(), s.db, assignment); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityAssignment, cache.OpUpdate)

	updated, err := db.GetAssignmentByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicAssignmentEvents, "ASSIGNMENT_UPDATED", updated)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteAssignment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.SoftDeleteAssignment(c.Request().Context(), s.db, id); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntityAssignment, cache.OpDelete)
	s.events.Publish(events.TopicAssignmentEvents, "ASSIGNMENT_DELETED", map[string]any{"id": id})
	return c.NoContent(http.StatusNoContent)
}
