package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/ctxutil"
	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/models"
)

type createSubmissionRequest struct {
	AssignmentID int64  `json:"assignmentId" validate:"required"`
	StudentID    int64  `json:"studentId" validate:"required"`
	Content      string `json:"content" validate:"required"`
}

type updateSubmissionRequest struct {
	Content string `json:"content" validate:"required"`
}

type gradeSubmissionRequest struct {
	Grade    string  `json:"grade" validate:"required"`
	Feedback *string `json:"feedback"`
}

func (s *Server) listSubmissions(c echo.Context) error {
	limit, offset := pageParams(c)
	res, err := cached(s.cache, cache.Submissions, cache.Key("all", limit, offset), func() ([]models.Submission, error) {
		return db.ListSubmissions(c.Request().Context(), s.db, limit, offset)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getSubmission(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.Submission, cache.Key(id), func() (*models.Submission, error) {
		return db.GetSubmissionByID(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listSubmissionsByStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.SubmissionsByStudent, cache.Key(id), func() ([]models.Submission, error) {
		return db.ListSubmissionsByStudent(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listSubmissionsByAssignment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.SubmissionsByAssignment, cache.Key(id), func() ([]models.Submission, error) {
		return db.ListSubmissionsByAssignment(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listSubmissionsByCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.SubmissionsByCourse, cache.Key(id), func() ([]models.Submission, error) {
		return db.ListSubmissionsByCourse(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listSubmissionsByStudentCourse(c echo.Context) error {
	studentID, err := pathID(c, "studentId")
	if err != nil {
		return err
	}
	courseID, err := pathID(c, "courseId")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.SubmissionsByStudentCrs, cache.Key(studentID, courseID), func() ([]models.Submission, error) {
		return db.ListSubmissionsByStudentAndCourse(c.Request().Context(), s.db, studentID, courseID)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listUngradedSubmissions(c echo.Context) error {
	res, err := cached(s.cache, cache.UngradedSubmissions, "all", func() ([]models.Submission, error) {
		return db.ListUngradedSubmissions(c.Request().Context(), s.db)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listUngradedByAssignment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := cached(s.cache, cache.UngradedByAssignment, cache.Key(id), func() ([]models.Submission, error) {
		return db.ListUngradedSubmissionsByAssignment(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listLateSubmissions(c echo.Context) error {
	res, err := cached(s.cache, cache.LateSubmissions, "all", func() ([]models.Submission, error) {
		return db.ListLateSubmissions(c.Request().Context(), s.db)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) averageGradeByAssignment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	avg, err := cached(s.cache, cache.AverageGradeByAssign, cache.Key(id), func() (sql.NullFloat64, error) {
		return db.AverageGradeByAssignment(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	resp := map[string]any{"assignmentId": id, "averageGrade": nil}
	if avg.Valid {
		resp["averageGrade"] = avg.Float64
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) pendingGradesCount(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	count, err := cached(s.cache, cache.PendingGradesCount, cache.Key(id), func() (int64, error) {
		return db.CountUngradedSubmissionsByTeacher(c.Request().Context(), s.db, id)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"teacherId": id, "pendingGrades": count})
}

func (s *Server) createSubmission(c echo.Context) error {
	var req createSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	submission := models.Submission{
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
		Content:      req.Content,
		SubmittedAt:  time.Now(),
	}
	id, err := db.CreateSubmission(c.Request().Context(), s.db, submission)
	if err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntitySubmission, cache.OpCreate)

	created, err := db.GetSubmissionByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicSubmissionEvents, "SUBMISSION_CREATED", created)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateSubmission(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	submission := models.Submission{ID: id, Content: req.Content}
	if err := db.UpdateSubmission(c.Request().Context(), s.db, submission); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntitySubmission, cache.OpUpdate)

	updated, err := db.GetSubmissionByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicSubmissionEvents, "SUBMISSION_UPDATED", updated)
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) gradeSubmission(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req gradeSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	gradedBy := "system"
	if uid, ok := ctxutil.UserID(c.Request().Context()); ok {
		if u, err := db.GetUserByID(c.Request().Context(), s.db, uid); err == nil {
			gradedBy = u.FirstName + " " + u.LastName
		}
	}

	if err := db.GradeSubmission(c.Request().Context(), s.db, id, req.Grade, req.Feedback, gradedBy); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntitySubmission, cache.OpGrade)

	graded, err := db.GetSubmissionByID(c.Request().Context(), s.db, id)
	if err != nil {
		return s.httpError(c, err)
	}
	s.events.Publish(events.TopicSubmissionEvents, "SUBMISSION_GRADED", graded)
	if student, err := db.GetStudentByID(c.Request().Context(), s.db, graded.StudentID); err == nil {
		s.notify.SubmissionGraded(*student, *graded)
	}
	return c.JSON(http.StatusOK, graded)
}

func (s *Server) deleteSubmission(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.DeleteSubmission(c.Request().Context(), s.db, id); err != nil {
		return s.httpError(c, err)
	}
	s.cache.Invalidate(cache.EntitySubmission, cache.OpDelete)
	s.events.Publish(events.TopicSubmissionEvents, "SUBMISSION_DELETED", map[string]any{"id": id})
	return c.NoContent(http.StatusNoContent)
}
