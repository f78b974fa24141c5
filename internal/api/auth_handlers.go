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

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	StudentID string `json:"studentId" validate:"required"`
	YearLevel int    `json:"yearLevel" validate:"required,min=1,max=11"`
	Major     string `json:"major"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// register — самостоятельная регистрация студента. Преподавателей
// и администраторов заводит администратор через /api/teachers.
func (s *Server) register(c echo.Context) error {
	var req registerRequest
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

	token, err := s.auth.Issue(created.User)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, tokenResponse{Token: token, User: created.User})
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректное тело запроса")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	user, err := db.GetUserByEmail(c.Request().Context(), s.db, req.Email)
	if err != nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "неверный email или пароль")
	}
	token, err := s.auth.Issue(*user)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token, User: *user})
}

// averageGPA — средний GPA по активным студентам, кешируется надолго.
func (s *Server) averageGPA(c echo.Context) error {
	avg, err := cached(s.cache, cache.AverageGPA, "all", func() (float64, error) {
		return db.AverageGPA(c.Request().Context(), s.db)
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]float64{"averageGpa": avg})
}
