package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/ctxutil"
	"github.com/Spok95/school-management-api/internal/metrics"
	"github.com/Spok95/school-management-api/internal/models"
)

const headerRequestID = "X-Request-Id"

// requestID прокидывает идентификатор запроса в контекст и ответ.
func (s *Server) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.SetRequest(c.Request().WithContext(
			ctxutil.WithRequestID(c.Request().Context(), id)))
		c.Response().Header().Set(headerRequestID, id)
		return next(c)
	}
}

// requestLog пишет строку на каждый запрос и обновляет метрики.
func (s *Server) requestLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		status := c.Response().Status
		path := c.Path()
		method := c.Request().Method

		metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		reqID, _ := ctxutil.RequestID(c.Request().Context())
		s.log.Info("http запрос",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", reqID))
		return nil
	}
}

// authenticate проверяет Bearer-токен и кладёт id и роль в контекст.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "требуется токен")
		}
		claims, err := s.auth.Parse(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "недействительный токен")
		}
		ctx := ctxutil.WithUserID(c.Request().Context(), claims.UserID)
		ctx = ctxutil.WithRole(ctx, string(claims.Role))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// require пропускает только перечисленные роли.
func (s *Server) require(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := ctxutil.Role(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "требуется токен")
			}
			for _, r := range roles {
				if models.Role(role) == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "недостаточно прав")
		}
	}
}
