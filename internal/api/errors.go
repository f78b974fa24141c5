package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/metrics"
	"github.com/Spok95/school-management-api/internal/observability"
)

// httpError переводит ошибку хранилища в HTTP-статус.
func (s *Server) httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "запись не найдена")
	case errors.Is(err, db.ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, "запись уже существует")
	case errors.Is(err, db.ErrGradedImmutable):
		return echo.NewHTTPError(http.StatusBadRequest, "оценённую работу нельзя изменять или удалять")
	default:
		metrics.HandlerErrors.Inc()
		observability.CaptureErr(err)
		s.log.Error("внутренняя ошибка", zap.String("path", c.Path()), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "внутренняя ошибка")
	}
}

// pathID достаёт числовой параметр пути.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "некорректный идентификатор")
	}
	return id, nil
}

// pageParams разбирает limit/offset с разумными пределами.
func pageParams(c echo.Context) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// cached — сквозное чтение: значение берётся из региона кеша,
// при промахе загружается и кладётся с TTL региона.
func cached[T any](c *cache.Cache, region cache.Region, key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(region, key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	t, err := load()
	if err != nil {
		return t, err
	}
	c.Put(region, key, t)
	return t, nil
}
