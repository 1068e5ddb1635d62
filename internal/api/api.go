package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/khadamati/khadamati/internal/app"
	"github.com/khadamati/khadamati/internal/requests"
	"github.com/khadamati/khadamati/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Register installs every API route on s.
func Register(s *webserver.Server) {
	registerRequestRoutes(s)
	registerDashboardRoutes(s)
	registerCatalogRoutes(s)

	// public
	s.Echo().GET("/metrics", metrics)
}

func metrics(c echo.Context) error {
	GetAppContext(c).Metrics().Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}

func GetAppContext(c echo.Context) app.AppContext {
	return webserver.GetAppContext(c)
}

type Meta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": data})
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": data,
		"meta": Meta{Total: total, Page: page, PageSize: pageSize},
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return webserver.Fail(c, status, code, message, detail)
}

// failLifecycle maps an engine error onto the HTTP error envelope.
func failLifecycle(c echo.Context, err error) error {
	kind := requests.Kind(err)
	if m := GetAppContext(c).Metrics(); m != nil {
		m.IncRejected(kind)
	}
	switch kind {
	case "not_found":
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Resource not found", err.Error())
	case "validation":
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", err.Error())
	case "invalid_transition":
		return fail(c, http.StatusConflict, "INVALID_TRANSITION", "Transition not allowed from the current status", err.Error())
	case "forbidden":
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Not allowed for this user", err.Error())
	case "unauthorized":
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not allowed for this role", err.Error())
	}
	zap.L().Error("lifecycle operation failed",
		zap.String("namespace", "api"),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed", nil)
}

func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20
	for _, key := range []string{"perPage", "pageSize"} {
		if ps, err := strconv.Atoi(c.QueryParam(key)); err == nil && ps > 0 && ps <= 500 {
			pageSize = ps
			break
		}
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt64 reads an optional numeric query parameter; absent means 0.
func queryInt64(c echo.Context, name string) (int64, bool) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
