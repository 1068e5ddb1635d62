package api

import (
	"net/http"
	"strings"

	"github.com/khadamati/khadamati/internal/catalog"
	"github.com/khadamati/khadamati/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerCatalogRoutes(s *webserver.Server) {
	s.ApiGET("/catalog/services", listServices)
	s.ApiGET("/catalog/services/:id", getService)
}

func listServices(c echo.Context) error {
	page, pageSize := parsePagination(c)
	providerID, valid := queryInt64(c, "provider_id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "provider_id must be a positive integer", nil)
	}
	categoryID, valid := queryInt64(c, "category_id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "category_id must be a positive integer", nil)
	}

	rows, total, err := GetAppContext(c).Catalog().ListServices(c.Request().Context(), catalog.ServiceQuery{
		Q:          strings.TrimSpace(c.QueryParam("q")),
		ProviderID: providerID,
		CategoryID: categoryID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query services", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getService(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	svc, err := GetAppContext(c).Catalog().GetService(c.Request().Context(), id)
	if err != nil {
		return failLifecycle(c, err)
	}
	return ok(c, svc)
}
