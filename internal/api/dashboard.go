package api

import (
	"net/http"

	"github.com/khadamati/khadamati/internal/requests"
	"github.com/khadamati/khadamati/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func registerDashboardRoutes(s *webserver.Server) {
	s.ApiGET("/dashboard/customer", customerDashboard)
	s.ApiGET("/dashboard/provider", providerDashboard)
	s.ApiGET("/providers/:id/earnings", providerEarnings)
}

// dashboardSubject picks whose dashboard to build: the caller's own, or the
// one named by the query parameter when an admin asks.
func dashboardSubject(c echo.Context, role, param string) (int64, error) {
	actor, err := webserver.CurrentActor(c)
	if err != nil {
		return 0, err
	}
	switch {
	case actor.Role == role:
		return actor.ID, nil
	case actor.IsAdmin():
		id, valid := queryInt64(c, param)
		if !valid || id == 0 {
			return 0, errors.Wrapf(requests.ErrValidation, "%s is required", param)
		}
		return id, nil
	}
	return 0, errors.Wrapf(requests.ErrUnauthorized, "role %q has no %s dashboard", actor.Role, role)
}

func customerDashboard(c echo.Context) error {
	id, err := dashboardSubject(c, requests.RoleCustomer, "customer_id")
	if err != nil {
		return failLifecycle(c, err)
	}
	d, err := GetAppContext(c).Requests().Aggregator().CustomerDashboard(c.Request().Context(), id)
	if err != nil {
		return failLifecycle(c, err)
	}
	return ok(c, d)
}

func providerDashboard(c echo.Context) error {
	id, err := dashboardSubject(c, requests.RoleProvider, "provider_id")
	if err != nil {
		return failLifecycle(c, err)
	}
	d, err := GetAppContext(c).Requests().Aggregator().ProviderDashboard(c.Request().Context(), id)
	if err != nil {
		return failLifecycle(c, err)
	}
	return ok(c, d)
}

func providerEarnings(c echo.Context) error {
	actor, err := webserver.CurrentActor(c)
	if err != nil {
		return failLifecycle(c, err)
	}
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid provider ID", nil)
	}
	if !actor.IsAdmin() && !(actor.IsProvider() && actor.ID == id) {
		return failLifecycle(c, errors.Wrapf(requests.ErrForbidden, "earnings of provider %d", id))
	}
	total, err := GetAppContext(c).Requests().ProviderEarnings(c.Request().Context(), id)
	if err != nil {
		return failLifecycle(c, err)
	}
	return ok(c, map[string]interface{}{
		"provider_id": id,
		"earnings":    total,
	})
}
