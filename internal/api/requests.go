package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/khadamati/khadamati/internal/domain"
	"github.com/khadamati/khadamati/internal/requests"
	"github.com/khadamati/khadamati/internal/webserver"
	"github.com/khadamati/khadamati/pkg/common"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type createRequestPayload struct {
	ProviderID    common.FlexID `json:"provider_id" validate:"required"`
	ServiceID     common.FlexID `json:"service_id" validate:"required"`
	Details       string        `json:"details"`
	ScheduledDate string        `json:"scheduled_date"`
	Price         *float64      `json:"price" validate:"required"`
}

type transitionPayload struct {
	Status string `json:"status" validate:"required"`
}

func registerRequestRoutes(s *webserver.Server) {
	s.ApiPOST("/requests", createRequest)
	s.ApiGET("/requests", listRequests)
	s.ApiGET("/requests/export", exportRequests)
	s.ApiGET("/requests/:id", getRequest)
	s.ApiGET("/requests/:id/history", requestHistory)
	s.ApiPOST("/requests/:id/transition", transitionRequest)
	for _, action := range []string{requests.ActionAccept, requests.ActionReject, requests.ActionComplete, requests.ActionCancel} {
		s.ApiPOST("/requests/:id/"+action, actRequest(action))
	}
}

func createRequest(c echo.Context) error {
	actor, err := webserver.CurrentActor(c)
	if err != nil {
		return failLifecycle(c, err)
	}
	// role is checked before payload shape
	if !actor.IsCustomer() {
		return failLifecycle(c, errors.Wrapf(requests.ErrUnauthorized, "role %q cannot request services", actor.Role))
	}
	var payload createRequestPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	svc := GetAppContext(c).Requests()
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", err.Error())
	}

	req, err := svc.Create(c.Request().Context(), actor, requests.CreateInput{
		ProviderID:    int64(payload.ProviderID),
		ServiceID:     int64(payload.ServiceID),
		Details:       payload.Details,
		ScheduledDate: payload.ScheduledDate,
		Price:         *payload.Price,
	})
	if err != nil {
		return failLifecycle(c, err)
	}
	return created(c, req)
}

// loadVisible fetches request :id and checks that actor may read it.
func loadVisible(c echo.Context) (*domain.ServiceRequest, requests.Actor, error) {
	actor, err := webserver.CurrentActor(c)
	if err != nil {
		return nil, actor, err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, actor, errors.Wrapf(requests.ErrValidation, "invalid request id %q", c.Param("id"))
	}
	svc := GetAppContext(c).Requests()
	req, err := svc.Get(c.Request().Context(), id)
	if err != nil {
		return nil, actor, err
	}
	if !svc.Policy().CanView(actor, req) {
		return nil, actor, errors.Wrapf(requests.ErrForbidden, "request %d belongs to someone else", id)
	}
	return req, actor, nil
}

func getRequest(c echo.Context) error {
	req, _, err := loadVisible(c)
	if err != nil {
		return failLifecycle(c, err)
	}
	return ok(c, req)
}

// scopedFilter reads list filters from the query and narrows them to what
// the caller may see.
func scopedFilter(c echo.Context) (requests.Filter, error) {
	actor, err := webserver.CurrentActor(c)
	if err != nil {
		return requests.Filter{}, err
	}
	var f requests.Filter
	var valid bool
	if f.CustomerID, valid = queryInt64(c, "customer_id"); !valid {
		return f, errors.Wrap(requests.ErrValidation, "customer_id must be a positive integer")
	}
	if f.ProviderID, valid = queryInt64(c, "provider_id"); !valid {
		return f, errors.Wrap(requests.ErrValidation, "provider_id must be a positive integer")
	}
	if v := strings.TrimSpace(c.QueryParam("status")); v != "" {
		st, found := domain.ParseStatus(v)
		if !found {
			return f, errors.Wrapf(requests.ErrValidation, "unknown status %q", v)
		}
		f.Status = st
	}
	if strings.EqualFold(c.QueryParam("order"), "asc") {
		f.Order = "asc"
	}
	limit, valid := queryInt64(c, "limit")
	if !valid {
		return f, errors.Wrap(requests.ErrValidation, "limit must be a positive integer")
	}
	f.Limit = int(limit)

	scoped, allowed := GetAppContext(c).Requests().Policy().Scope(actor, f)
	if !allowed {
		return f, errors.Wrapf(requests.ErrForbidden, "%s %d may only list own requests", actor.Role, actor.ID)
	}
	return scoped, nil
}

func listRequests(c echo.Context) error {
	f, err := scopedFilter(c)
	if err != nil {
		return failLifecycle(c, err)
	}
	rows, err := GetAppContext(c).Requests().List(c.Request().Context(), f)
	if err != nil {
		return failLifecycle(c, err)
	}
	return ok(c, rows)
}

func transitionRequest(c echo.Context) error {
	actor, err := webserver.CurrentActor(c)
	if err != nil {
		return failLifecycle(c, err)
	}
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid request ID", nil)
	}
	var payload transitionPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse transition", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", err.Error())
	}
	target, found := domain.ParseStatus(payload.Status)
	if !found {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status", payload.Status)
	}
	req, err := GetAppContext(c).Requests().Transition(c.Request().Context(), id, target, actor)
	if err != nil {
		return failLifecycle(c, err)
	}
	return ok(c, req)
}

func actRequest(action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := webserver.CurrentActor(c)
		if err != nil {
			return failLifecycle(c, err)
		}
		id, valid := parseIDParam(c, "id")
		if !valid {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid request ID", nil)
		}
		req, err := GetAppContext(c).Requests().Act(c.Request().Context(), id, action, actor)
		if err != nil {
			return failLifecycle(c, err)
		}
		return ok(c, req)
	}
}

func requestHistory(c echo.Context) error {
	req, _, err := loadVisible(c)
	if err != nil {
		return failLifecycle(c, err)
	}
	events, err := GetAppContext(c).History().List(c.Request().Context(), req.ID)
	if err != nil {
		return failLifecycle(c, err)
	}
	return ok(c, events)
}

func exportRequests(c echo.Context) error {
	f, err := scopedFilter(c)
	if err != nil {
		return failLifecycle(c, err)
	}
	rows, err := GetAppContext(c).Requests().List(c.Request().Context(), f)
	if err != nil {
		return failLifecycle(c, err)
	}

	filename := fmt.Sprintf("service-requests-%s.csv", time.Now().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(rows, c.Response())
}
