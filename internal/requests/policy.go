package requests

import (
	"encoding/json"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/khadamati/khadamati/pkg/common"
)

// Roles
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	ID   int64  `json:"user_id,string"`
	Role string `json:"role"`
}

// UnmarshalJSON accepts user_id as a JSON number or string.
func (a *Actor) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID   common.FlexID `json:"user_id"`
		Role string        `json:"role"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*a = Actor{ID: int64(raw.ID), Role: raw.Role}
	return nil
}

func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }
func (a Actor) IsProvider() bool { return a.Role == RoleProvider }
func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }

// Policy decides who may move a request between statuses.
type Policy struct {
	// AdminOverride lets admins perform provider transitions and force a
	// cancellation from any non-terminal status. Without it admins are view-only.
	AdminOverride bool
	// ProviderCancelInProgress opens the in_progress -> cancelled edge to the
	// assigned provider.
	ProviderCancelInProgress bool
}

// CanTransition is a pure decision over actor, request and target status.
// It does not check edge reachability beyond the rules it owns.
func (p Policy) CanTransition(actor Actor, req *domain.ServiceRequest, target domain.RequestStatus) bool {
	if req == nil || !target.Valid() {
		return false
	}
	// pending is initial-only; terminal statuses are final
	if target == domain.StatusPending || req.Status.Terminal() {
		return false
	}

	switch actor.Role {
	case RoleProvider:
		return actor.ID == req.ProviderID && p.providerMay(req.Status, target)
	case RoleAdmin:
		if !p.AdminOverride {
			return false
		}
		if target == domain.StatusCancelled {
			return true
		}
		return p.providerMay(req.Status, target)
	}
	// customers and unknown roles never change status
	return false
}

func (p Policy) providerMay(from, to domain.RequestStatus) bool {
	switch from {
	case domain.StatusPending:
		return to == domain.StatusInProgress || to == domain.StatusCancelled
	case domain.StatusInProgress:
		return to == domain.StatusCompleted ||
			(to == domain.StatusCancelled && p.ProviderCancelInProgress)
	}
	return false
}

// CanView reports whether actor may read req.
func (p Policy) CanView(actor Actor, req *domain.ServiceRequest) bool {
	if req == nil {
		return false
	}
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return req.CustomerID == actor.ID
	case RoleProvider:
		return req.ProviderID == actor.ID
	}
	return false
}

// Scope narrows f to the requests actor may read. It returns false when f
// asks for someone else's requests.
func (p Policy) Scope(actor Actor, f Filter) (Filter, bool) {
	switch actor.Role {
	case RoleAdmin:
		return f, true
	case RoleCustomer:
		if f.CustomerID != 0 && f.CustomerID != actor.ID {
			return f, false
		}
		f.CustomerID = actor.ID
		return f, true
	case RoleProvider:
		if f.ProviderID != 0 && f.ProviderID != actor.ID {
			return f, false
		}
		f.ProviderID = actor.ID
		return f, true
	}
	return f, false
}
