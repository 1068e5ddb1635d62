package requests

import (
	"time"

	"github.com/khadamati/khadamati/internal/domain"
)

// Event bus topics.
const (
	TopicCreated      = "request:created"
	TopicTransitioned = "request:transitioned"
)

// Actions name the transitions offered to providers and admins.
const (
	ActionCreate   = "created"
	ActionAccept   = "accept"
	ActionReject   = "reject"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
)

// Transition is published on TopicTransitioned after a status change is stored,
// and on TopicCreated (From empty) after a request is inserted.
type Transition struct {
	Request *domain.ServiceRequest
	From    domain.RequestStatus
	To      domain.RequestStatus
	Actor   Actor
	Action  string
	At      time.Time
}

// Publisher is satisfied by EventBus.Bus.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, ...interface{}) {}

// ActionFor names the edge from -> to.
func ActionFor(from, to domain.RequestStatus) string {
	switch {
	case from == "" && to == domain.StatusPending:
		return ActionCreate
	case from == domain.StatusPending && to == domain.StatusInProgress:
		return ActionAccept
	case from == domain.StatusPending && to == domain.StatusCancelled:
		return ActionReject
	case from == domain.StatusInProgress && to == domain.StatusCompleted:
		return ActionComplete
	case to == domain.StatusCancelled:
		return ActionCancel
	}
	return ""
}

// TargetForAction maps a named action to its target status.
func TargetForAction(action string) (domain.RequestStatus, bool) {
	switch action {
	case ActionAccept:
		return domain.StatusInProgress, true
	case ActionReject, ActionCancel:
		return domain.StatusCancelled, true
	case ActionComplete:
		return domain.StatusCompleted, true
	}
	return "", false
}
