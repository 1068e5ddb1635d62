package domain

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// RequestStatus is the lifecycle status of a ServiceRequest.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []RequestStatus{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// legacy numeric ids used by the first web client
var statusCodes = map[int]RequestStatus{
	1: StatusPending,
	2: StatusInProgress,
	3: StatusCompleted,
	4: StatusCancelled,
}

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Code returns the legacy numeric id, 0 for unknown statuses.
func (s RequestStatus) Code() int {
	for code, st := range statusCodes {
		if st == s {
			return code
		}
	}
	return 0
}

func (s RequestStatus) String() string {
	return string(s)
}

// ParseStatus accepts a status name ("in_progress", "InProgress", "in progress")
// or a legacy numeric id ("2").
func ParseStatus(v string) (RequestStatus, bool) {
	v = strings.TrimSpace(v)
	if code, err := cast.ToIntE(v); err == nil {
		st, ok := statusCodes[code]
		return st, ok
	}
	norm := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(v))
	for _, st := range AllStatuses {
		if strings.ReplaceAll(string(st), "_", "") == norm {
			return st, true
		}
	}
	return "", false
}

// ServiceRequest is a customer's ask for a provider to perform a catalog service.
// Only Status changes after creation.
type ServiceRequest struct {
	ID            int64         `json:"id,string" gorm:"primaryKey;autoIncrement:false" csv:"id"`
	CustomerID    int64         `json:"customer_id,string" gorm:"index;not null" csv:"customer_id"`
	ProviderID    int64         `json:"provider_id,string" gorm:"index;not null" csv:"provider_id"`
	ServiceID     int64         `json:"service_id,string" gorm:"index;not null" csv:"service_id"`
	Details       string        `json:"details" gorm:"type:text;not null" csv:"details"`
	ScheduledDate time.Time     `json:"scheduled_date" csv:"scheduled_date"`
	Price         float64       `json:"price" csv:"price"`
	Status        RequestStatus `json:"status" gorm:"size:20;index;not null" csv:"status"`
	CreatedAt     time.Time     `json:"created_at" gorm:"index;autoCreateTime:false" csv:"created_at"`
}

// TableName Specify table name
func (ServiceRequest) TableName() string {
	return "service_request"
}

// RequestEvent is the audit trail entry written for every applied transition.
type RequestEvent struct {
	ID         int64         `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	RequestID  int64         `json:"request_id,string" gorm:"index"`
	ActorID    int64         `json:"actor_id,string"`
	ActorRole  string        `json:"actor_role" gorm:"size:20"`
	Action     string        `json:"action" gorm:"size:20"` // created, accept, reject, complete, cancel
	FromStatus RequestStatus `json:"from_status" gorm:"size:20"`
	ToStatus   RequestStatus `json:"to_status" gorm:"size:20"`
	CreatedAt  time.Time     `json:"created_at" gorm:"index"`
}

// TableName Specify table name
func (RequestEvent) TableName() string {
	return "service_request_event"
}
