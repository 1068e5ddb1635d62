package requests

import (
	"context"
	"time"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/khadamati/khadamati/pkg/common"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// History keeps the audit trail of created and transitioned requests.
type History struct {
	db *gorm.DB
}

func NewHistory(db *gorm.DB) *History {
	return &History{db: db}
}

// Record stores one event for t. It is meant to be subscribed to
// TopicCreated and TopicTransitioned.
func (h *History) Record(ctx context.Context, t Transition) error {
	if t.Request == nil {
		return nil
	}
	action := t.Action
	if action == "" {
		action = ActionFor(t.From, t.To)
	}
	ev := &domain.RequestEvent{
		ID:         common.UUIDint64(),
		RequestID:  t.Request.ID,
		ActorID:    t.Actor.ID,
		ActorRole:  t.Actor.Role,
		Action:     action,
		FromStatus: t.From,
		ToStatus:   t.To,
		CreatedAt:  t.At,
	}
	if err := h.db.WithContext(ctx).Create(ev).Error; err != nil {
		return errors.Wrapf(err, "record %s event for request %d", action, t.Request.ID)
	}
	return nil
}

// List returns the events of one request, oldest first.
func (h *History) List(ctx context.Context, requestID int64) ([]domain.RequestEvent, error) {
	var rows []domain.RequestEvent
	err := h.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "list events of request %d", requestID)
	}
	return rows, nil
}

// Purge deletes events older than before and reports how many were removed.
func (h *History) Purge(ctx context.Context, before time.Time) (int64, error) {
	res := h.db.WithContext(ctx).Where("created_at < ?", before).Delete(&domain.RequestEvent{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "purge request events")
	}
	return res.RowsAffected, nil
}
