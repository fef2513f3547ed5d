package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

type HistoryRepo struct {
	db *gorm.DB
}

func (r *HistoryRepo) Append(ctx context.Context, events ...*history.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&events).Error
}

func (r *HistoryRepo) List(ctx context.Context, q *history.ListQuery) (*history.PagedEvents, error) {
	db := r.db.WithContext(ctx).Model(&history.Event{})
	if q.EntityType != nil {
		db = db.Where("entity_type = ?", *q.EntityType)
	}
	if q.EntityID != "" {
		db = db.Where("entity_id = ?", q.EntityID)
	}
	if q.Kind != nil {
		db = db.Where("kind = ?", *q.Kind)
	}
	if q.MinCriticity != nil {
		db = db.Where("criticity IN ?", atLeast(*q.MinCriticity))
	}
	if q.From != nil {
		db = db.Where("occurred_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("occurred_at < ?", *q.To)
	}

	var rows []*history.Event
	p, total, err := paginate(db, q.Page, q.PageSize, "occurred_at DESC, id", &rows)
	if err != nil {
		return nil, err
	}
	return &history.PagedEvents{
		Events:     rows,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: domain.TotalPages(total, p.PageSize),
	}, nil
}

func atLeast(min history.Criticity) []history.Criticity {
	all := []history.Criticity{history.CriticityLow, history.CriticityMedium, history.CriticityHigh, history.CriticityCritical}
	out := make([]history.Criticity, 0, len(all))
	for _, c := range all {
		if c.Level() >= min.Level() {
			out = append(out, c)
		}
	}
	return out
}
