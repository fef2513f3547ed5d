package service

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

type HistoryReader interface {
	List(ctx context.Context, q *history.ListQuery) (*history.PagedEvents, error)
}

type HistoryService struct {
	repo HistoryReader
}

func NewHistoryService(repo HistoryReader) *HistoryService {
	return &HistoryService{repo: repo}
}

func (s *HistoryService) ListEvents(ctx context.Context, q *history.ListQuery) (*history.PagedEvents, error) {
	if q.MinCriticity != nil && !q.MinCriticity.IsValid() {
		return nil, history.ErrInvalidFilter
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return nil, history.ErrInvalidFilter
	}
	return s.repo.List(ctx, q)
}
