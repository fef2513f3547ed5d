package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

func TestListEventsFilters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewHistoryService(e.store.History)

	e.tablets(t, "A", 0, "1")
	e.tablets(t, "B", 5, "1")

	bogus := history.Criticity("urgent")
	_, err := svc.ListEvents(ctx, &history.ListQuery{MinCriticity: &bogus})
	assert.ErrorIs(t, err, history.ErrInvalidFilter)

	now := time.Now()
	earlier := now.Add(-time.Hour)
	_, err = svc.ListEvents(ctx, &history.ListQuery{From: &now, To: &earlier})
	assert.ErrorIs(t, err, history.ErrInvalidFilter)

	entity := history.EntitySupply
	page, err := svc.ListEvents(ctx, &history.ListQuery{EntityType: &entity})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)

	future := now.Add(time.Hour)
	page, err = svc.ListEvents(ctx, &history.ListQuery{From: &future})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
}
