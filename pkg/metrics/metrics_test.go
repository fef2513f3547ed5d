package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

func TestObserveEvent(t *testing.T) {
	c := NewCollector("vetcare")
	c.ObserveEvent(&history.Event{EntityType: history.EntitySupply, Kind: history.KindStockChanged, Criticity: history.CriticityCritical})
	c.ObserveEvent(&history.Event{EntityType: history.EntitySupply, Kind: history.KindStockChanged, Criticity: history.CriticityCritical})

	got := testutil.ToFloat64(c.HistoryEventsTotal.WithLabelValues("supply", "stock_changed", "critical"))
	assert.Equal(t, float64(2), got)
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("vetcare")
	b := NewCollector("vetcare")
	a.ShortagesTotal.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.ShortagesTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.ShortagesTotal))
}

func TestHandler(t *testing.T) {
	c := NewCollector("vetcare")
	c.RestocksTotal.Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "vetcare_inventory_restocks_total 1"))
}
