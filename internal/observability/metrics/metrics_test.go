package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordCounters(t *testing.T) {
	m, err := New(Config{}, zap.NewNop())
	require.NoError(t, err)

	m.RecordFile(FileStatusCompleted)
	m.RecordFile(FileStatusSkipped)
	m.RecordFile(FileStatusCompleted)
	m.RecordRows(3, 1)
	m.RecordRows(0, 0)
	m.RecordStageFallback()
	m.ObserveRun(250 * time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.files.WithLabelValues(FileStatusCompleted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.files.WithLabelValues(FileStatusSkipped)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.rows.WithLabelValues(RowOutcomeLoaded)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rows.WithLabelValues(RowOutcomeRejected)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.stageFallback))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordFile(FileStatusFailed)
	m.RecordRows(1, 1)
	m.RecordStageFallback()
	m.ObserveRun(time.Second)
	m.Push(context.Background())
	assert.Nil(t, m.Registry())
}

func TestPushSendsToGateway(t *testing.T) {
	var path string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	m, err := New(Config{ServiceName: "reviewvault", Environment: "test", PushgatewayURL: gateway.URL}, zap.NewNop())
	require.NoError(t, err)
	m.RecordFile(FileStatusCompleted)

	m.Push(context.Background())
	assert.Equal(t, "/metrics/job/reviewvault/environment/test", path)
}

func TestRegistryGathersRowOutcomes(t *testing.T) {
	m, err := New(Config{}, zap.NewNop())
	require.NoError(t, err)
	m.RecordRows(4, 2)

	assert.Equal(t, 4.0, counterValue(t, m.Registry(), "reviewvault_ingest_rows_total", map[string]string{"outcome": RowOutcomeLoaded}))
	assert.Equal(t, 2.0, counterValue(t, m.Registry(), "reviewvault_ingest_rows_total", map[string]string{"outcome": RowOutcomeRejected}))
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if labelsMatch(metric, labels) {
				require.NotNil(t, metric.Counter, "metric %s is not a counter", name)
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.Label) != len(labels) {
		return false
	}
	for _, label := range metric.Label {
		if labels[label.GetName()] != label.GetValue() {
			return false
		}
	}
	return true
}
