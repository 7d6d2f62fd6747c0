package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	job := "shopping-list-retention"
	m.ObserveDuration(job, 250*time.Millisecond)
	m.IncSuccess(job)
	m.IncFailure(job)
	m.AddPurged(job, 4)
	m.AddPurged(job, 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := counterValue(mfs, "smartlist_cron_job_success_total", "job", job)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = counterValue(mfs, "smartlist_cron_job_failure_total", "job", job)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = counterValue(mfs, "smartlist_cron_rows_purged_total", "job", job)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)

	mf := findFamily(mfs, "smartlist_cron_job_duration_seconds")
	require.NotNil(t, mf)
	assert.Greater(t, mf.GetMetric()[0].GetHistogram().GetSampleSum(), 0.0)
}

func TestReplenishmentMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReplenishmentMetrics(reg)
	m.ItemFlaggedCritical()
	m.ItemFlaggedCritical()
	m.ListCreated()
	m.ListFinalized(12.5)
	m.StockAdded()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 2.0, findFamily(mfs, "smartlist_items_flagged_critical_total").GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, findFamily(mfs, "smartlist_shopping_lists_finalized_total").GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 12.5, findFamily(mfs, "smartlist_purchases_spent_total").GetMetric()[0].GetCounter().GetValue())
}

func TestOutboxMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.Record("item.became_critical", OutcomePublished)
	m.Record("item.became_critical", OutcomePublished)
	m.Record("", OutcomeDeadLettered)
	m.ObservePublish(40 * time.Millisecond)
	m.ObserveLag(3 * time.Second)
	m.ObserveLag(-time.Second)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := counterValue(mfs, "smartlist_outbox_events_total", "event_type", "item.became_critical")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = counterValue(mfs, "smartlist_outbox_events_total", "event_type", "unknown")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	lag := findFamily(mfs, "smartlist_outbox_delivery_lag_seconds")
	require.NotNil(t, lag)
	assert.EqualValues(t, 1, lag.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestNilMetricsAreNoops(t *testing.T) {
	var repl *ReplenishmentMetrics
	repl.ItemFlaggedCritical()
	repl.ListFinalized(1)

	var cron *CronJobMetrics
	cron.IncSuccess("job")

	NewReplenishmentMetrics(nil).StockAdded()
	NewCronJobMetrics(nil).AddPurged("job", 3)

	var outbox *OutboxMetrics
	outbox.Record("x", OutcomeRetried)
	NewOutboxMetrics(nil).ObserveLag(time.Second)
}

func counterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		for _, pair := range metric.GetLabel() {
			if pair.GetName() == label && pair.GetValue() == value {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
