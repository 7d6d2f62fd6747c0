package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics records outcomes of maintenance jobs run by the cron worker.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	purged   *prometheus.CounterVec
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartlist_cron_job_duration_seconds",
			Help:    "Duration of cron jobs in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartlist_cron_job_success_total",
			Help: "Successful cron job executions.",
		}, []string{"job"}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartlist_cron_job_failure_total",
			Help: "Failed cron job executions.",
		}, []string{"job"}),
		purged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartlist_cron_rows_purged_total",
			Help: "Rows removed by retention jobs.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.purged)
	return m
}

func (c *CronJobMetrics) ObserveDuration(job string, d time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(jobLabel(job)).Observe(d.Seconds())
}

func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(jobLabel(job)).Inc()
}

func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(jobLabel(job)).Inc()
}

// AddPurged records rows deleted by a retention job.
func (c *CronJobMetrics) AddPurged(job string, rows int64) {
	if c == nil || c.purged == nil || rows <= 0 {
		return
	}
	c.purged.WithLabelValues(jobLabel(job)).Add(float64(rows))
}

func jobLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
