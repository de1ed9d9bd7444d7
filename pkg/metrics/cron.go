package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace     = "shop"
	cronSubsystem = "cron"
)

// CronJobMetrics is nil-safe: a nil value or one built without a
// registerer records nothing.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	affected *prometheus.CounterVec
	skipped  prometheus.Counter
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: cronSubsystem,
			Name:      "job_duration_seconds",
			Help:      "Duration of cron jobs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		success:  cronJobCounter("job_success_total", "Successful cron job executions."),
		failure:  cronJobCounter("job_failure_total", "Failed cron job executions."),
		affected: cronJobCounter("rows_affected_total", "Rows changed by cron jobs."),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: cronSubsystem,
			Name:      "cycles_skipped_total",
			Help:      "Cycles skipped because another worker held the lock.",
		}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.affected, m.skipped)
	return m
}

func cronJobCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: cronSubsystem,
		Name:      name,
		Help:      help,
	}, []string{"job"})
}

func (c *CronJobMetrics) ObserveDuration(job string, d time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func (c *CronJobMetrics) IncSuccess(job string) {
	if c != nil {
		incJob(c.success, job, 1)
	}
}

func (c *CronJobMetrics) IncFailure(job string) {
	if c != nil {
		incJob(c.failure, job, 1)
	}
}

// AddAffected ignores non-positive counts.
func (c *CronJobMetrics) AddAffected(job string, rows int64) {
	if c != nil && rows > 0 {
		incJob(c.affected, job, float64(rows))
	}
}

func (c *CronJobMetrics) IncSkipped() {
	if c == nil || c.skipped == nil {
		return
	}
	c.skipped.Inc()
}

func incJob(vec *prometheus.CounterVec, job string, by float64) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(normalizeLabel(job)).Add(by)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
