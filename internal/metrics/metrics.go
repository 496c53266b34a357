// Package metrics exposes progression counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "progression"

// Metrics holds the progression collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ExperienceGranted  *prometheus.CounterVec
	LevelUps           *prometheus.CounterVec
	CurrencyRejections *prometheus.CounterVec
	TaskRejections     *prometheus.CounterVec
	TasksCompleted     *prometheus.CounterVec
	ActivityRecorded   *prometheus.CounterVec
	DailyResets        prometheus.Counter
	ResetFailures      prometheus.Counter
}

// New creates the collectors on a fresh registry that also carries the Go
// and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ExperienceGranted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "experience_granted_total",
			Help:      "Experience granted to players",
		}, []string{"guild"}),
		LevelUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_ups_total",
			Help:      "Levels gained by players",
		}, []string{"guild"}),
		CurrencyRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "currency_rejections_total",
			Help:      "Currency updates rejected",
		}, []string{"currency", "reason"}),
		TaskRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_rejections_total",
			Help:      "Task slot operations rejected",
		}, []string{"reason"}),
		TasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Tasks completed by reward tier",
		}, []string{"tier"}),
		ActivityRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_recorded_total",
			Help:      "Activity added to daily counters",
		}, []string{"channel"}),
		DailyResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_resets_total",
			Help:      "Counter records reset by the daily job",
		}),
		ResetFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_reset_failures_total",
			Help:      "Counter records the daily job could not reset",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ExperienceGranted,
		m.LevelUps,
		m.CurrencyRejections,
		m.TaskRejections,
		m.TasksCompleted,
		m.ActivityRecorded,
		m.DailyResets,
		m.ResetFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveExperience records a grant and any levels it produced
func (m *Metrics) ObserveExperience(guildID string, amount int64, levelsGained int32) {
	if m == nil {
		return
	}
	if amount > 0 {
		m.ExperienceGranted.WithLabelValues(guildID).Add(float64(amount))
	}
	if levelsGained > 0 {
		m.LevelUps.WithLabelValues(guildID).Add(float64(levelsGained))
	}
}

// ObserveCurrencyRejection counts a rejected currency update
func (m *Metrics) ObserveCurrencyRejection(currency, reason string) {
	if m == nil {
		return
	}
	m.CurrencyRejections.WithLabelValues(currency, reason).Inc()
}

// ObserveTaskRejection counts a rejected task slot operation
func (m *Metrics) ObserveTaskRejection(reason string) {
	if m == nil {
		return
	}
	m.TaskRejections.WithLabelValues(reason).Inc()
}

// ObserveTaskCompleted counts a completed task
func (m *Metrics) ObserveTaskCompleted(tier string) {
	if m == nil {
		return
	}
	m.TasksCompleted.WithLabelValues(tier).Inc()
}

// ObserveActivity adds recorded activity for a channel ("text" or "voice")
func (m *Metrics) ObserveActivity(channel string, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.ActivityRecorded.WithLabelValues(channel).Add(float64(amount))
}

// ObserveDailyReset records the outcome of one reset run
func (m *Metrics) ObserveDailyReset(reset, failed int) {
	if m == nil {
		return
	}
	m.DailyResets.Add(float64(reset))
	m.ResetFailures.Add(float64(failed))
}
