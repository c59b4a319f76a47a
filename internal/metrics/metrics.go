package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Завершённые последовательности отправки по статусу
	DispatchesCounterVec = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "femhealth_dispatches_total",
			Help: "Reminder dispatch sequences by final status",
		},
		[]string{"status"},
	)

	// Ответы-заглушки вместо генерации контента
	ContentFallbacksCounterVec = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "femhealth_content_fallbacks_total",
			Help: "Content generation calls answered with fallback text",
		},
		[]string{"operation"},
	)

	RemindersQueuedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "femhealth_reminders_queued_total",
			Help: "Due-soon reminders published by the notifier sweep",
		},
	)

	ActiveSessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "femhealth_active_sessions",
			Help: "Sessions currently logged in",
		},
	)
)

func Init(reg prometheus.Registerer) {
	reg.MustRegister(DispatchesCounterVec)
	reg.MustRegister(ContentFallbacksCounterVec)
	reg.MustRegister(RemindersQueuedCounter)
	reg.MustRegister(ActiveSessionsGauge)
}

func Dispatched(status string) {
	DispatchesCounterVec.WithLabelValues(status).Inc()
}

func ContentFallback(operation string) {
	ContentFallbacksCounterVec.WithLabelValues(operation).Inc()
}

func RemindersQueued(count int) {
	RemindersQueuedCounter.Add(float64(count))
}
