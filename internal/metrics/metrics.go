// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AttendanceTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_toggles_total",
			Help: "Total number of attendance toggles",
		},
		[]string{"result"},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	BillsExportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bills_exported_total",
			Help: "Total number of student bills written to spreadsheets",
		},
		[]string{"sheet"},
	)

	MonthTotalGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "month_total",
			Help: "Billed amount of the month after the last attendance change",
		},
		[]string{"month"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
