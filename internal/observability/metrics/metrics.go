package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffdesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "staffdesk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffdesk_registrations_total",
		Help: "Count of registration attempts by result",
	}, []string{"result"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffdesk_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	payrollPaymentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "staffdesk_payroll_payments_total",
		Help: "Count of completed payroll payments",
	})

	pendingPayrollRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "staffdesk_pending_payroll_requests",
		Help: "Number of unpaid payroll requests",
	})

	activeStaff = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "staffdesk_active_staff",
		Help: "Number of not-fired user accounts",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRegistration increments the registration counter with a result label.
func ObserveRegistration(result string) {
	registrationsTotal.WithLabelValues(result).Inc()
}

// ObserveLogin increments the login counter with a result label.
func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// ObservePayrollPayment records a completed payment.
func ObservePayrollPayment() {
	payrollPaymentsTotal.Inc()
}

// SetPendingPayrollRequests sets the pending request gauge.
func SetPendingPayrollRequests(count int) {
	if count < 0 {
		count = 0
	}
	pendingPayrollRequests.Set(float64(count))
}

// SetActiveStaff sets the active staff gauge.
func SetActiveStaff(count int) {
	if count < 0 {
		count = 0
	}
	activeStaff.Set(float64(count))
}
