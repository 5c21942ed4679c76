package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	SpinOutcomeTotal           = "spin_outcome_total"
	OTPDeliveryTotal           = "otp_delivery_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		SpinOutcomeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: SpinOutcomeTotal,
			Help: "Spin attempts by outcome (win, loss, or refusal code)",
		}, []string{"outcome"}),
		OTPDeliveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: OTPDeliveryTotal,
			Help: "OTP SMS deliveries by result",
		}, []string{"result"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
	}
)

// ObserveHTTPRequest counts a served request and records its latency
func ObserveHTTPRequest(method string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	PromCounters[HTTPRequestTotal].WithLabelValues(method, code).Inc()
	PromHistograms[HTTPRequestDurationSeconds].WithLabelValues(method, code).Observe(elapsed.Seconds())
}

// RecordSpinOutcome bumps the spin outcome counter
func RecordSpinOutcome(outcome string) {
	PromCounters[SpinOutcomeTotal].WithLabelValues(outcome).Inc()
}

// RecordOTPDelivery bumps the OTP delivery counter
func RecordOTPDelivery(result string) {
	PromCounters[OTPDeliveryTotal].WithLabelValues(result).Inc()
}

// NewMetricsHandler exposes the registered collectors for scraping
func NewMetricsHandler() http.Handler {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	for _, counter := range PromCounters {
		registry.MustRegister(counter)
	}
	for _, histogram := range PromHistograms {
		registry.MustRegister(histogram)
	}

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
