package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	TransactionsTotal   *prometheus.CounterVec
	TransactionAmount   *prometheus.CounterVec
	LoansDisbursedTotal prometheus.Counter
	RepaymentsTotal     *prometheus.CounterVec
	CustomersCreated    prometheus.Counter
	OverdueLoans        prometheus.Gauge
	SimulationCache     *prometheus.CounterVec
	EventsPublished     *prometheus.CounterVec
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "banking_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
		RateLimited: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "banking_http_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter.",
			},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "banking_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		TransactionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_transactions_total",
				Help: "Total number of money movements by type and outcome.",
			},
			[]string{"type", "status"},
		),
		TransactionAmount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_transaction_amount_total",
				Help: "Sum of committed money movement amounts by type.",
			},
			[]string{"type"},
		),
		LoansDisbursedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "banking_loans_disbursed_total",
				Help: "Total number of loans disbursed.",
			},
		),
		RepaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_loan_repayments_total",
				Help: "Total number of loan repayments by outcome.",
			},
			[]string{"status"},
		),
		CustomersCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "banking_customers_created_total",
				Help: "Total number of customers successfully signed up.",
			},
		),
		OverdueLoans: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "banking_loans_overdue",
				Help: "Number of loans behind schedule at the last standing check.",
			},
		),
		SimulationCache: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_loan_simulation_cache_total",
				Help: "Loan simulation cache lookups by result.",
			},
			[]string{"result"},
		),
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_events_published_total",
				Help: "Domain events handed to the broker by routing key and outcome.",
			},
			[]string{"routing_key", "status"},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordRateLimited() {
	HTTP.RateLimited.Inc()
}

func RecordDBQuery(queryName string, err error, start time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(time.Since(start).Seconds())
}

func RecordTransaction(txType string, amount float64, err error) {
	if err != nil {
		Business.TransactionsTotal.WithLabelValues(txType, "failed").Inc()
		return
	}
	Business.TransactionsTotal.WithLabelValues(txType, "committed").Inc()
	Business.TransactionAmount.WithLabelValues(txType).Add(amount)
}

func RecordLoanDisbursed() {
	Business.LoansDisbursedTotal.Inc()
}

func RecordRepayment(err error) {
	if err != nil {
		Business.RepaymentsTotal.WithLabelValues("rejected").Inc()
		return
	}
	Business.RepaymentsTotal.WithLabelValues("accepted").Inc()
}

func RecordCustomerCreated() {
	Business.CustomersCreated.Inc()
}

func SetOverdueLoans(n int) {
	Business.OverdueLoans.Set(float64(n))
}

func RecordSimulationCache(hit bool) {
	if hit {
		Business.SimulationCache.WithLabelValues("hit").Inc()
		return
	}
	Business.SimulationCache.WithLabelValues("miss").Inc()
}

func RecordEventPublished(routingKey string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	Business.EventsPublished.WithLabelValues(routingKey, status).Inc()
}
