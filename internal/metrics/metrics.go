// Package metrics exposes Prometheus instruments for logins, stock, sales and scheduled jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/and161185/storekeeper/internal/model"
)

const namespace = "storekeeper"

// Recorder records domain and job metrics. A nil Recorder, or one built with a nil
// registerer, drops everything.
type Recorder struct {
	logins   *prometheus.CounterVec
	stock    *prometheus.CounterVec
	sales    prometheus.Counter
	revenue  prometheus.Counter
	lowStock prometheus.Gauge

	jobDuration *prometheus.HistogramVec
	jobSuccess  *prometheus.CounterVec
	jobFailure  *prometheus.CounterVec
}

// NewRecorder registers the instruments on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	r := &Recorder{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		stock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_transactions_total",
			Help:      "Recorded stock transactions by direction.",
		}, []string{"type"}),
		sales: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Recorded sales.",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_revenue_total",
			Help:      "Sum of sell price times quantity over recorded sales.",
		}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_products",
			Help:      "Products below the low-stock threshold at the last check.",
		}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled jobs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		jobSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_success_total",
			Help:      "Successful scheduled job runs.",
		}, []string{"job"}),
		jobFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_failure_total",
			Help:      "Failed scheduled job runs.",
		}, []string{"job"}),
	}
	reg.MustRegister(r.logins, r.stock, r.sales, r.revenue, r.lowStock, r.jobDuration, r.jobSuccess, r.jobFailure)
	return r
}

// LoginResult counts one login attempt.
func (r *Recorder) LoginResult(outcome string) {
	if r == nil || r.logins == nil {
		return
	}
	r.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// StockRecorded counts one stock transaction.
func (r *Recorder) StockRecorded(tx model.StockTransaction) {
	if r == nil || r.stock == nil {
		return
	}
	r.stock.WithLabelValues(normalizeLabel(string(tx.Type))).Inc()
}

// SaleRecorded counts one sale and its revenue.
func (r *Recorder) SaleRecorded(s model.Sale) {
	if r == nil || r.sales == nil {
		return
	}
	r.sales.Inc()
	rev, _ := s.Revenue().Float64()
	if rev > 0 {
		r.revenue.Add(rev)
	}
}

// SetLowStock publishes the current number of low-stock products.
func (r *Recorder) SetLowStock(n int) {
	if r == nil || r.lowStock == nil {
		return
	}
	r.lowStock.Set(float64(n))
}

// ObserveJob records one run of a scheduled job.
func (r *Recorder) ObserveJob(job string, d time.Duration, err error) {
	if r == nil || r.jobDuration == nil {
		return
	}
	job = normalizeLabel(job)
	r.jobDuration.WithLabelValues(job).Observe(d.Seconds())
	if err != nil {
		r.jobFailure.WithLabelValues(job).Inc()
		return
	}
	r.jobSuccess.WithLabelValues(job).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
