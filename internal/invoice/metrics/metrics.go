package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the invoice registry.
// Tracks creations, rejections by failure code and per-operation latency.
type Metrics struct {
	InvoicesCreated    prometheus.Counter
	OperationsRejected *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	HashCacheLookups   *prometheus.CounterVec
	AuditDropped       prometheus.Counter
}

// New registers the registry metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InvoicesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "tradeinvoice_invoices_created_total",
			Help: "Total number of invoices registered",
		}),
		OperationsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tradeinvoice_operations_rejected_total",
			Help: "Registry operations that failed, by operation and failure code",
		}, []string{"operation", "code"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradeinvoice_operation_duration_seconds",
			Help:    "Duration of registry operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		HashCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tradeinvoice_hash_cache_lookups_total",
			Help: "Hash index cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "tradeinvoice_audit_events_dropped_total",
			Help: "Audit events discarded because the delivery buffer was full",
		}),
	}
}

// IncrementInvoicesCreated records a successful creation.
func (m *Metrics) IncrementInvoicesCreated() {
	m.InvoicesCreated.Inc()
}

// IncrementRejected records a failed operation.
func (m *Metrics) IncrementRejected(operation, code string) {
	m.OperationsRejected.WithLabelValues(operation, code).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementHashCacheLookup records a cache lookup outcome.
func (m *Metrics) IncrementHashCacheLookup(result string) {
	m.HashCacheLookups.WithLabelValues(result).Inc()
}

// IncAuditDropped satisfies publisher.DropCounter.
func (m *Metrics) IncAuditDropped() {
	m.AuditDropped.Inc()
}
