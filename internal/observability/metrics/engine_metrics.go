package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels stamped on every engine metric.
type Config struct {
	ServiceName string
	Environment string
}

type EngineMetrics struct {
	invoicesGenerated   *prometheus.CounterVec
	paymentsApplied     *prometheus.CounterVec
	paymentsRecorded    *prometheus.CounterVec
	settlementsComputed prometheus.Counter
}

var (
	engineMetricsOnce sync.Once
	engineMetrics     *EngineMetrics
)

func Engine() *EngineMetrics {
	return EngineWithConfig(Config{})
}

func EngineWithConfig(cfg Config) *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineMetrics = newEngineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return engineMetrics
}

func ResetEngineMetricsForTest() {
	engineMetricsOnce = sync.Once{}
	engineMetrics = nil
}

func newEngineMetrics(registerer prometheus.Registerer, cfg Config) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "propmanager"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	invoicesGenerated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "propmanager_invoices_generated_total",
			Help:        "Rent invoices created, split by origin (generation vs history backfill).",
			ConstLabels: constLabels,
		},
		[]string{"origin"},
	)
	paymentsApplied := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "propmanager_payments_applied_total",
			Help:        "Invoice payments applied, split by resulting status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	paymentsRecorded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "propmanager_payments_recorded_total",
			Help:        "Incoming payments recorded, split by match outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	settlementsComputed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "propmanager_settlements_computed_total",
			Help:        "Owner settlement rows written by the calculator.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(invoicesGenerated, paymentsApplied, paymentsRecorded, settlementsComputed)

	return &EngineMetrics{
		invoicesGenerated:   invoicesGenerated,
		paymentsApplied:     paymentsApplied,
		paymentsRecorded:    paymentsRecorded,
		settlementsComputed: settlementsComputed,
	}
}

func (m *EngineMetrics) AddInvoicesGenerated(origin string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.invoicesGenerated.WithLabelValues(origin).Add(float64(count))
}

func (m *EngineMetrics) IncPaymentApplied(status string) {
	if m == nil {
		return
	}
	m.paymentsApplied.WithLabelValues(status).Inc()
}

func (m *EngineMetrics) IncPaymentRecorded(outcome string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(outcome).Inc()
}

func (m *EngineMetrics) AddSettlementsComputed(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.settlementsComputed.Add(float64(count))
}
