package catalog

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives one CallStarted and exactly one CallFinished per catalog
// invocation.
type Recorder interface {
	CallStarted(provider string, op Operation)
	CallFinished(provider string, op Operation, outcome Outcome, items int, elapsed time.Duration)
}

// Metrics is the Prometheus Recorder. Besides the collectors it keeps an in
// process tally per operation that backs the operations endpoint.
type Metrics struct {
	mu sync.RWMutex

	operations map[string]*OperationStats

	callDuration *prometheus.HistogramVec
	itemsTotal   *prometheus.CounterVec
	inflight     *prometheus.GaugeVec

	registerer prometheus.Registerer
	registered bool
}

// OperationStats is the tally for one provider/operation pair.
type OperationStats struct {
	Calls        uint64        `json:"calls"`
	Failures     uint64        `json:"failures"`
	Cancelled    uint64        `json:"cancelled"`
	Items        uint64        `json:"items"`
	Inflight     int64         `json:"inflight"`
	TotalElapsed time.Duration `json:"total_elapsed_ns"`
	LastOutcome  Outcome       `json:"last_outcome,omitempty"`
	LastCallAt   time.Time     `json:"last_call_at,omitempty"`
}

// MetricsSnapshot is a point-in-time copy keyed by "provider/operation".
type MetricsSnapshot struct {
	Operations  map[string]OperationStats `json:"operations"`
	CollectedAt time.Time                 `json:"collected_at"`
}

func newCatalogCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediacatalog",
			Subsystem: "catalog",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func newCatalogGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mediacatalog",
			Subsystem: "catalog",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func newCatalogHistogramVec(name, help string, buckets []float64, labels []string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mediacatalog",
			Subsystem: "catalog",
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

// NewMetrics creates the collectors. A nil registerer means the default one.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Metrics{
		operations:   make(map[string]*OperationStats),
		registerer:   registerer,
		callDuration: newCatalogHistogramVec("call_duration_seconds", "Time from invoking a catalog operation until its stream completed, failed or was closed", []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}, []string{"provider", "operation", "outcome"}),
		itemsTotal:   newCatalogCounterVec("items_total", "Items delivered to consumers", []string{"provider", "operation"}),
		inflight:     newCatalogGaugeVec("inflight", "Catalog streams currently open", []string{"provider", "operation"}),
	}
}

// Register registers the collectors. Safe to call multiple times.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}
	for _, c := range []prometheus.Collector{m.callDuration, m.itemsTotal, m.inflight} {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	m.registered = true
	return nil
}

func (m *Metrics) CallStarted(provider string, op Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.statsFor(provider, op)
	stats.Inflight++
	stats.LastCallAt = time.Now()
	m.inflight.WithLabelValues(provider, op.String()).Inc()
}

func (m *Metrics) CallFinished(provider string, op Operation, outcome Outcome, items int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.statsFor(provider, op)
	stats.Calls++
	stats.Items += uint64(items)
	stats.TotalElapsed += elapsed
	stats.LastOutcome = outcome
	if stats.Inflight > 0 {
		stats.Inflight--
	}
	switch outcome {
	case OutcomeError:
		stats.Failures++
	case OutcomeCancelled:
		stats.Cancelled++
	}

	name := op.String()
	m.inflight.WithLabelValues(provider, name).Dec()
	m.itemsTotal.WithLabelValues(provider, name).Add(float64(items))
	m.callDuration.WithLabelValues(provider, name, string(outcome)).Observe(elapsed.Seconds())
}

// Snapshot returns a copy of the per-operation tallies.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		Operations:  make(map[string]OperationStats, len(m.operations)),
		CollectedAt: time.Now(),
	}
	for key, stats := range m.operations {
		snap.Operations[key] = *stats
	}
	return snap
}

// Stats returns the tally for one pair, or nil if it was never called.
func (m *Metrics) Stats(provider string, op Operation) *OperationStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if stats, ok := m.operations[statsKey(provider, op)]; ok {
		cp := *stats
		return &cp
	}
	return nil
}

// Reset clears every tally and collector (useful for testing).
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.operations = make(map[string]*OperationStats)
	m.callDuration.Reset()
	m.itemsTotal.Reset()
	m.inflight.Reset()
}

func (m *Metrics) statsFor(provider string, op Operation) *OperationStats {
	key := statsKey(provider, op)
	if stats, ok := m.operations[key]; ok {
		return stats
	}
	stats := &OperationStats{}
	m.operations[key] = stats
	return stats
}

func statsKey(provider string, op Operation) string {
	return provider + "/" + op.String()
}
