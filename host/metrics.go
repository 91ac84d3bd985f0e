package host

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hasbyte1/go-argon2-wasm/abi"
)

// Metrics are the Prometheus collectors updated by a [Runtime]. A nil
// *Metrics records nothing.
type Metrics struct {
	calls     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	traps     prometheus.Counter
	reloads   prometheus.Counter
	instances prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argon2wasm",
			Name:      "calls_total",
			Help:      "Module calls by operation and status.",
		}, []string{"op", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "argon2wasm",
			Name:      "call_duration_seconds",
			Help:      "Module call latency by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"op"}),
		traps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argon2wasm",
			Name:      "traps_total",
			Help:      "Calls that trapped and poisoned their instance.",
		}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argon2wasm",
			Name:      "reloads_total",
			Help:      "Instances replaced by a supervisor.",
		}),
		instances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argon2wasm",
			Name:      "instances",
			Help:      "Live module instances.",
		}),
	}
	for _, c := range []prometheus.Collector{m.calls, m.duration, m.traps, m.reloads, m.instances} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(op string, st abi.Status, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op, st.String()).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) trap(op string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op, "trap").Inc()
	m.traps.Inc()
}

func (m *Metrics) reload() {
	if m == nil {
		return
	}
	m.reloads.Inc()
}

func (m *Metrics) instanceDelta(n float64) {
	if m == nil {
		return
	}
	m.instances.Add(n)
}

// Reloads returns the counter of supervisor reloads.
func (m *Metrics) Reloads() prometheus.Counter { return m.reloads }

// Traps returns the counter of trapped calls.
func (m *Metrics) Traps() prometheus.Counter { return m.traps }

// Instances returns the gauge of live instances.
func (m *Metrics) Instances() prometheus.Gauge { return m.instances }
