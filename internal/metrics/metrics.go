package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the simulation's Prometheus metrics. All record methods
// are nil-safe so systems can run without metrics wired (tests, benchmarks).
type Collector struct {
	gatherer prometheus.Gatherer

	SpawnedTotal  prometheus.Counter
	RemovedTotal  prometheus.Counter
	LiveParticles prometheus.Gauge
	TickDuration  prometheus.Histogram
}

// NewCollector registers the simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	spawned, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fountain_particles_spawned_total",
		Help: "Total number of particles admitted by the spawn scheduler.",
	}), "fountain_particles_spawned_total")
	if err != nil {
		return nil, err
	}
	removed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fountain_particles_removed_total",
		Help: "Total number of particles destroyed (expired or implicitly removed).",
	}), "fountain_particles_removed_total")
	if err != nil {
		return nil, err
	}
	live, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fountain_particles_live",
		Help: "Current live particle population.",
	}), "fountain_particles_live")
	if err != nil {
		return nil, err
	}
	tick := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fountain_tick_duration_seconds",
		Help:    "Wall-clock duration of one full simulation tick.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
	if err := reg.Register(tick); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				tick = existing
			} else {
				return nil, fmt.Errorf("collector fountain_tick_duration_seconds already registered with incompatible type")
			}
		} else {
			return nil, err
		}
	}

	return &Collector{
		gatherer:      gatherer,
		SpawnedTotal:  spawned,
		RemovedTotal:  removed,
		LiveParticles: live,
		TickDuration:  tick,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) RecordSpawned(n int) {
	if c == nil || c.SpawnedTotal == nil {
		return
	}
	c.SpawnedTotal.Add(float64(n))
}

func (c *Collector) RecordRemoved(n int) {
	if c == nil || c.RemovedTotal == nil {
		return
	}
	c.RemovedTotal.Add(float64(n))
}

func (c *Collector) SetLive(n int) {
	if c == nil || c.LiveParticles == nil {
		return
	}
	c.LiveParticles.Set(float64(n))
}

func (c *Collector) ObserveTick(d time.Duration) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
