package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zeusync/offscreen/internal/core/events/bus"
)

// Registration failure reasons used as label values.
const (
	ReasonDuplicate     = "duplicate"
	ReasonPoolExhausted = "pool_exhausted"
)

// Metrics provides observability for the indicator pipeline.
// Tracks projection ticks, indicator activity and registry pressure.
type Metrics struct {
	Ticks                prometheus.Counter
	SkippedTicks         prometheus.Counter
	TickDuration         prometheus.Histogram
	ActiveIndicators     prometheus.Gauge
	RegisteredEntities   prometheus.Gauge
	RegistrationFailures *prometheus.CounterVec
	FramesBroadcast      prometheus.Counter
	FramesUnchanged      prometheus.Counter
	EventsPublished      *prometheus.CounterVec
	EventHandlerErrors   *prometheus.CounterVec
}

var _ bus.EventBusObserver = (*Metrics)(nil)

// New creates a Metrics instance registered with reg.
// Passing nil registers with the default prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "offscreen_projection_ticks_total",
			Help: "Total number of completed projection passes",
		}),
		SkippedTicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "offscreen_projection_ticks_skipped_total",
			Help: "Projection passes skipped because the camera or viewport was unavailable",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "offscreen_projection_tick_duration_seconds",
			Help:    "Duration of a projection pass",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		ActiveIndicators: factory.NewGauge(prometheus.GaugeOpts{
			Name: "offscreen_indicators_active",
			Help: "Indicators shown after the last projection pass",
		}),
		RegisteredEntities: factory.NewGauge(prometheus.GaugeOpts{
			Name: "offscreen_entities_registered",
			Help: "Entities currently bound to an indicator widget",
		}),
		RegistrationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "offscreen_registration_failures_total",
			Help: "Rejected registrations by reason",
		}, []string{"reason"}),
		FramesBroadcast: factory.NewCounter(prometheus.CounterOpts{
			Name: "offscreen_feed_frames_broadcast_total",
			Help: "Indicator frames written to feed subscribers",
		}),
		FramesUnchanged: factory.NewCounter(prometheus.CounterOpts{
			Name: "offscreen_feed_frames_unchanged_total",
			Help: "Indicator frames not broadcast because nothing changed",
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "offscreen_bus_events_published_total",
			Help: "Events published on the in-process bus by type",
		}, []string{"type"}),
		EventHandlerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "offscreen_bus_handler_errors_total",
			Help: "Bus deliveries where at least one handler failed, by event type",
		}, []string{"type"}),
	}
}

// ObserveTick records a completed projection pass.
// Call with time.Now() at the start of the pass.
func (m *Metrics) ObserveTick(start time.Time, active int) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.TickDuration.Observe(time.Since(start).Seconds())
	m.ActiveIndicators.Set(float64(active))
}

// IncrementSkippedTick records a pass skipped for a missing collaborator.
func (m *Metrics) IncrementSkippedTick() {
	if m == nil {
		return
	}
	m.SkippedTicks.Inc()
}

// SetRegistered records the number of bound entities.
func (m *Metrics) SetRegistered(n int) {
	if m == nil {
		return
	}
	m.RegisteredEntities.Set(float64(n))
}

// IncrementRegistrationFailure records a rejected registration.
func (m *Metrics) IncrementRegistrationFailure(reason string) {
	if m == nil {
		return
	}
	m.RegistrationFailures.WithLabelValues(reason).Inc()
}

// IncrementFrame records a feed frame, broadcast or suppressed.
func (m *Metrics) IncrementFrame(sent bool) {
	if m == nil {
		return
	}
	if sent {
		m.FramesBroadcast.Inc()
		return
	}
	m.FramesUnchanged.Inc()
}

// OnPublish counts bus events by type.
func (m *Metrics) OnPublish(eventType string, _ bus.Event) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// OnDelivered counts failed deliveries. Pool exhaustion surfaces here as well.
func (m *Metrics) OnDelivered(eventType string, _ int, err error, _ int64) {
	if m == nil || err == nil {
		return
	}
	m.EventHandlerErrors.WithLabelValues(eventType).Inc()
}
